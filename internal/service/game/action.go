package game

type JoinRoomRequest struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`

	// 由传输层填充
	PlayerID string               `json:"-"`
	RespCh   chan ResponseWrapper `json:"-"`
}

// 仅发给加入者本人
type RoomJoinedResponse struct {
	RoomID     string     `json:"room_id"`
	GameState  *GameState `json:"game_state"`
	Players    []Player   `json:"players"`
	Settings   Settings   `json:"settings"`
	GameStatus GameStatus `json:"game_status"`
}

type SwitchTeamRequest struct {
	Team string `json:"team"`
	Role string `json:"role"`
}

type SubmitClueRequest struct {
	Word string `json:"word"`
}

type EditClueRequest struct {
	ClueID  string `json:"clue_id"`
	NewText string `json:"new_text"`
}

type DeleteClueRequest struct {
	ClueID string `json:"clue_id"`
}

type UpdateSettingsRequest struct {
	Settings Settings `json:"settings"`
}

type RevealCardRequest struct {
	CardIndex int `json:"card_index"`
}

type CardRevealedResponse struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
}

type DisconnectRequest struct {
	PlayerID string
	// 用于识别连接：如果和玩家当前的响应通道不一致，
	// 说明该连接已被同 ID 的重连顶替，不能删除玩家
	RespCh chan ResponseWrapper
}

type TickRequest struct {
	// 计时器代次，重置或销毁后旧代次的 tick 一律丢弃
	Gen uint64
}
