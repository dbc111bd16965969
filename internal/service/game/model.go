package game

// 队伍
const (
	TEAM_BLUE      = "blue"
	TEAM_RED       = "red"
	TEAM_SPECTATOR = "spectator"
)

// 玩家角色
const (
	ROLE_SPYMASTER = "spymaster"
	ROLE_OPERATIVE = "operative"
	ROLE_SPECTATOR = "spectator"
)

// 卡牌类型，black 为刺客牌，每局恰好一张
const (
	CARD_BLUE    = "blue"
	CARD_RED     = "red"
	CARD_NEUTRAL = "neutral"
	CARD_BLACK   = "black"
)

// 回合阶段
const (
	PHASE_CLUE  = "clue"
	PHASE_GUESS = "guess"
)

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Team   string `json:"team"`
	Role   string `json:"role"`
	IsHost bool   `json:"is_host"`

	RespCh chan ResponseWrapper `json:"-"`
}

type Card struct {
	Word     string `json:"word"`
	Type     string `json:"type"`
	Revealed bool   `json:"revealed"`
	Index    int    `json:"index"`
}

type Clue struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type TeamScores struct {
	Blue int `json:"blue"`
	Red  int `json:"red"`
}

// 剩余秒数，0 表示未计时
type TeamTimers struct {
	Blue int `json:"blue"`
	Red  int `json:"red"`
}

type TeamClues struct {
	Blue []Clue `json:"blue"`
	Red  []Clue `json:"red"`
}

// GameState 是一局游戏的完整状态，resetGame 时整体替换
type GameState struct {
	Cards          []Card     `json:"cards"`
	StartingTeam   string     `json:"starting_team"`
	CurrentTeam    string     `json:"current_team"`
	Phase          string     `json:"phase"`
	FirstGuessTurn bool       `json:"first_guess_turn"`
	Scores         TeamScores `json:"scores"`
	Timers         TeamTimers `json:"timers"`
	ClueHistory    TeamClues  `json:"clue_history"`
	// 为空表示尚未分出胜负
	Winner string `json:"winner,omitempty"`
}

// Clone 返回用于广播的深拷贝快照，
// 避免传输层序列化时和状态机的后续修改发生竞争
func (gs *GameState) Clone() *GameState {
	out := *gs

	out.Cards = make([]Card, len(gs.Cards))
	copy(out.Cards, gs.Cards)

	out.ClueHistory.Blue = make([]Clue, len(gs.ClueHistory.Blue))
	copy(out.ClueHistory.Blue, gs.ClueHistory.Blue)

	out.ClueHistory.Red = make([]Clue, len(gs.ClueHistory.Red))
	copy(out.ClueHistory.Red, gs.ClueHistory.Red)

	return &out
}

// 房间设置，影响下一次生成棋盘，不影响当前棋盘
type Settings struct {
	GameLanguage string `json:"game_language"`
	TraitorMode  bool   `json:"traitor_mode"`
}

type GameStatus struct {
	Started bool `json:"started"`
	Paused  bool `json:"paused"`
}

// 回合计时配置，由应用配置注入
type TurnDurations struct {
	GuessSeconds      int
	FirstGuessSeconds int
}

func otherTeam(team string) string {
	if team == TEAM_BLUE {
		return TEAM_RED
	}

	return TEAM_BLUE
}

func isPlayTeam(team string) bool {
	return team == TEAM_BLUE || team == TEAM_RED
}

func validRole(role string) bool {
	return role == ROLE_SPYMASTER || role == ROLE_OPERATIVE || role == ROLE_SPECTATOR
}

func (gs *GameState) timerFor(team string) *int {
	if team == TEAM_BLUE {
		return &gs.Timers.Blue
	}

	return &gs.Timers.Red
}

func (gs *GameState) cluesFor(team string) *[]Clue {
	if team == TEAM_BLUE {
		return &gs.ClueHistory.Blue
	}

	return &gs.ClueHistory.Red
}
