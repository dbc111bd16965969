package game

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"
)

// 请求类型
const (
	REQ_JOIN_ROOM       = "JoinRoom"
	REQ_SWITCH_TEAM     = "SwitchTeam"
	REQ_SUBMIT_CLUE     = "SubmitClue"
	REQ_EDIT_CLUE       = "EditClue"
	REQ_DELETE_CLUE     = "DeleteClue"
	REQ_UPDATE_SETTINGS = "UpdateSettings"
	REQ_START_GAME      = "StartGame"
	REQ_PAUSE_GAME      = "PauseGame"
	REQ_RESET_GAME      = "ResetGame"
	REQ_REVEAL_CARD     = "RevealCard"
	REQ_END_TURN        = "EndTurn"

	// 以下两种请求只由服务端内部产生，不接受客户端发送
	REQ_DISCONNECT = "Disconnect"
	REQ_TICK       = "Tick"
)

type RequestWrapper struct {
	ReqType string          `json:"request_type"`
	Data    json.RawMessage `json:"data"`

	// 发起请求的玩家 ID，由传输层填充，客户端无法伪造
	ActorID string `json:"-"`
	// 服务端内部请求直接携带原生数据，不走 JSON
	NativeData any `json:"-"`
}

// IsInternalRequest 报告该请求类型是否只允许服务端内部产生
func IsInternalRequest(reqType string) bool {
	return reqType == REQ_DISCONNECT || reqType == REQ_TICK || reqType == REQ_JOIN_ROOM
}

func TryUnwrapJoinRoomRequest(wrapper RequestWrapper) *JoinRoomRequest {
	if wrapper.ReqType != REQ_JOIN_ROOM {
		return nil
	}

	if req, ok := wrapper.NativeData.(*JoinRoomRequest); ok {
		return req
	}

	var joinRoomRequest JoinRoomRequest

	err := json.Unmarshal(wrapper.Data, &joinRoomRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap JoinRoomRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &joinRoomRequest
}

func TryUnwrapSwitchTeamRequest(wrapper RequestWrapper) *SwitchTeamRequest {
	if wrapper.ReqType != REQ_SWITCH_TEAM {
		return nil
	}

	var switchTeamRequest SwitchTeamRequest

	err := json.Unmarshal(wrapper.Data, &switchTeamRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap SwitchTeamRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &switchTeamRequest
}

func TryUnwrapSubmitClueRequest(wrapper RequestWrapper) *SubmitClueRequest {
	if wrapper.ReqType != REQ_SUBMIT_CLUE {
		return nil
	}

	var submitClueRequest SubmitClueRequest

	err := json.Unmarshal(wrapper.Data, &submitClueRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap SubmitClueRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &submitClueRequest
}

func TryUnwrapEditClueRequest(wrapper RequestWrapper) *EditClueRequest {
	if wrapper.ReqType != REQ_EDIT_CLUE {
		return nil
	}

	var editClueRequest EditClueRequest

	err := json.Unmarshal(wrapper.Data, &editClueRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap EditClueRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &editClueRequest
}

func TryUnwrapDeleteClueRequest(wrapper RequestWrapper) *DeleteClueRequest {
	if wrapper.ReqType != REQ_DELETE_CLUE {
		return nil
	}

	var deleteClueRequest DeleteClueRequest

	err := json.Unmarshal(wrapper.Data, &deleteClueRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap DeleteClueRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &deleteClueRequest
}

// 设置更新使用严格解码，未知字段直接拒绝
func TryUnwrapUpdateSettingsRequest(wrapper RequestWrapper) *UpdateSettingsRequest {
	if wrapper.ReqType != REQ_UPDATE_SETTINGS {
		return nil
	}

	var updateSettingsRequest UpdateSettingsRequest

	dec := json.NewDecoder(bytes.NewReader(wrapper.Data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&updateSettingsRequest); err != nil {
		zap.L().Error(
			"Failed to unwrap UpdateSettingsRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &updateSettingsRequest
}

func TryUnwrapRevealCardRequest(wrapper RequestWrapper) *RevealCardRequest {
	if wrapper.ReqType != REQ_REVEAL_CARD {
		return nil
	}

	var revealCardRequest RevealCardRequest

	err := json.Unmarshal(wrapper.Data, &revealCardRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap RevealCardRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &revealCardRequest
}

func TryUnwrapDisconnectRequest(wrapper RequestWrapper) *DisconnectRequest {
	if wrapper.ReqType != REQ_DISCONNECT {
		return nil
	}

	req, ok := wrapper.NativeData.(*DisconnectRequest)
	if !ok {
		zap.L().Error(
			"DisconnectRequest 缺少原生数据",
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return req
}

func TryUnwrapTickRequest(wrapper RequestWrapper) *TickRequest {
	if wrapper.ReqType != REQ_TICK {
		return nil
	}

	req, ok := wrapper.NativeData.(*TickRequest)
	if !ok {
		zap.L().Error(
			"TickRequest 缺少原生数据",
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return req
}

// 响应类型
const (
	RESP_ERROR = "Error"

	RESP_ROOM_JOINED      = "RoomJoined"
	RESP_UPDATE_PLAYERS   = "UpdatePlayers"
	RESP_GAME_STATE       = "GameStateUpdate"
	RESP_TIMER_UPDATE     = "TimerUpdate"
	RESP_GAME_STATUS      = "GameStatusUpdate"
	RESP_SETTINGS_UPDATED = "SettingsUpdated"
	RESP_CARD_REVEALED    = "CardRevealed"
	RESP_TRAITOR_ASSIGNED = "TraitorAssigned"
)

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		ErrMsg:   errMsg,
	}
}
