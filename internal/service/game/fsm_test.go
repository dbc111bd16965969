package game

import (
	"testing"
	"time"
)

func newTestMachine(t *testing.T, onRelease func(string)) (*RoomMachine, chan struct{}) {
	t.Helper()

	doneCh := make(chan struct{})

	machine := NewRoomMachine(
		"ROOM01",
		Settings{GameLanguage: "en"},
		testState(),
		enoughWords(),
		TurnDurations{GuessSeconds: 60, FirstGuessSeconds: 120},
		doneCh,
		onRelease,
	)

	return machine, doneCh
}

func joinWrapper(playerID, name string, respCh chan ResponseWrapper) RequestWrapper {
	return RequestWrapper{
		ReqType: REQ_JOIN_ROOM,
		NativeData: &JoinRoomRequest{
			RoomID:     "ROOM01",
			PlayerID:   playerID,
			PlayerName: name,
			RespCh:     respCh,
		},
	}
}

// awaitResp 读取通道直到出现指定类型的响应，其余响应跳过
func awaitResp(t *testing.T, ch chan ResponseWrapper, respType string) ResponseWrapper {
	t.Helper()

	deadline := time.After(2 * time.Second)

	for {
		select {
		case resp, ok := <-ch:
			if !ok {
				t.Fatalf("response channel closed while waiting for %s", respType)
			}

			if resp.RespType == respType {
				return resp
			}

		case <-deadline:
			t.Fatalf("timed out waiting for %s", respType)
		}
	}
}

// awaitState 读取状态广播直到快照满足给定条件
func awaitState(t *testing.T, ch chan ResponseWrapper, pred func(*GameState) bool) *GameState {
	t.Helper()

	deadline := time.After(2 * time.Second)

	for {
		select {
		case resp, ok := <-ch:
			if !ok {
				t.Fatalf("response channel closed while waiting for a state update")
			}

			if resp.RespType != RESP_GAME_STATE {
				continue
			}

			state, castOK := resp.Data.(*GameState)
			if !castOK {
				t.Fatalf("state update carried unexpected payload %T", resp.Data)
			}

			if pred(state) {
				return state
			}

		case <-deadline:
			t.Fatalf("timed out waiting for a matching state update")
		}
	}
}

func TestRoomMachine_FullTurnFlow(t *testing.T) {
	machine, doneCh := newTestMachine(t, nil)
	defer close(doneCh)

	go machine.Run()

	reqCh := machine.GetReqCh()

	smCh := make(chan ResponseWrapper, 64)
	opCh := make(chan ResponseWrapper, 64)

	reqCh <- joinWrapper("sm", "Alice", smCh)
	awaitResp(t, smCh, RESP_ROOM_JOINED)

	reqCh <- joinWrapper("op", "Bob", opCh)
	awaitResp(t, opCh, RESP_ROOM_JOINED)

	reqCh <- RequestWrapper{
		ReqType: REQ_SWITCH_TEAM,
		ActorID: "sm",
		Data:    mustMarshal(SwitchTeamRequest{Team: TEAM_BLUE, Role: ROLE_SPYMASTER}),
	}
	reqCh <- RequestWrapper{
		ReqType: REQ_SWITCH_TEAM,
		ActorID: "op",
		Data:    mustMarshal(SwitchTeamRequest{Team: TEAM_BLUE, Role: ROLE_OPERATIVE}),
	}

	reqCh <- RequestWrapper{ReqType: REQ_START_GAME, ActorID: "sm"}
	awaitResp(t, opCh, RESP_GAME_STATUS)

	// 队长提交提示并结束提示阶段，进入计时的猜词阶段
	reqCh <- RequestWrapper{
		ReqType: REQ_SUBMIT_CLUE,
		ActorID: "sm",
		Data:    mustMarshal(SubmitClueRequest{Word: "ocean 2"}),
	}
	reqCh <- RequestWrapper{ReqType: REQ_END_TURN, ActorID: "sm"}

	state := awaitState(t, opCh, func(gs *GameState) bool {
		return gs.Phase == PHASE_GUESS
	})

	if len(state.ClueHistory.Blue) != 1 || state.ClueHistory.Blue[0].Text != "ocean 2" {
		t.Fatalf("clue not visible in the broadcast state, got %+v", state.ClueHistory.Blue)
	}

	if state.Timers.Blue != 120 {
		t.Fatalf("first guess turn should run on 120 seconds, got %d", state.Timers.Blue)
	}

	// 队员翻开对方的牌，回合立刻交给红队
	reqCh <- RequestWrapper{
		ReqType: REQ_REVEAL_CARD,
		ActorID: "op",
		Data:    mustMarshal(RevealCardRequest{CardIndex: 9}),
	}

	state = awaitState(t, opCh, func(gs *GameState) bool {
		return gs.Cards[9].Revealed
	})

	if state.CurrentTeam != TEAM_RED {
		t.Fatalf("turn should pass to red after a wrong guess, got %q", state.CurrentTeam)
	}

	if state.Phase != PHASE_CLUE {
		t.Fatalf("phase should return to clue after a wrong guess, got %q", state.Phase)
	}

	if state.Scores.Red != 7 {
		t.Fatalf("red score should drop to 7, got %d", state.Scores.Red)
	}
}

func TestRoomMachine_ReleasesWhenLastPlayerLeaves(t *testing.T) {
	releasedCh := make(chan string, 1)

	machine, doneCh := newTestMachine(t, func(roomID string) {
		releasedCh <- roomID
	})
	defer close(doneCh)

	go machine.Run()

	reqCh := machine.GetReqCh()

	respCh := make(chan ResponseWrapper, 64)

	reqCh <- joinWrapper("p1", "Alice", respCh)
	awaitResp(t, respCh, RESP_ROOM_JOINED)

	reqCh <- RequestWrapper{
		ReqType: REQ_DISCONNECT,
		NativeData: &DisconnectRequest{
			PlayerID: "p1",
			RespCh:   respCh,
		},
	}

	select {
	case roomID := <-releasedCh:
		if roomID != "ROOM01" {
			t.Fatalf("unexpected released room %q", roomID)
		}

	case <-time.After(2 * time.Second):
		t.Fatalf("machine did not release the room after the last player left")
	}
}
