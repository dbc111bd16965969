package service

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"codenames-be/internal/service/dto"
	"codenames-be/internal/service/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWords struct {
	byLanguage map[string][]string
}

func (s *stubWords) WordsFor(language string) []string {
	src := s.byLanguage[language]
	out := make([]string, len(src))
	copy(out, src)

	return out
}

func testWords() *stubWords {
	words := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		words = append(words, fmt.Sprintf("word%02d", i))
	}

	return &stubWords{byLanguage: map[string][]string{"en": words}}
}

func newTestService(t *testing.T) *RoomService {
	t.Helper()

	rs := NewRoomService(testWords(), game.TurnDurations{
		GuessSeconds:      60,
		FirstGuessSeconds: 120,
	})

	t.Cleanup(rs.Close)

	return rs
}

func TestCreateRoom_GeneratedIDFormat(t *testing.T) {
	rs := newTestService(t)

	// 生成的 ID 只使用无歧义字符：没有 I/O/0/1
	idPattern := regexp.MustCompile(`^[A-HJ-NP-Z2-9]{6}$`)

	resp, err := rs.CreateRoom(dto.CreateRoomRequest{
		Settings: game.Settings{GameLanguage: "en"},
	})
	require.NoError(t, err)

	assert.Regexp(t, idPattern, resp.RoomID)
	assert.True(t, rs.RoomExists(resp.RoomID))
}

func TestCreateRoom_ExplicitIDIsUppercasedAndUnique(t *testing.T) {
	rs := newTestService(t)

	resp, err := rs.CreateRoom(dto.CreateRoomRequest{
		RoomID:   "abc234",
		Settings: game.Settings{GameLanguage: "en"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC234", resp.RoomID)

	// 大小写不同视为同一个房间
	_, err = rs.CreateRoom(dto.CreateRoomRequest{
		RoomID:   "ABC234",
		Settings: game.Settings{GameLanguage: "en"},
	})
	require.ErrorIs(t, err, ErrRoomExists)

	assert.True(t, rs.RoomExists("abc234"))
}

func TestCreateRoom_UnknownLanguage(t *testing.T) {
	rs := newTestService(t)

	_, err := rs.CreateRoom(dto.CreateRoomRequest{
		Settings: game.Settings{GameLanguage: "xx"},
	})
	require.ErrorIs(t, err, ErrBadSettings)
}

func TestJoinRoom_UnknownRoom(t *testing.T) {
	rs := newTestService(t)

	respCh := make(chan game.ResponseWrapper, 16)

	_, err := rs.JoinRoom(&game.JoinRoomRequest{
		RoomID:     "NOSUCH",
		PlayerID:   "p1",
		PlayerName: "Alice",
	}, respCh)
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoom_ThenLastDisconnectTearsDownRoom(t *testing.T) {
	rs := newTestService(t)

	created, err := rs.CreateRoom(dto.CreateRoomRequest{
		Settings: game.Settings{GameLanguage: "en"},
	})
	require.NoError(t, err)

	respCh := make(chan game.ResponseWrapper, 64)

	reqCh, err := rs.JoinRoom(&game.JoinRoomRequest{
		RoomID:     created.RoomID,
		PlayerID:   "p1",
		PlayerName: "Alice",
	}, respCh)
	require.NoError(t, err)

	// 等待加入确认
	require.Eventually(t, func() bool {
		select {
		case resp, ok := <-respCh:
			return ok && resp.RespType == game.RESP_ROOM_JOINED
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	reqCh <- game.RequestWrapper{
		ReqType: game.REQ_DISCONNECT,
		NativeData: &game.DisconnectRequest{
			PlayerID: "p1",
			RespCh:   respCh,
		},
	}

	// 最后一名玩家离开后房间立即回收
	require.Eventually(t, func() bool {
		return !rs.RoomExists(created.RoomID)
	}, 2*time.Second, 10*time.Millisecond)
}
