package service

import (
	"errors"
	"strings"
	"sync"
	"time"

	"codenames-be/internal/service/dto"
	"codenames-be/internal/service/game"

	"go.uber.org/zap"
)

var (
	ErrRoomNotFound = errors.New("房间不存在")
	ErrRoomExists   = errors.New("房间已存在")
	ErrBadSettings  = errors.New("房间设置无效")
)

// 创建后一直无人加入的房间超过该时长会被清理循环回收
const emptyRoomGracePeriod = time.Minute

type RoomService struct {
	state *roomServiceState

	words     game.WordSource
	durations game.TurnDurations
}

type roomServiceState struct {
	mu sync.RWMutex

	// 从房间 ID 到房间实体的映射
	rooms map[string]*roomEntry

	cleanUpDone chan struct{}
}

type roomEntry struct {
	machine *game.RoomMachine
	reqCh   chan game.RequestWrapper
	doneCh  chan struct{}
}

func NewRoomService(words game.WordSource, durations game.TurnDurations) *RoomService {
	state := &roomServiceState{
		rooms:       make(map[string]*roomEntry),
		cleanUpDone: make(chan struct{}),
	}

	// 启动一个 goroutine 定期清理从未被加入过的空房间
	go startCleanupLoop(state)

	return &RoomService{
		state:     state,
		words:     words,
		durations: durations,
	}
}

func startCleanupLoop(state *roomServiceState) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-state.cleanUpDone:
			return

		case <-ticker.C:
			state.mu.Lock()

			for roomID, entry := range state.rooms {
				if entry.machine.PlayerCount() > 0 {
					continue
				}

				if time.Since(entry.machine.CreatedAt()) < emptyRoomGracePeriod {
					continue
				}

				zap.L().Info("房间长时间无人加入，开始清理", zap.String("room_id", roomID))

				// 通知对应的房间状态机退出
				close(entry.doneCh)
				delete(state.rooms, roomID)
			}

			state.mu.Unlock()
		}
	}
}

func (rs *RoomService) Close() {
	close(rs.state.cleanUpDone)
}

// CreateRoom 创建房间并启动其事件循环
// 显式指定的房间 ID 被占用时返回 ErrRoomExists；
// 自动生成的 ID 碰撞会有界重试，耗尽同样返回 ErrRoomExists
func (rs *RoomService) CreateRoom(req dto.CreateRoomRequest) (dto.CreateRoomResponse, error) {
	if len(rs.words.WordsFor(req.Settings.GameLanguage)) < game.BOARD_SIZE {
		return dto.CreateRoomResponse{}, ErrBadSettings
	}

	state, err := game.GenerateBoard(rs.words, req.Settings.GameLanguage)
	if err != nil {
		return dto.CreateRoomResponse{}, err
	}

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	var roomID string

	if req.RoomID != "" {
		roomID = strings.ToUpper(req.RoomID)

		if _, taken := rs.state.rooms[roomID]; taken {
			return dto.CreateRoomResponse{}, ErrRoomExists
		}
	} else {
		for attempt := 0; attempt < roomIDMaxAttempts; attempt++ {
			candidate := generateRoomID()
			if _, taken := rs.state.rooms[candidate]; !taken {
				roomID = candidate
				break
			}
		}

		if roomID == "" {
			zap.L().Error("房间 ID 生成重试耗尽")
			return dto.CreateRoomResponse{}, ErrRoomExists
		}
	}

	doneCh := make(chan struct{})

	machine := game.NewRoomMachine(
		roomID,
		req.Settings,
		state,
		rs.words,
		rs.durations,
		doneCh,
		rs.releaseRoom,
	)

	rs.state.rooms[roomID] = &roomEntry{
		machine: machine,
		reqCh:   machine.GetReqCh(),
		doneCh:  doneCh,
	}

	go machine.Run()

	zap.L().Info(
		"房间已创建",
		zap.String("room_id", roomID),
		zap.String("language", req.Settings.GameLanguage),
	)

	return dto.CreateRoomResponse{RoomID: roomID}, nil
}

// JoinRoom 把加入请求转发进对应房间的事件循环
// 返回该房间的请求通道，后续这条连接的所有请求都发往这里
func (rs *RoomService) JoinRoom(
	req *game.JoinRoomRequest,
	respCh chan game.ResponseWrapper,
) (chan game.RequestWrapper, error) {
	roomID := strings.ToUpper(req.RoomID)

	rs.state.mu.RLock()
	entry := rs.state.rooms[roomID]
	rs.state.mu.RUnlock()

	if entry == nil {
		return nil, ErrRoomNotFound
	}

	req.RoomID = roomID
	req.RespCh = respCh

	wrapper := game.RequestWrapper{
		ReqType:    game.REQ_JOIN_ROOM,
		NativeData: req,
	}

	reqTimer := time.NewTimer(5 * time.Second)
	defer reqTimer.Stop()

	select {
	case entry.reqCh <- wrapper:
		return entry.reqCh, nil

	case <-reqTimer.C:
		zap.L().Warn(
			"房间无法及时处理加入请求",
			zap.String("room_id", roomID),
			zap.String("player_name", req.PlayerName),
		)
		return nil, errors.New("加入房间失败")
	}
}

// RoomExists 供 HTTP 层做轻量存在性检查
func (rs *RoomService) RoomExists(roomID string) bool {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	_, ok := rs.state.rooms[strings.ToUpper(roomID)]

	return ok
}

// releaseRoom 由房间状态机在玩家清空后回调
func (rs *RoomService) releaseRoom(roomID string) {
	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	delete(rs.state.rooms, roomID)

	zap.L().Info("房间已销毁", zap.String("room_id", roomID))
}
