package game

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// RoomMachine 是单个房间的状态机，负责串行处理该房间的所有事件
// 客户端请求和计时 tick 都汇入同一个事件循环，房间内不存在并发修改
type RoomMachine struct {
	ctx     *RoomContext
	handler StageHandler
	// 所有客户端请求汇总的通道
	reqCh chan RequestWrapper
	// 结束通道，用于外部（注册表清理）通知状态机退出
	doneCh chan struct{}
	// 房间清空时回调注册表释放资源
	onRelease func(roomID string)

	// 供注册表清理循环在事件循环之外读取
	playerCount atomic.Int32
	everJoined  bool

	createdAt time.Time
}

func NewRoomMachine(
	roomID string,
	settings Settings,
	state *GameState,
	words WordSource,
	durations TurnDurations,
	doneCh chan struct{},
	onRelease func(roomID string),
) *RoomMachine {
	ctx := &RoomContext{
		RoomID:    roomID,
		Stage:     STAGE_LOBBY,
		Players:   make([]*Player, 0),
		Settings:  settings,
		State:     state,
		Words:     words,
		Durations: durations,
		TickCh:    make(chan RequestWrapper, 64),
	}

	reqCh := make(chan RequestWrapper, 64)

	rm := &RoomMachine{
		ctx:       ctx,
		handler:   NewLobbyStageHandler(),
		reqCh:     reqCh,
		doneCh:    doneCh,
		onRelease: onRelease,
		createdAt: time.Now(),
	}

	// 设置 onSwitch 回调
	onSwitch := func(nextStage string) {
		rm.ctx.Stage = nextStage
	}

	rm.handler.SetOnSwitch(onSwitch)

	return rm
}

func (rm *RoomMachine) GetReqCh() chan RequestWrapper {
	return rm.reqCh
}

func (rm *RoomMachine) PlayerCount() int {
	return int(rm.playerCount.Load())
}

func (rm *RoomMachine) CreatedAt() time.Time {
	return rm.createdAt
}

func (rm *RoomMachine) Run() {
	defer rm.ctx.StopTicker()

	// 执行初始 handler 的 OnEnter
	rm.handler.OnEnter(rm.ctx)

	// 进入事件循环
	for {
		var req RequestWrapper

		select {
		case req = <-rm.reqCh:
			zap.L().Debug(
				"接收到客户端请求",
				zap.String("room_id", rm.ctx.RoomID),
				zap.String("request_type", req.ReqType),
			)
		case req = <-rm.ctx.TickCh:
		case <-rm.doneCh:
			zap.L().Info(
				"收到退出信号，结束房间状态机",
				zap.String("room_id", rm.ctx.RoomID),
			)
			return
		}

		// 处理请求；授权/状态类失败按产品策略静默忽略，只记录调试日志
		err := rm.handler.OnHandle(rm.ctx, req)
		if err != nil {
			zap.L().Debug(
				"处理请求失败",
				zap.Error(err),
				zap.String("room_id", rm.ctx.RoomID),
				zap.String("stage", rm.handler.Stage()),
				zap.String("request_type", req.ReqType),
			)
		}

		if len(rm.ctx.Players) > 0 {
			rm.everJoined = true
		}

		rm.playerCount.Store(int32(len(rm.ctx.Players)))

		// 玩家全部离开后立即回收房间
		if rm.everJoined && len(rm.ctx.Players) == 0 {
			zap.L().Info(
				"房间已无玩家，回收资源",
				zap.String("room_id", rm.ctx.RoomID),
			)

			if rm.onRelease != nil {
				rm.onRelease(rm.ctx.RoomID)
			}

			return
		}

		// 检查状态是否发生变化
		if rm.ctx.Stage != rm.handler.Stage() {
			rm.switchStage()

			// 执行新阶段的 OnEnter
			rm.handler.OnEnter(rm.ctx)
		}
	}
}

func (rm *RoomMachine) switchStage() {
	// 执行当前 handler 的 OnExit
	rm.handler.OnExit(rm.ctx)

	// 根据新状态创建对应的 handler
	var newHandler StageHandler

	switch rm.ctx.Stage {
	case STAGE_LOBBY:
		newHandler = NewLobbyStageHandler()
	case STAGE_CLUE:
		newHandler = NewClueStageHandler()
	case STAGE_GUESS:
		newHandler = NewGuessStageHandler()
	case STAGE_FINISHED:
		newHandler = NewFinishedStageHandler()
	default:
		zap.L().Error(
			"未知的游戏阶段",
			zap.String("room_id", rm.ctx.RoomID),
			zap.String("stage", rm.ctx.Stage),
		)
		return
	}

	// 设置 onSwitch 回调
	onSwitch := func(nextStage string) {
		rm.ctx.Stage = nextStage
	}

	newHandler.SetOnSwitch(onSwitch)

	// 更新当前 handler
	rm.handler = newHandler
}
