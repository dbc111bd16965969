package game

import (
	"time"

	"go.uber.org/zap"
)

// 计时循环：每个房间一个 1 Hz 的 ticker 协程
// tick 事件发进 TickCh 后由房间事件循环串行处理，
// 自发的时间变更和客户端请求因此天然互斥

// StartTicker 启动（或重启）房间的计时协程
// 每次启动都会让代次 +1，旧协程排队中的 tick 会因代次不匹配被丢弃
func (rc *RoomContext) StartTicker() {
	rc.StopTicker()

	rc.tickGen++
	gen := rc.tickGen

	stop := make(chan struct{})
	rc.tickStop = stop

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return

			case <-ticker.C:
				wrapper := RequestWrapper{
					ReqType:    REQ_TICK,
					NativeData: &TickRequest{Gen: gen},
				}

				select {
				case rc.TickCh <- wrapper:
				default:
					// 事件循环积压时丢弃本次 tick，下一秒会追上
				}
			}
		}
	}()
}

// StopTicker 停止计时协程，可以安全地重复调用
func (rc *RoomContext) StopTicker() {
	if rc.tickStop != nil {
		close(rc.tickStop)
		rc.tickStop = nil
	}
}

// handleTick 应用一次 tick，返回需要切换到的阶段（空表示不切换）
// 过期代次、未开始、暂停、已分胜负、提示阶段都是无操作：
// 暂停期间计时器不减，恢复后从原秒数继续
func handleTick(ctx *RoomContext, req *TickRequest) string {
	if req.Gen != ctx.tickGen {
		zap.L().Debug(
			"丢弃过期代次的 tick",
			zap.String("room_id", ctx.RoomID),
			zap.Uint64("tick_gen", req.Gen),
			zap.Uint64("current_gen", ctx.tickGen),
		)
		return ""
	}

	if !ctx.Started || ctx.Paused || ctx.State.Winner != "" {
		return ""
	}

	if ctx.State.Phase != PHASE_GUESS {
		return ""
	}

	remaining := ctx.State.timerFor(ctx.State.CurrentTeam)
	if *remaining <= 0 {
		// 猜词阶段计时器总是被设置过，这里只是兜底
		switchTurn(ctx.State)
		broadcastState(ctx)
		return STAGE_CLUE
	}

	*remaining--

	if *remaining == 0 {
		// 倒数到 0 的这一个 tick 直接触发换边，和手动结束回合走同一条路径
		switchTurn(ctx.State)
		broadcastState(ctx)
		return STAGE_CLUE
	}

	broadcastTimers(ctx)

	return ""
}
