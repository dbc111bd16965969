package game

import (
	"go.uber.org/zap"
)

// RoomContext 是单个房间的全部可变状态
// 只在房间自己的事件循环协程内被读写，因此不需要加锁
type RoomContext struct {
	RoomID   string
	Stage    string
	Players  []*Player
	Settings Settings
	State    *GameState
	Started  bool
	Paused   bool
	// 内奸玩家 ID，空表示未分配；目前只做私下通知，不影响玩法
	TraitorID string

	Words     WordSource
	Durations TurnDurations

	// 计时循环的 tick 事件汇入此通道，和客户端请求走同一个事件循环
	TickCh chan RequestWrapper

	tickGen  uint64
	tickStop chan struct{}
}

func (rc *RoomContext) FindPlayer(playerID string) *Player {
	for _, p := range rc.Players {
		if p.ID == playerID {
			return p
		}
	}

	return nil
}

func (rc *RoomContext) removePlayer(playerID string) {
	for i, p := range rc.Players {
		if p.ID == playerID {
			rc.Players = append(rc.Players[:i], rc.Players[i+1:]...)
			return
		}
	}
}

// PlayersSnapshot 返回玩家列表的值拷贝，用于广播
func (rc *RoomContext) PlayersSnapshot() []Player {
	out := make([]Player, 0, len(rc.Players))
	for _, p := range rc.Players {
		out = append(out, *p)
	}

	return out
}

func (rc *RoomContext) BroadcastResp(resp ResponseWrapper) {
	for _, p := range rc.Players {
		select {
		case p.RespCh <- resp:
		default:
			zap.L().Warn(
				"发送广播响应失败：玩家响应通道已满",
				zap.String("room_id", rc.RoomID),
				zap.String("player_id", p.ID),
			)
		}
	}
}

func (rc *RoomContext) UnicastResp(playerID string, resp ResponseWrapper) {
	player := rc.FindPlayer(playerID)
	if player == nil {
		zap.L().Warn(
			"无法找到玩家进行单播响应",
			zap.String("room_id", rc.RoomID),
			zap.String("player_id", playerID),
		)
		return
	}

	select {
	case player.RespCh <- resp:
	default:
		zap.L().Warn(
			"发送单播响应失败：玩家响应通道已满",
			zap.String("room_id", rc.RoomID),
			zap.String("player_id", playerID),
		)
	}
}
