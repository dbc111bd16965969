package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"codenames-be/internal/service"
	"codenames-be/internal/service/game"
	"codenames-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// JoinGame 升级连接并把它接入房间的事件循环
// 首帧必须是 JoinRoom 请求；之后这条连接上的每个请求都会
// 被打上连接级的玩家 ID 再转发，客户端无法冒充他人
func JoinGame(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		respCh := make(chan game.ResponseWrapper, 64)

		clientIP := ctx.RemoteAddr()

		// 读取首次请求，获取必要的参数
		_, msg, err := conn.ReadMessage()
		if err != nil {
			zap.L().Error(
				"读取首次请求失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			return
		}

		var wrapper game.RequestWrapper

		if err := json.Unmarshal(msg, &wrapper); err != nil {
			zap.L().Error(
				"解析首次请求失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			return
		}

		req := game.TryUnwrapJoinRoomRequest(wrapper)
		if req == nil {
			zap.L().Error(
				"首次请求不是JoinRoom类型",
				zap.String("client_ip", clientIP),
				zap.Any("wrapper", wrapper),
			)
			return
		}

		// 连接级的玩家 ID，在这条连接的生命周期内不变
		playerID := game.GenID()
		playerID = playerID[len(playerID)-8:]

		req.PlayerID = playerID

		reqCh, err := appState.RoomSvc.JoinRoom(req, respCh)
		if err != nil {
			zap.L().Warn(
				"加入房间失败",
				zap.String("client_ip", clientIP),
				zap.String("room_id", req.RoomID),
				zap.Error(err),
			)

			// 未知房间需要给用户可见的错误提示
			if errors.Is(err, service.ErrRoomNotFound) {
				conn.WriteJSON(game.WrapErrResponse("房间不存在"))
			}

			return
		}

		zap.L().Info(
			"玩家连接加入房间",
			zap.String("client_ip", clientIP),
			zap.String("room_id", req.RoomID),
			zap.String("player_id", playerID),
			zap.String("player_name", req.PlayerName),
		)

		// 写协程的退出信号
		writeDoneCh := make(chan struct{})
		defer close(writeDoneCh)

		// 写入协程
		go func() {
			ticker := time.NewTicker(HEARTBEAT_INTERVAL)
			defer ticker.Stop()

			for {
				select {
				case <-writeDoneCh:
					return

				case <-ticker.C:
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						zap.L().Error(
							"发送心跳失败",
							zap.String("client_ip", clientIP),
							zap.Error(err),
						)
						return
					}

					conn.SetWriteDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))

				case resp, ok := <-respCh:
					// 通道已关闭说明状态机已经移除该玩家
					if !ok {
						zap.L().Info(
							"响应通道已关闭，退出写协程",
							zap.String("client_ip", clientIP),
						)
						return
					}

					if err := conn.WriteJSON(resp); err != nil {
						zap.L().Error(
							"发送消息失败",
							zap.String("client_ip", clientIP),
							zap.Error(err),
						)
						return
					}
				}
			}
		}()

		limiter := rate.NewLimiter(rate.Limit(RATE_LIMIT_PER_SECOND), RATE_LIMIT_BURST)

		// 读取协程（主协程）
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					zap.L().Error(
						"读取消息失败",
						zap.String("client_ip", clientIP),
						zap.Error(err),
					)
				}

				break
			}

			if !limiter.Allow() {
				zap.L().Warn(
					"请求超出速率限制",
					zap.String("client_ip", clientIP),
					zap.String("player_id", playerID),
				)

				respCh <- game.WrapErrResponse("请求过于频繁，请稍后再试")

				continue
			}

			// 解析消息
			var wrapper game.RequestWrapper

			if err := json.Unmarshal(msg, &wrapper); err != nil {
				zap.L().Error(
					"解析消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)

				respCh <- game.WrapErrResponse("无效的请求格式")

				continue
			}

			// 内部请求类型不允许从客户端发送
			if game.IsInternalRequest(wrapper.ReqType) {
				respCh <- game.WrapErrResponse("无效的请求类型")
				continue
			}

			wrapper.ActorID = playerID

			// 将解析后的请求发送到房间状态机
			select {
			case reqCh <- wrapper:
			default:
				zap.L().Error(
					"发送请求到房间状态机失败：请求通道已满",
					zap.String("client_ip", clientIP),
				)

				respCh <- game.WrapErrResponse("房间繁忙，请稍后再试")
			}
		}

		// 读循环退出，表示客户端断开连接
		// 发送 Disconnect 请求通知房间状态机清理玩家
		zap.L().Info(
			"客户端连接断开，发送清理请求",
			zap.String("client_ip", clientIP),
			zap.String("player_id", playerID),
		)

		disconnectWrapper := game.RequestWrapper{
			ReqType: game.REQ_DISCONNECT,
			NativeData: &game.DisconnectRequest{
				PlayerID: playerID,
				RespCh:   respCh,
			},
		}

		sendTimer := time.NewTimer(3 * time.Second)
		defer sendTimer.Stop()

		select {
		case reqCh <- disconnectWrapper:
		case <-sendTimer.C:
			zap.L().Warn(
				"发送清理请求超时",
				zap.String("player_id", playerID),
			)
		}
	}
}
