package http

import (
	"errors"
	"fmt"

	"codenames-be/internal/service"
	"codenames-be/internal/service/dto"
	"codenames-be/internal/state"

	"github.com/kataras/iris/v12"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

func CreateRoom(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req dto.CreateRoomRequest

		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "请求参数无效",
			})
			return
		}

		resp, err := appState.RoomSvc.CreateRoom(req)
		if err != nil {
			if errors.Is(err, service.ErrRoomExists) {
				ctx.StatusCode(iris.StatusConflict)
			} else {
				ctx.StatusCode(iris.StatusBadRequest)
			}

			ctx.JSON(iris.Map{
				"error": err.Error(),
			})
			return
		}

		ctx.JSON(resp)
	}
}

// RoomQR 返回房间加入链接的二维码图片
func RoomQR(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		roomID := ctx.Params().Get("id")

		if !appState.RoomSvc.RoomExists(roomID) {
			ctx.StatusCode(iris.StatusNotFound)
			ctx.JSON(iris.Map{
				"error": "房间不存在",
			})
			return
		}

		joinURL := fmt.Sprintf("%s/?room=%s", appState.Cfg.PublicURL, roomID)

		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			zap.L().Error("生成二维码失败", zap.Error(err))
			ctx.StatusCode(iris.StatusInternalServerError)
			return
		}

		ctx.ContentType("image/png")
		ctx.Write(png)
	}
}

func Languages(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"languages": appState.Catalog.Languages(),
		})
	}
}
