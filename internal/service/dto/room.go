package dto

import "codenames-be/internal/service/game"

type CreateRoomRequest struct {
	// 可选，留空则由服务端生成
	RoomID   string        `json:"room_id"`
	Settings game.Settings `json:"settings"`
}

type CreateRoomResponse struct {
	RoomID string `json:"room_id"`
}
