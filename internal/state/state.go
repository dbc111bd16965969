package state

import (
	"codenames-be/internal/config"
	"codenames-be/internal/service"
	"codenames-be/internal/words"
)

type AppState struct {
	Cfg     *config.AppConfig
	Catalog *words.Catalog
	RoomSvc *service.RoomService
}

func NewAppState(
	cfg *config.AppConfig,
	catalog *words.Catalog,
	roomSvc *service.RoomService,
) *AppState {
	return &AppState{
		Cfg:     cfg,
		Catalog: catalog,
		RoomSvc: roomSvc,
	}
}
