package main

import (
	"fmt"

	"codenames-be/internal/api/http"
	"codenames-be/internal/config"
	"codenames-be/internal/logger"
	"codenames-be/internal/service"
	"codenames-be/internal/service/game"
	"codenames-be/internal/state"
	"codenames-be/internal/words"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel)

	// 启动时一次性加载词库
	catalog, err := words.LoadCatalog(cfg.WordsDir)
	if err != nil {
		panic(fmt.Errorf("加载词库失败: %w", err))
	}

	durations := game.TurnDurations{
		GuessSeconds:      cfg.GuessSeconds,
		FirstGuessSeconds: cfg.FirstGuessSeconds,
	}

	// 组装应用状态
	appState := state.NewAppState(
		cfg,
		catalog,
		service.NewRoomService(catalog, durations),
	)

	// 启动服务器
	http.RunServer(appState)
}
