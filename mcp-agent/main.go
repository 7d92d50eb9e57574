package main

import (
	"context"

	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/appconfig"
	"github.com/MuaazSM/multimodal-travel-agent/bootstrap"
	"github.com/MuaazSM/multimodal-travel-agent/handlers"
)

func main() {
	dotenv.LoadEnv()

	ccfgg, err := appconfig.Load("config.ini")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	app, err := bootstrap.New(context.Background(), ccfgg, nil, nil)
	if err != nil {
		logger.Fatal("Failed to build travel orchestrator", zap.Error(err))
	}
	defer app.Close()

	s := server.NewMCPServer(
		"travel-agent-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(handlers.TravelQueryTool(), handlers.NewTravelQueryHandler(app.Orchestrator).Handle)

	if err := server.ServeStdio(s); err != nil {
		logger.Fatal("Failed to serve MCP", zap.Error(err))
	}
}
