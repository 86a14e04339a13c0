// Package main runs the ChackGPT API service, which serves presentation
// slides and video metadata over REST and MCP.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/drewby/chackgpt/domain/health"
	"github.com/drewby/chackgpt/domain/mcp"
	"github.com/drewby/chackgpt/domain/presentation"
	"github.com/drewby/chackgpt/domain/tracing"
	"github.com/drewby/chackgpt/domain/video"
	"github.com/drewby/chackgpt/internal/config"
	"github.com/drewby/chackgpt/internal/server"
	"github.com/drewby/chackgpt/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		logger.Module,
		config.Module,
		fx.Decorate(config.ForAPIService),
		server.Module,
		tracing.Module,
		health.Module,

		mcp.Module,
		presentation.Module,
		video.Module,
	).Run()
}
