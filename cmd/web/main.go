// Package main runs the ChackGPT web front end: the chat hub, the agents
// and the UI state services behind it.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/drewby/chackgpt/domain/agents"
	"github.com/drewby/chackgpt/domain/avatar"
	"github.com/drewby/chackgpt/domain/broadcast"
	"github.com/drewby/chackgpt/domain/chat"
	"github.com/drewby/chackgpt/domain/chatmessage"
	"github.com/drewby/chackgpt/domain/display"
	"github.com/drewby/chackgpt/domain/health"
	"github.com/drewby/chackgpt/domain/mcpclient"
	"github.com/drewby/chackgpt/domain/tracing"
	"github.com/drewby/chackgpt/domain/videos"
	"github.com/drewby/chackgpt/domain/workflow"
	"github.com/drewby/chackgpt/internal/config"
	"github.com/drewby/chackgpt/internal/server"
	"github.com/drewby/chackgpt/pkg/logger"
)

func main() {
	// .env.local overrides .env; neither overrides the real environment
	// unless Overload is used.
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure
		logger.Module,
		config.Module,
		server.Module,
		tracing.Module,
		health.Module,

		// UI state
		avatar.Module,
		display.Module,
		chatmessage.Module,

		// Agents and the conversation loop
		mcpclient.Module,
		agents.Module,
		workflow.Module,

		// Real-time delivery
		chat.Module,
		broadcast.Module,

		videos.Module,
	).Run()
}
