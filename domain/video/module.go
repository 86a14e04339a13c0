package video

import (
	"go.uber.org/fx"

	"github.com/drewby/chackgpt/domain/health"
	"github.com/drewby/chackgpt/domain/mcp"
)

// Module provides video metadata over REST and MCP.
var Module = fx.Module("video",
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Provide(
		mcp.AsTool(NewGetVideoTool),
		mcp.AsTool(NewAllVideosTool),
		health.AsChecker(func(s *Service) *Service { return s }),
	),
	fx.Invoke(RegisterRoutes),
)
