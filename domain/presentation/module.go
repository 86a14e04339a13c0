package presentation

import (
	"go.uber.org/fx"

	"github.com/drewby/chackgpt/domain/health"
	"github.com/drewby/chackgpt/domain/mcp"
)

// Module provides presentation slides over REST and MCP.
var Module = fx.Module("presentation",
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Provide(
		mcp.AsTool(NewSlideTool),
		mcp.AsTool(NewTopicsTool),
		health.AsChecker(func(s *Service) *Service { return s }),
	),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RegisterImageRoutes),
)
