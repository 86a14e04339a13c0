package mcp

import (
	"go.uber.org/fx"
)

// Module serves the Model Context Protocol endpoint at /api/mcp over the
// streamable HTTP transport. Content domains contribute tools with AsTool.
var Module = fx.Module("mcp",
	fx.Provide(NewServer),
	fx.Provide(NewStreamableHTTPServer),
	fx.Invoke(RegisterRoutes),
)

// AsTool annotates a constructor so its result is registered on the server.
func AsTool(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(Tool)),
		fx.ResultTags(`group:"mcp_tools"`),
	)
}
