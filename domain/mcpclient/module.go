package mcpclient

import (
	"context"

	"go.uber.org/fx"

	"github.com/drewby/chackgpt/domain/health"
)

// Module provides the MCP client for the API service.
var Module = fx.Module("mcpclient",
	fx.Provide(NewClient),
	fx.Provide(health.AsChecker(func(c *Client) *Client { return c })),
	fx.Invoke(RegisterLifecycle),
)

// RegisterLifecycle closes the session on shutdown.
func RegisterLifecycle(lc fx.Lifecycle, c *Client) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
}
