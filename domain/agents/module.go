package agents

import (
	"context"

	"go.uber.org/fx"

	"github.com/drewby/chackgpt/domain/mcpclient"
)

// Module provides the agent factory and the chat model.
var Module = fx.Module("agents",
	fx.Provide(NewStreamer),
	fx.Provide(func(c *mcpclient.Client) MCPTools { return c }),
	fx.Provide(NewFactory),
	fx.Invoke(RegisterLifecycle),
)

// RegisterLifecycle refuses to start with configured but invalid Azure
// OpenAI options.
func RegisterLifecycle(lc fx.Lifecycle, f *Factory) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if !f.Streamer().IsConfigured() {
				return nil
			}
			return f.Validate()
		},
	})
}
