package chat

import (
	"context"

	"go.uber.org/fx"

	"github.com/drewby/chackgpt/domain/broadcast"
)

// Module provides the chat hub and registers its routes. The hub is also
// the broadcaster's client set.
var Module = fx.Module("chat",
	fx.Provide(NewHub),
	fx.Provide(NewHandler),
	fx.Provide(func(h *Hub) broadcast.Clients { return h }),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RegisterLifecycle),
)

// RegisterLifecycle disconnects every client on shutdown.
func RegisterLifecycle(lc fx.Lifecycle, hub *Hub) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			hub.Close()
			return nil
		},
	})
}
