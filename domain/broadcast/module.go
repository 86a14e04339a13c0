package broadcast

import (
	"context"

	"go.uber.org/fx"
)

// Module forwards service events to hub clients. The binary provides Clients.
var Module = fx.Module("broadcast",
	fx.Provide(NewService),
	fx.Invoke(RegisterLifecycle),
)

func RegisterLifecycle(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
}
