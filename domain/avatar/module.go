package avatar

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/drewby/chackgpt/domain/health"
	"github.com/drewby/chackgpt/pkg/logger"
)

// Module provides the ChackGPT and DrewGPT emotion services.
var Module = fx.Module("avatar",
	fx.Provide(NewStore),
	fx.Provide(NewChackService),
	fx.Provide(NewDrewService),
	fx.Provide(health.AsChecker(func(s Store) Store { return s })),
	fx.Invoke(RegisterLifecycle),
)

// RegisterLifecycle restores persisted state on start.
func RegisterLifecycle(lc fx.Lifecycle, chack *ChackService, drew *DrewService, log *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, s := range []*Service{chack.Service, drew.Service} {
				if err := s.Restore(ctx); err != nil {
					log.Warn("could not restore avatar state",
						logger.Scope("avatar"),
						slog.String("character", s.Character()),
						logger.Error(err),
					)
				}
			}
			return nil
		},
	})
}
