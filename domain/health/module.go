package health

import (
	"go.uber.org/fx"
)

// Module serves liveness, readiness, debug and Prometheus routes. Other
// modules contribute dependency checks through the "health_checkers" group.
var Module = fx.Module("health",
	fx.Provide(
		NewHandler,
		NewMetricsHandler,
	),
	fx.Invoke(RegisterRoutes),
)

// AsChecker annotates a constructor so its result joins the checker group.
func AsChecker(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(Checker)),
		fx.ResultTags(`group:"health_checkers"`),
	)
}
