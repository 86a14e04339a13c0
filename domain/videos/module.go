package videos

import (
	"go.uber.org/fx"
)

// Module serves videos and images from the web root.
var Module = fx.Module("videos",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
