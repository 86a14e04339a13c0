package display

import (
	"go.uber.org/fx"
)

// Module provides the slide popup and video player state.
var Module = fx.Module("display",
	fx.Provide(NewSanitizer),
	fx.Provide(NewSlideService),
	fx.Provide(NewVideoService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
