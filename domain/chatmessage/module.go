package chatmessage

import (
	"go.uber.org/fx"
)

// Module provides the UI coordination service.
var Module = fx.Module("chatmessage",
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
