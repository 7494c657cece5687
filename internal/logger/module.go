package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module builds the process logger and installs it as the global one
var Module = fx.Module("logger",
	fx.Provide(NewLogger),
	fx.Invoke(func(lc fx.Lifecycle, l *zap.Logger) {
		SetLogger(l)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				// stdout sync fails on some terminals; nothing to do about it
				_ = l.Sync()
				return nil
			},
		})
	}),
)
