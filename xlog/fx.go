package xlog

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var _ fxevent.Logger = (*FxXLogger)(nil)

// FxXLogger prints the fx lifecycle events by the zap logger.
type FxXLogger struct {
	logger *zap.Logger
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			l.logger.Error("HOOK OnStart failed",
				zap.String("function", e.FunctionName),
				zap.String("caller", e.CallerName),
				zap.Error(e.Err),
			)
		} else {
			l.logger.Debug("HOOK OnStart successfully",
				zap.String("function", e.FunctionName),
				zap.String("caller", e.CallerName),
				zap.Int64("in", int64(e.Runtime)),
			)
		}
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			l.logger.Error("HOOK OnStop failed",
				zap.String("function", e.FunctionName),
				zap.String("caller", e.CallerName),
				zap.Error(e.Err),
			)
		} else {
			l.logger.Info("HOOK OnStop successfully",
				zap.String("function", e.FunctionName),
				zap.String("caller", e.CallerName),
				zap.Int64("in", int64(e.Runtime)),
			)
		}
	case *fxevent.Supplied:
		if e.Err != nil {
			l.logger.Error("SUPPLY ERROR",
				zap.String("type", e.TypeName),
				zap.Error(e.Err),
			)
		}
	case *fxevent.Provided:
		for _, rtype := range e.OutputTypeNames {
			l.logger.Debug("PROVIDE",
				zap.String("rtype", rtype),
				zap.String("constructor", e.ConstructorName),
				zap.String("module", e.ModuleName),
			)
		}
		if e.Err != nil {
			l.logger.Error("Error after options were applied", zap.Error(e.Err))
		}
	case *fxevent.Invoking:
		l.logger.Debug("INVOKING",
			zap.String("function", e.FunctionName),
			zap.String("module", e.ModuleName),
		)
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error("Error fx.Invoke",
				zap.String("function", e.FunctionName),
				zap.Error(e.Err),
			)
		}
	case *fxevent.Stopping:
		l.logger.Info("STOPPING", zap.String("signal", e.Signal.String()))
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error("Failed to stop cleanly", zap.Error(e.Err))
		}
	case *fxevent.RollingBack:
		l.logger.Warn("Start failed, rolling back", zap.Error(e.StartErr))
	case *fxevent.RolledBack:
		if e.Err != nil {
			l.logger.Error("Couldn't roll back cleanly", zap.Error(e.Err))
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error("Failed to start", zap.Error(e.Err))
		} else {
			l.logger.Debug("RUNNING")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error("Failed to initialize custom logger", zap.Error(e.Err))
		}
	default:
	}
}

func NewFxXLogger(logger *zap.Logger) *FxXLogger {
	return &FxXLogger{logger: logger.Named("fx")}
}

// Module provides the *XLogger and its *zap.Logger to the fx graph and
// routes the fx events through it.
func Module(opts ...XLoggerOption) fx.Option {
	return fx.Options(
		fx.Module("xordered-xlog",
			fx.Provide(
				func() (*XLogger, error) {
					return NewXLogger(opts...)
				},
				func(xl *XLogger) *zap.Logger {
					return xl.Zap()
				},
			),
			fx.Invoke(func(lc fx.Lifecycle, xl *XLogger) {
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						// Sync on a terminal returns EINVAL.
						_ = xl.Sync()
						return nil
					},
				})
			}),
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return NewFxXLogger(logger)
		}),
	)
}
