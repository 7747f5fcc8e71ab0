package observability

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type metricsModuleParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Logger    *zap.Logger `optional:"true"`
}

// MetricsModule installs the metrics exporter when the fx app is built and
// shuts the MeterProvider down on stop. A *zap.Logger is optional, the
// xlog.Module provides one.
func MetricsModule(kind MetricsExporterKind, opts ...MetricsExporterOption) fx.Option {
	return fx.Module("xordered-metrics",
		fx.Invoke(func(in metricsModuleParams) error {
			logger := in.Logger
			if logger == nil {
				logger = zap.NewNop()
			}
			shutdown, err := NewMetricsExporter(kind, opts...)
			if err != nil {
				logger.Error("[observability] metrics exporter init failed",
					zap.String("kind", kind.String()),
					zap.Error(err),
				)
				return err
			}
			logger.Info("[observability] metrics exporter installed", zap.String("kind", kind.String()))

			stopRuntimeStats := func() error { return nil }
			if o := newMetricsExporterOptions(opts...); o.runtimeStats {
				if stopRuntimeStats, err = StartRuntimeStats(o.runtimeStatsName, logger); err != nil {
					logger.Error("[observability] runtime stats init failed", zap.Error(err))
					return multierr.Append(err, shutdown(context.Background()))
				}
			}

			in.Lifecycle.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					logger.Info("[observability] metrics exporter shutdown", zap.String("kind", kind.String()))
					// The final collection still observes the runtime instruments.
					err := shutdown(ctx)
					return multierr.Append(err, stopRuntimeStats())
				},
			})
			return nil
		}),
	)
}
