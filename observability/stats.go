package observability

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const RuntimeStatsName = "xordered/runtime"

// runtimeStats observes the process hosting the trees. Arena growth shows up
// in the resident memory gauge.
type runtimeStats struct {
	proc       *process.Process
	goroutines metric.Int64ObservableUpDownCounter
	gomaxprocs metric.Int64ObservableGauge
	rss        metric.Int64ObservableGauge
	reg        metric.Registration
}

func (stats *runtimeStats) observe(ctx context.Context, ob metric.Observer) error {
	ob.ObserveInt64(stats.goroutines, int64(runtime.NumGoroutine()))
	ob.ObserveInt64(stats.gomaxprocs, int64(runtime.GOMAXPROCS(0)))
	mem, err := stats.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		// The goroutine and procs values are still reported.
		return nil
	}
	ob.ObserveInt64(stats.rss, int64(mem.RSS))
	return nil
}

func (stats *runtimeStats) unregister() error {
	if stats == nil || stats.reg == nil {
		return nil
	}
	return stats.reg.Unregister()
}

func runtimeStatsName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString(RuntimeStatsName)
	builder.WriteString("/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// StartRuntimeStats registers the process instruments and the otel Go
// runtime instrumentation on the global MeterProvider. GOMAXPROCS is aligned
// with the container CPU quota first. The returned callback unregisters the
// process instruments and restores GOMAXPROCS.
func StartRuntimeStats(name string, logger *zap.Logger) (func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))
	if err != nil {
		logger.Warn("[observability] automaxprocs failed", zap.Error(err))
		undo = func() {}
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		undo()
		return nil, err
	}
	meter := otel.Meter(
		runtimeStatsName(name),
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)
	stats := &runtimeStats{
		proc: proc,
		goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
			"xordered.runtime.goroutines",
			metric.WithDescription(`The application goroutines' info.`),
		)),
		gomaxprocs: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"xordered.runtime.gomaxprocs",
			metric.WithDescription(`The application processes' info.`),
		)),
		rss: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"xordered.runtime.rss",
			metric.WithDescription(`The resident memory of the process.`),
			metric.WithUnit("By"),
		)),
	}
	if stats.reg, err = meter.RegisterCallback(
		stats.observe,
		stats.goroutines, stats.gomaxprocs, stats.rss,
	); err != nil {
		undo()
		return nil, err
	}
	if err = otelruntime.Start(otelruntime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		undo()
		return nil, multierr.Append(err, stats.unregister())
	}
	return func() error {
		undo()
		return stats.unregister()
	}, nil
}
