package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

var (
	ErrUnknownMetricsExporter = errors.New("[observability] unknown metrics exporter kind")
)

type MetricsExporterKind uint8

const (
	ConsoleMetricsExporter MetricsExporterKind = iota
	PrometheusMetricsExporter
)

func (kind MetricsExporterKind) String() string {
	switch kind {
	case ConsoleMetricsExporter:
		return "console"
	case PrometheusMetricsExporter:
		return "prometheus"
	default:
	}
	return "unknown"
}

type metricsExporterOptions struct {
	interval   time.Duration
	timeout    time.Duration
	writer     io.Writer
	registerer promclient.Registerer
	// Only read by MetricsModule.
	runtimeStats     bool
	runtimeStatsName string
}

type MetricsExporterOption func(*metricsExporterOptions)

// WithConsoleMetricsInterval sets the periodic reader interval and timeout.
func WithConsoleMetricsInterval(interval, timeout time.Duration) MetricsExporterOption {
	return func(opts *metricsExporterOptions) {
		if interval > 0 {
			opts.interval = interval
		}
		if timeout > 0 {
			opts.timeout = timeout
		}
	}
}

func WithConsoleMetricsWriter(w io.Writer) MetricsExporterOption {
	return func(opts *metricsExporterOptions) {
		if w != nil {
			opts.writer = w
		}
	}
}

// WithPrometheusRegisterer replaces the prometheus default registerer.
func WithPrometheusRegisterer(reg promclient.Registerer) MetricsExporterOption {
	return func(opts *metricsExporterOptions) {
		opts.registerer = reg
	}
}

// WithRuntimeStats makes MetricsModule start the process instruments too.
func WithRuntimeStats(name string) MetricsExporterOption {
	return func(opts *metricsExporterOptions) {
		opts.runtimeStats = true
		opts.runtimeStatsName = name
	}
}

// NewMetricsExporter installs a global MeterProvider backed by the given
// exporter. The returned callback flushes and shuts the provider down.
func NewMetricsExporter(kind MetricsExporterKind, opts ...MetricsExporterOption) (func(ctx context.Context) error, error) {
	o := newMetricsExporterOptions(opts...)
	switch kind {
	case ConsoleMetricsExporter:
		return newConsoleMetricsExporter(o.interval, o.timeout, stdoutmetric.WithWriter(o.writer))
	case PrometheusMetricsExporter:
		var promOpts []prometheus.Option
		if o.registerer != nil {
			promOpts = append(promOpts, prometheus.WithRegisterer(o.registerer))
		}
		return newPrometheusMetricsExporter(promOpts...)
	default:
	}
	return nil, ErrUnknownMetricsExporter
}

func newMetricsExporterOptions(opts ...MetricsExporterOption) *metricsExporterOptions {
	o := &metricsExporterOptions{
		interval: 10 * time.Second,
		timeout:  5 * time.Second,
		writer:   os.Stdout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter(opts ...prometheus.Option) (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}
