package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xveb/lib/infra"
)

type MetricsExporterType uint8

const (
	ConsoleExporter MetricsExporterType = iota
	PrometheusExporter
)

var (
	ErrUnknownMetricsExporter = errors.New("[observability] unknown metrics exporter")
)

type exporterCfg struct {
	interval      time.Duration
	timeout       time.Duration
	consoleOpts   []stdoutmetric.Option
	prometheusOpt []prometheus.Option
}

type MetricsExporterOption func(cfg *exporterCfg)

// WithConsoleInterval sets the periodic reader interval and timeout
// of the console exporter.
func WithConsoleInterval(interval, timeout time.Duration) MetricsExporterOption {
	return func(cfg *exporterCfg) {
		cfg.interval = interval
		cfg.timeout = timeout
	}
}

func WithConsoleOptions(opts ...stdoutmetric.Option) MetricsExporterOption {
	return func(cfg *exporterCfg) {
		cfg.consoleOpts = append(cfg.consoleOpts, opts...)
	}
}

func WithPrometheusOptions(opts ...prometheus.Option) MetricsExporterOption {
	return func(cfg *exporterCfg) {
		cfg.prometheusOpt = append(cfg.prometheusOpt, opts...)
	}
}

// InitMetricsExporter installs the global meter provider the vEB tree
// stats record into. The returned callback flushes and shuts it down.
// The provider is also shut down once ctx is done.
func InitMetricsExporter(ctx context.Context, typ MetricsExporterType, opts ...MetricsExporterOption) (func(ctx context.Context) error, error) {
	cfg := &exporterCfg{
		interval: 10 * time.Second,
		timeout:  5 * time.Second,
	}
	for _, o := range opts {
		o(cfg)
	}

	var (
		mp  *metric.MeterProvider
		err error
	)
	switch typ {
	case ConsoleExporter:
		mp, err = newConsoleMeterProvider(cfg)
	case PrometheusExporter:
		mp, err = newPrometheusMeterProvider(cfg)
	default:
		return nil, infra.WrapErrorStack(ErrUnknownMetricsExporter)
	}
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	otel.SetMeterProvider(mp)

	stop := context.AfterFunc(ctx, func() {
		_ = mp.Shutdown(context.Background())
	})
	return func(ctx context.Context) error {
		stop()
		if err := mp.ForceFlush(ctx); err != nil {
			return err
		}
		return mp.Shutdown(ctx)
	}, nil
}

// Serves for test/dev environment.
func newConsoleMeterProvider(cfg *exporterCfg) (*metric.MeterProvider, error) {
	exporter, err := stdoutmetric.New(cfg.consoleOpts...)
	if err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(cfg.interval),
		metric.WithTimeout(cfg.timeout),
	))), nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMeterProvider(cfg *exporterCfg) (*metric.MeterProvider, error) {
	exporter, err := prometheus.New(cfg.prometheusOpt...)
	if err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(metric.WithReader(exporter)), nil
}
