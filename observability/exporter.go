package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"net/http"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/rbset/lib/infra"
)

type MetricsExporter string

const (
	NoopMetricsExporter       MetricsExporter = ""
	ConsoleMetricsExporter    MetricsExporter = "stdout"
	PrometheusMetricsExporter MetricsExporter = "prometheus"
)

// ParseMetricsExporter parses the RBSET_METRICS env value.
func ParseMetricsExporter(kind string) (MetricsExporter, error) {
	switch exp := MetricsExporter(strings.ToLower(strings.TrimSpace(kind))); exp {
	case NoopMetricsExporter, ConsoleMetricsExporter, PrometheusMetricsExporter:
		return exp, nil
	default:
	}
	return NoopMetricsExporter, infra.NewErrorStack("[observability] unknown metrics exporter " + kind)
}

// Metrics is the installed exporter.
type Metrics struct {
	Shutdown func(ctx context.Context) error
	// Handler serves the scrape endpoint, nil except prometheus.
	Handler http.Handler
}

func nopShutdown(context.Context) error {
	return nil
}

// InitMetricsExporter installs the global meter provider.
// The noop exporter keeps the otel default provider.
func InitMetricsExporter(kind MetricsExporter, interval time.Duration) (*Metrics, error) {
	switch kind {
	case ConsoleMetricsExporter:
		shutdown, err := newConsoleMetricsExporter(interval, interval)
		if err != nil {
			return nil, err
		}
		return &Metrics{Shutdown: shutdown}, nil
	case PrometheusMetricsExporter:
		// Each call owns a registry to avoid the duplicated collectors.
		registry := prom.NewRegistry()
		shutdown, err := newPrometheusMetricsExporter(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, err
		}
		return &Metrics{
			Shutdown: shutdown,
			Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}, nil
	case NoopMetricsExporter:
		return &Metrics{Shutdown: nopShutdown}, nil
	default:
	}
	return nil, infra.NewErrorStack("[observability] unknown metrics exporter " + string(kind))
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] stdout exporter")
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter(opts ...prometheus.Option) (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] prometheus exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
