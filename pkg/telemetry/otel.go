package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	serviceName = "go-metrics-board"
	meterName   = "github.com/goliatone/go-metrics-board"

	eventsCounterName = "dashboard_events_total"
)

// OTel counts dashboard events as an OpenTelemetry counter, one series per
// event name.
type OTel struct {
	events metric.Int64Counter
}

// NewOTel builds the counter on meter.
func NewOTel(meter metric.Meter) (*OTel, error) {
	events, err := meter.Int64Counter(
		eventsCounterName,
		metric.WithDescription("Dashboard poll and render events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}
	return &OTel{events: events}, nil
}

// Record increments the counter for event. Boolean payload fields become
// attributes; everything else is left to the logs.
func (o *OTel) Record(ctx context.Context, event string, payload map[string]any) {
	attrs := []attribute.KeyValue{attribute.String("event", event)}
	for _, key := range []string{"applied", "changed", "ok"} {
		switch v := payload[key].(type) {
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		case int:
			attrs = append(attrs, attribute.Bool(key, v > 0))
		}
	}
	o.events.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Provider owns the OTLP meter provider.
type Provider struct {
	provider *sdkmetric.MeterProvider
}

// Setup exports metrics over OTLP/gRPC to endpoint and installs the provider globally.
func Setup(ctx context.Context, endpoint, version string) (*Provider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("telemetry: OTLP endpoint not configured")
	}
	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)
	return &Provider{provider: provider}, nil
}

// Meter returns the dashboard meter.
func (p *Provider) Meter() metric.Meter {
	return p.provider.Meter(meterName)
}

// Close flushes pending metrics.
func (p *Provider) Close(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}
