package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
)

// Shutdown releases telemetry resources.
type Shutdown func(ctx context.Context) error

// SetupTracing configures the OTLP trace exporter when an endpoint is set,
// otherwise installs a provider without an exporter so spans are cheap no-ops.
func SetupTracing(ctx context.Context, serviceName, environment, otlpAddr string) (Shutdown, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			attribute.String("environment", environment),
		),
	)
	if err != nil {
		return nil, err
	}

	var provider *sdktrace.TracerProvider
	if otlpAddr != "" {
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(otlpAddr),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}
		provider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		log.Printf("tracing enabled endpoint=%s", otlpAddr)
	} else {
		provider = sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		log.Println("tracing disabled, spans are not exported")
	}

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return provider.Shutdown, nil
}
