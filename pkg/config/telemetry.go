package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mpapenbr/yutrace/log"
	"github.com/mpapenbr/yutrace/version"
)

// Telemetry holds the installed otel providers.
type Telemetry struct {
	meter  *sdkmetric.MeterProvider
	tracer *sdktrace.TracerProvider
}

// SetupTelemetry installs global meter and tracer providers. Data is sent via
// OTLP gRPC to TelemetryEndpoint, or written to stderr if no endpoint is set.
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", "yutrace"),
			attribute.String("service.version", version.Version),
		))
	if err != nil {
		return nil, err
	}
	metricExporter, traceExporter, err := createExporters(ctx)
	if err != nil {
		return nil, err
	}
	ret := &Telemetry{
		meter: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
				sdkmetric.WithInterval(10*time.Second)))),
		tracer: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(traceExporter)),
	}
	otel.SetMeterProvider(ret.meter)
	otel.SetTracerProvider(ret.tracer)
	return ret, nil
}

func createExporters(ctx context.Context) (
	sdkmetric.Exporter, sdktrace.SpanExporter, error,
) {
	if TelemetryEndpoint == "" {
		me, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
		if err != nil {
			return nil, nil, err
		}
		te, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
		if err != nil {
			return nil, nil, err
		}
		return me, te, nil
	}
	me, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(TelemetryEndpoint),
		otlpmetricgrpc.WithInsecure())
	if err != nil {
		return nil, nil, err
	}
	te, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(TelemetryEndpoint),
		otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, nil, err
	}
	return me, te, nil
}

// Shutdown flushes pending data and stops the providers.
func (t *Telemetry) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := errors.Join(t.meter.Shutdown(ctx), t.tracer.Shutdown(ctx)); err != nil {
		log.Warn("error shutting down telemetry", log.ErrorField(err))
	}
}
