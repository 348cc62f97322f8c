package edit

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const library_name = "ticketleap.lib.scrapers.ticketleap.edit"

var tracer = otel.Tracer(library_name)

type instruments struct {
	operations metric.Int64Counter
	duration   metric.Float64Histogram
}

var metrics = newInstruments(otel.Meter(library_name))

func newInstruments(meter metric.Meter) instruments {
	operations, err := meter.Int64Counter(
		"ticketleap.edit.operations",
		metric.WithDescription("Edit operations by outcome."),
	)
	if err != nil {
		panic(err)
	}
	duration, err := meter.Float64Histogram(
		"ticketleap.edit.duration",
		metric.WithDescription("Duration of edit operations."),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(err)
	}
	return instruments{operations: operations, duration: duration}
}

func SetTracerProvider(provider trace.TracerProvider) {
	tracer = provider.Tracer(library_name)
}

func SetMeterProvider(provider metric.MeterProvider) {
	metrics = newInstruments(provider.Meter(library_name))
}

func recordOperation(ctx context.Context, op string, outcome Stage, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", string(outcome)),
	)
	metrics.operations.Add(ctx, 1, attrs)
	metrics.duration.Record(ctx, elapsed.Seconds(), attrs)
}
