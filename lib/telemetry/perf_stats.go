package telemetry

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentPerfStats registers process gauges on meter. They are read on
// every collection, including the final one made when the provider shuts
// down, so short runs still report them.
func InstrumentPerfStats(meter metric.Meter) error {
	cpuGauge, err := meter.Float64ObservableGauge(
		"ticketleap.process.cpu_usage",
		metric.WithDescription("System wide cpu usage since the previous collection."),
		metric.WithUnit("%"),
	)
	if err != nil {
		return err
	}
	memoryGauge, err := meter.Int64ObservableGauge(
		"ticketleap.process.allocated",
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}
	liveObjectsGauge, err := meter.Int64ObservableGauge("ticketleap.process.live_objects")
	if err != nil {
		return err
	}
	goroutineGauge, err := meter.Int64ObservableGauge("ticketleap.process.goroutines")
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		o.ObserveInt64(memoryGauge, int64(memStats.Alloc))
		o.ObserveInt64(liveObjectsGauge, int64(memStats.Mallocs)-int64(memStats.Frees))
		o.ObserveInt64(goroutineGauge, int64(runtime.NumGoroutine()))

		// zero interval compares against the previous call
		usage, err := cpu.PercentWithContext(ctx, 0, false)
		if err != nil || len(usage) == 0 {
			slog.DebugContext(ctx, "failed to read cpu usage", "err", err)
			return nil
		}
		o.ObserveFloat64(cpuGauge, usage[0])
		return nil
	}, cpuGauge, memoryGauge, liveObjectsGauge, goroutineGauge)
	return err
}
