// Package telemetry wires OpenTelemetry tracing/metrics and a
// Prometheus registry the way swarmguard/libs/go/core/otelinit does
// (InitTracer/Flush around a service name) and swarm_workflow_* names
// its counters in the orchestrator — renamed here to the
// epoceis_* prefix for this domain's generation loop and repair
// escalations.
package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Telemetry bundles the tracer/meter the generation loop spans and
// counts against, plus the Prometheus collectors CSV/metrics
// consumers can scrape independently of OTel's own exporters.
type Telemetry struct {
	Tracer oteltrace.Tracer
	Meter  metric.Meter

	GenerationBestFitness prometheus.Gauge
	RepairEscalations     prometheus.Counter
	OperatorFaults        prometheus.Counter
	RunDurationMs         prometheus.Histogram

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// Init builds an in-process TracerProvider/MeterProvider with no
// exporter attached, installs them as the global otel providers
// (replacing any set earlier) and registers the Prometheus collectors
// against registry.
func Init(service string, registry *prometheus.Registry) *Telemetry {
	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider()
	otel.SetMeterProvider(mp)

	t := &Telemetry{
		Tracer:         otel.Tracer(service),
		Meter:          otel.Meter(service),
		tracerProvider: tp,
		meterProvider:  mp,
		GenerationBestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "epoceis_generation_best_fitness",
			Help: "Best candidate fitness (total cost) of the most recently completed scheduling run.",
		}),
		RepairEscalations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epoceis_repair_escalations_total",
			Help: "Count of deadline-repair passes that escalated beyond TimeShift.",
		}),
		OperatorFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epoceis_operator_faults_total",
			Help: "Count of per-candidate operator faults absorbed by the generation loop.",
		}),
		RunDurationMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "epoceis_run_duration_ms",
			Help:    "Wall-clock duration of a single scheduling run, in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		}),
	}

	if registry != nil {
		registry.MustRegister(t.GenerationBestFitness, t.RepairEscalations, t.OperatorFaults, t.RunDurationMs)
	}
	return t
}

// Flush shuts down the tracer/meter providers, matching the
// orchestrator's otelinit.Flush(ctx) teardown call at process exit.
func (t *Telemetry) Flush(ctx context.Context) error {
	if err := t.tracerProvider.Shutdown(ctx); err != nil {
		return err
	}
	return t.meterProvider.Shutdown(ctx)
}

// StartSpan opens a span named name against t's tracer, mirroring
// dag_engine.go's tracer.Start(ctx, name) call around each scheduling
// stage. Callable on a nil *Telemetry (the engine runs untelemetered in
// tests and ad hoc tool invocations): in that case it hands back ctx
// unchanged and a no-op span, the same nil-safe shape this codebase
// already uses for *slog.Logger.
func (t *Telemetry) StartSpan(ctx context.Context, name string) (context.Context, oteltrace.Span) {
	if t == nil || t.Tracer == nil {
		return ctx, oteltrace.SpanFromContext(ctx)
	}
	return t.Tracer.Start(ctx, name)
}

// IncRepairEscalation counts one deadline-repair pass that escalated
// beyond the TimeShift tier. Safe to call on a nil *Telemetry.
func (t *Telemetry) IncRepairEscalation() {
	if t == nil {
		return
	}
	t.RepairEscalations.Inc()
}

// IncOperatorFault counts one per-candidate operator fault absorbed by
// the generation loop. Safe to call on a nil *Telemetry.
func (t *Telemetry) IncOperatorFault() {
	if t == nil {
		return
	}
	t.OperatorFaults.Inc()
}
