package telemetry_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fogsched/epoceis/internal/telemetry"
)

func TestInitRegistersCollectorsWithoutPanicking(t *testing.T) {
	registry := prometheus.NewRegistry()
	tel := telemetry.Init("epoceis-test", registry)
	if tel == nil {
		t.Fatal("Init returned nil")
	}
	if tel.Tracer == nil || tel.Meter == nil {
		t.Error("Init should populate both Tracer and Meter")
	}
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 4 {
		t.Errorf("registry has %d metric families, want 4 (fitness gauge, repair/fault counters, duration histogram)", len(families))
	}
}

func TestInitWithNilRegistrySkipsRegistration(t *testing.T) {
	tel := telemetry.Init("epoceis-test-noreg", nil)
	if tel == nil {
		t.Fatal("Init returned nil with a nil registry")
	}
}

func TestFlushShutsDownProvidersCleanly(t *testing.T) {
	tel := telemetry.Init("epoceis-test-flush", prometheus.NewRegistry())
	if err := tel.Flush(context.Background()); err != nil {
		t.Errorf("Flush: %v", err)
	}
}
