package parse_test

import (
	"strings"
	"testing"

	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/parse"
)

func TestNodeSetParsesRequiredAndOptionalFields(t *testing.T) {
	src := strings.Join([]string{
		"NODE,0,100,1024,50,500,false,0.01",
		"NODE,1,5000,4096,1000,2000,true,0.08,15.0,1.5,2.5,3.5",
	}, "\n")

	ns, err := parse.NodeSet(strings.NewReader(src))
	if err != nil {
		t.Fatalf("NodeSet: %v", err)
	}
	if ns.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ns.Len())
	}
	n0, ok := ns.Get(0)
	if !ok {
		t.Fatal("node 0 missing")
	}
	if n0.IsCloud {
		t.Error("node 0 should not be cloud")
	}
	if n0.LatencyMs != 0 || n0.EnergyPerSec != 0 {
		t.Errorf("node 0 optional fields should default to 0: latency=%v energy=%v", n0.LatencyMs, n0.EnergyPerSec)
	}
	n1, ok := ns.Get(1)
	if !ok {
		t.Fatal("node 1 missing")
	}
	if !n1.IsCloud {
		t.Error("node 1 should be cloud")
	}
	if n1.LatencyMs != 15.0 || n1.EnergyPerSec != 3.5 {
		t.Errorf("node 1 optional fields: latency=%v energy=%v, want 15.0/3.5", n1.LatencyMs, n1.EnergyPerSec)
	}
}

func TestNodeSetRejectsTooFewFields(t *testing.T) {
	_, err := parse.NodeSet(strings.NewReader("NODE,0,100,1024"))
	if err == nil {
		t.Fatal("expected error for a NODE record with too few fields")
	}
}

func TestNodeSetRejectsUnknownRecordKind(t *testing.T) {
	_, err := parse.NodeSet(strings.NewReader("HOST,0,100"))
	if err == nil {
		t.Fatal("expected error for an unknown record kind")
	}
}

func TestWriteNodeSetRoundTrips(t *testing.T) {
	nodes := []domain.Node{
		{ID: 0, MIPS: 100, RAM: 1024, Bandwidth: 50, Storage: 500, IsCloud: false, CostPerSec: 0.01, LatencyMs: 5, X: 1, Y: 2, EnergyPerSec: 0.5},
		{ID: 1, MIPS: 5000, RAM: 4096, Bandwidth: 1000, Storage: 2000, IsCloud: true, CostPerSec: 0.08, LatencyMs: 40, X: 0, Y: 0, EnergyPerSec: 2.1},
	}
	original, err := domain.NewNodeSet(nodes)
	if err != nil {
		t.Fatalf("NewNodeSet: %v", err)
	}

	lines := parse.WriteNodeSet(original)
	reparsed, err := parse.NodeSet(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("NodeSet(WriteNodeSet(...)): %v", err)
	}

	for _, id := range original.IDs() {
		want, _ := original.Get(id)
		got, ok := reparsed.Get(id)
		if !ok {
			t.Fatalf("round-trip missing node %d", id)
		}
		if got != want {
			t.Errorf("round-trip node %d mismatch: got %+v, want %+v", id, got, want)
		}
	}
}
