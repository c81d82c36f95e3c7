package outer_test

import (
	"testing"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/config"
	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/outer"
)

func nodesFixture(t *testing.T) domain.NodeSet {
	t.Helper()
	nodes, err := domain.NewNodeSet([]domain.Node{
		{ID: 0, LatencyMs: 10, CostPerSec: 0.01},
		{ID: 1, LatencyMs: 40, CostPerSec: 0.05},
		{ID: 2, LatencyMs: 20, CostPerSec: 0.02},
		{ID: 3, IsCloud: true, LatencyMs: 80, CostPerSec: 0.1},
	})
	if err != nil {
		t.Fatalf("NewNodeSet: %v", err)
	}
	return nodes
}

func TestRunAlwaysIncludesAllCloudNodes(t *testing.T) {
	nodes := nodesFixture(t)
	params := config.Defaults()
	params.OuterPop = 10
	params.OuterGens = 5
	source := rand.New(rand.NewSource(1))

	active := outer.Run(nodes, params, source)

	found := false
	for _, id := range active {
		if id == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("Run result %v should always include cloud node 3", active)
	}
}

func TestRunActivatesAtLeastOneFogNode(t *testing.T) {
	nodes := nodesFixture(t)
	params := config.Defaults()
	params.OuterPop = 10
	params.OuterGens = 5
	source := rand.New(rand.NewSource(2))

	active := outer.Run(nodes, params, source)

	fogCount := 0
	for _, id := range active {
		if id != 3 {
			fogCount++
		}
	}
	if fogCount == 0 {
		t.Error("Run should always activate at least one fog node (the all-zero-bits invariant)")
	}
}

func TestRunWithNoFogNodesReturnsOnlyCloud(t *testing.T) {
	nodes, err := domain.NewNodeSet([]domain.Node{{ID: 0, IsCloud: true}})
	if err != nil {
		t.Fatalf("NewNodeSet: %v", err)
	}
	params := config.Defaults()
	source := rand.New(rand.NewSource(3))

	active := outer.Run(nodes, params, source)
	if len(active) != 1 || active[0] != 0 {
		t.Errorf("Run with no fog nodes = %v, want [0]", active)
	}
}

func TestRunProducesValidNodeIDs(t *testing.T) {
	nodes := nodesFixture(t)
	params := config.Defaults()
	params.OuterPop = 8
	params.OuterGens = 3
	source := rand.New(rand.NewSource(4))

	active := outer.Run(nodes, params, source)
	seen := make(map[int]bool)
	for _, id := range active {
		if _, ok := nodes.Get(id); !ok {
			t.Errorf("Run returned non-existent node id %d", id)
		}
		if seen[id] {
			t.Errorf("Run returned duplicate node id %d", id)
		}
		seen[id] = true
	}
}
