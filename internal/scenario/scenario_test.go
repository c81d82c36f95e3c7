package scenario_test

import (
	"testing"

	"github.com/fogsched/epoceis/internal/scenario"
)

func TestAllReturnsFiveNamedScenarios(t *testing.T) {
	all := scenario.All()
	if len(all) != 5 {
		t.Fatalf("All() returned %d scenarios, want 5", len(all))
	}
	wantNames := []string{"S1", "S2", "S3", "S4", "S5"}
	for i, name := range wantNames {
		if all[i].Name != name {
			t.Errorf("All()[%d].Name = %q, want %q", i, all[i].Name, name)
		}
	}
}

func TestS1IsAThreeTaskChain(t *testing.T) {
	sc := scenario.S1()
	if sc.Workflow.Len() != 3 {
		t.Errorf("S1 task count = %d, want 3", sc.Workflow.Len())
	}
	order, err := sc.Workflow.TopoOrder()
	if err != nil {
		t.Fatalf("S1 TopoOrder: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("S1 topo order length = %d, want 3", len(order))
	}
}

func TestS4IsSingleTaskSingleNode(t *testing.T) {
	sc := scenario.S4()
	if sc.Workflow.Len() != 1 {
		t.Errorf("S4 task count = %d, want 1", sc.Workflow.Len())
	}
	if sc.Nodes.Len() != 1 {
		t.Errorf("S4 node count = %d, want 1", sc.Nodes.Len())
	}
}

func TestS5HasTenFogNodesAndOneCloud(t *testing.T) {
	sc := scenario.S5()
	if len(sc.Nodes.FogIDs()) != 10 {
		t.Errorf("S5 fog node count = %d, want 10", len(sc.Nodes.FogIDs()))
	}
	if len(sc.Nodes.CloudIDs()) != 1 {
		t.Errorf("S5 cloud node count = %d, want 1", len(sc.Nodes.CloudIDs()))
	}
}

func TestRandomProducesAcyclicWorkflow(t *testing.T) {
	sc := scenario.Random(7, 20, 5)
	if sc.Workflow.Len() != 20 {
		t.Errorf("Random task count = %d, want 20", sc.Workflow.Len())
	}
	if _, err := sc.Workflow.TopoOrder(); err != nil {
		t.Errorf("Random workflow must be acyclic by construction, got: %v", err)
	}
	if sc.Nodes.Len() != 5 {
		t.Errorf("Random node count = %d, want 5", sc.Nodes.Len())
	}
}

func TestRandomIsDeterministicForSameSeed(t *testing.T) {
	a := scenario.Random(99, 10, 3)
	b := scenario.Random(99, 10, 3)
	for _, id := range a.Workflow.TaskIDs() {
		ta, _ := a.Workflow.Task(id)
		tb, _ := b.Workflow.Task(id)
		if ta.Length != tb.Length || ta.Deadline != tb.Deadline {
			t.Errorf("Random(99,...) produced different tasks across calls for id %d", id)
		}
	}
}
