package baseline_test

import (
	"testing"

	"github.com/fogsched/epoceis/internal/baseline"
	"github.com/fogsched/epoceis/internal/scenario"
)

func TestFirstFitAssignsEveryTask(t *testing.T) {
	sc := scenario.S2()
	res, err := baseline.FirstFit(sc.Workflow, sc.Nodes)
	if err != nil {
		t.Fatalf("FirstFit: %v", err)
	}
	if len(res.Assignment) != sc.Workflow.Len() {
		t.Errorf("FirstFit assigned %d tasks, want %d", len(res.Assignment), sc.Workflow.Len())
	}
	if res.Makespan <= 0 {
		t.Errorf("FirstFit makespan = %v, want > 0", res.Makespan)
	}
}

func TestMinMinAssignsEveryTaskInDependencyOrder(t *testing.T) {
	sc := scenario.S2()
	res, err := baseline.MinMin(sc.Workflow, sc.Nodes)
	if err != nil {
		t.Fatalf("MinMin: %v", err)
	}
	if len(res.Assignment) != sc.Workflow.Len() {
		t.Errorf("MinMin assigned %d tasks, want %d", len(res.Assignment), sc.Workflow.Len())
	}
	// Task 4 depends on 2 and 3; it must start no earlier than either starts.
	if res.StartTime[4] < res.StartTime[2] || res.StartTime[4] < res.StartTime[3] {
		t.Errorf("MinMin violated dependency ordering: start[4]=%v start[2]=%v start[3]=%v",
			res.StartTime[4], res.StartTime[2], res.StartTime[3])
	}
}

func TestGAReturnsAFeasibleSchedule(t *testing.T) {
	sc := scenario.S1()
	res, err := baseline.GA(sc.Workflow, sc.Nodes, 20, 10, 1)
	if err != nil {
		t.Fatalf("GA: %v", err)
	}
	if len(res.Assignment) != sc.Workflow.Len() {
		t.Errorf("GA assigned %d tasks, want %d", len(res.Assignment), sc.Workflow.Len())
	}
}

func TestPSOReturnsAFeasibleSchedule(t *testing.T) {
	sc := scenario.S1()
	res, err := baseline.PSO(sc.Workflow, sc.Nodes, 10, 10, 1)
	if err != nil {
		t.Fatalf("PSO: %v", err)
	}
	if len(res.Assignment) != sc.Workflow.Len() {
		t.Errorf("PSO assigned %d tasks, want %d", len(res.Assignment), sc.Workflow.Len())
	}
}

func TestMinMinNeverExceedsFirstFitCostOnEqualNodesScenario(t *testing.T) {
	// S2's two nodes are identical in speed/cost, so Min-Min's
	// globally-greedy choice should do at least as well as First-Fit's
	// locally-greedy choice on total cost.
	sc := scenario.S2()
	ff, err := baseline.FirstFit(sc.Workflow, sc.Nodes)
	if err != nil {
		t.Fatalf("FirstFit: %v", err)
	}
	mm, err := baseline.MinMin(sc.Workflow, sc.Nodes)
	if err != nil {
		t.Fatalf("MinMin: %v", err)
	}
	if mm.TotalCost > ff.TotalCost+1e-6 {
		t.Errorf("MinMin cost %v should not exceed FirstFit cost %v on an equal-node scenario", mm.TotalCost, ff.TotalCost)
	}
}
