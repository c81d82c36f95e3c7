package engine_test

import (
	"testing"

	"github.com/fogsched/epoceis/internal/config"
	"github.com/fogsched/epoceis/internal/engine"
	"github.com/fogsched/epoceis/internal/scenario"
)

func smallParams(seed uint64, sequential bool) config.Parameters {
	p := config.Defaults()
	p.PopulationSize = 12
	p.MaxGenerations = 8
	p.EliteSize = 2
	p.OuterPop = 4
	p.OuterGens = 4
	p.Seed = seed
	p.Sequential = sequential
	return p
}

func TestRunAssignsEveryTaskOnS1(t *testing.T) {
	sc := scenario.S1()
	res, err := engine.Run(sc.Workflow, sc.Nodes, smallParams(1, true), nil, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Assignment) != sc.Workflow.Len() {
		t.Errorf("Assignment has %d entries, want %d", len(res.Assignment), sc.Workflow.Len())
	}
	for _, id := range sc.Workflow.TaskIDs() {
		nodeID, ok := res.Assignment[id]
		if !ok {
			t.Errorf("task %d has no assignment", id)
			continue
		}
		if _, ok := sc.Nodes.Get(nodeID); !ok {
			t.Errorf("task %d assigned to non-existent node %d", id, nodeID)
		}
	}
}

func TestRunIsDeterministicForSameSeedSequential(t *testing.T) {
	sc := scenario.S2()
	a, err := engine.Run(sc.Workflow, sc.Nodes, smallParams(7, true), nil, nil, nil)
	if err != nil {
		t.Fatalf("Run (a): %v", err)
	}
	b, err := engine.Run(sc.Workflow, sc.Nodes, smallParams(7, true), nil, nil, nil)
	if err != nil {
		t.Fatalf("Run (b): %v", err)
	}
	if a.TotalCost != b.TotalCost || a.Makespan != b.Makespan {
		t.Errorf("two runs with the same seed diverged: a={%v,%v} b={%v,%v}",
			a.TotalCost, a.Makespan, b.TotalCost, b.Makespan)
	}
	for id, nodeID := range a.Assignment {
		if b.Assignment[id] != nodeID {
			t.Errorf("assignment for task %d diverged: a=%d b=%d", id, nodeID, b.Assignment[id])
		}
	}
}

func TestRunOnInfeasibleScenarioReportsMissedDeadlineNotError(t *testing.T) {
	sc := scenario.S4()
	res, err := engine.Run(sc.Workflow, sc.Nodes, smallParams(3, true), nil, nil, nil)
	if err != nil {
		t.Fatalf("Run on an unschedulable-deadline scenario must not return an error, got: %v", err)
	}
	if res.DeadlineHitRate >= 1.0 {
		t.Errorf("S4's single task cannot meet its deadline, want DeadlineHitRate < 1.0, got %v", res.DeadlineHitRate)
	}
	if res.MissedDeadlines == 0 {
		t.Error("S4 should report at least one missed deadline")
	}
}

func TestRunOnEmptyNodeSetReturnsFatalError(t *testing.T) {
	sc := scenario.S1()
	empty := sc.Nodes.Subset(nil)
	_, err := engine.Run(sc.Workflow, empty, smallParams(1, true), nil, nil, nil)
	if err == nil {
		t.Fatal("Run with an empty node set must return a fatal error")
	}
}

func TestRunParallelAndSequentialAgreeOnBestCostForSameSeed(t *testing.T) {
	sc := scenario.S2()
	seq, err := engine.Run(sc.Workflow, sc.Nodes, smallParams(11, true), nil, nil, nil)
	if err != nil {
		t.Fatalf("Run (sequential): %v", err)
	}
	par, err := engine.Run(sc.Workflow, sc.Nodes, smallParams(11, false), nil, nil, nil)
	if err != nil {
		t.Fatalf("Run (parallel): %v", err)
	}
	// The parallel and sequential paths explore offspring in different
	// orders (per-worker streams vs. a single stream), so they are not
	// required to land on the identical candidate — only on comparably
	// good ones, since both start from the same per-stream seeds.
	if par.TotalCost > seq.TotalCost*2+1e-6 {
		t.Errorf("parallel run cost %v is far worse than sequential run cost %v for the same seed", par.TotalCost, seq.TotalCost)
	}
}

func TestRunOnDiamondScenarioRespectsDependencyOrder(t *testing.T) {
	sc := scenario.S2()
	res, err := engine.Run(sc.Workflow, sc.Nodes, smallParams(5, true), nil, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	finish2 := res.StartTime[2] // approximate: task 4 must start no earlier than task 2 or 3 start
	finish3 := res.StartTime[3]
	if res.StartTime[4] < finish2 || res.StartTime[4] < finish3 {
		t.Errorf("task 4 started at %v before its parents' start times %v/%v", res.StartTime[4], finish2, finish3)
	}
}
