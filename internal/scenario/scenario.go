// Package scenario builds the S1-S5 fixtures from the worked
// end-to-end examples, plus a small randomized generator for property
// tests beyond the five fixed cases — grounded on the teacher's
// benchmarks package (zdt2.go, dtlz1.go) pattern of synthetic problem
// generators parameterized by a seed and a size.
package scenario

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/domain"
)

// Scenario is a named (Workflow, NodeSet) pair ready to hand to the
// engine.
type Scenario struct {
	Name     string
	Workflow *domain.Workflow
	Nodes    domain.NodeSet
}

// S1 is the linear-chain, 3-task, 2-node scenario: tasks 1->2->3 all
// length 1000 with a 5-second deadline. Node A (1000 MIPS, 0.1/s) runs
// each task in 1.01s; node B (500 MIPS, 0.05/s) takes 2.01s at a
// marginally lower cost, so at most one task can move to B without the
// chain missing its deadline.
func S1() Scenario {
	tasks := []domain.Task{
		{ID: 1, Length: 1000, FileSize: 10, Deadline: 5.0},
		{ID: 2, Length: 1000, FileSize: 10, Deadline: 5.0, Parents: []int{1}},
		{ID: 3, Length: 1000, FileSize: 10, Deadline: 5.0, Parents: []int{2}},
	}
	wf, err := domain.NewWorkflow("S1", tasks)
	if err != nil {
		panic(fmt.Sprintf("scenario S1: %v", err))
	}
	nodes, err := domain.NewNodeSet([]domain.Node{
		{ID: 1, MIPS: 1000, CostPerSec: 0.1, Bandwidth: 1000, LatencyMs: 0},
		{ID: 2, MIPS: 500, CostPerSec: 0.05, Bandwidth: 1000, LatencyMs: 0},
	})
	if err != nil {
		panic(fmt.Sprintf("scenario S1: %v", err))
	}
	return Scenario{Name: "S1", Workflow: wf, Nodes: nodes}
}

// S2 is the diamond 4-task scenario: 1->{2,3}->4, all tasks length
// 2000 on two equally fast nodes, deadline 10.
func S2() Scenario {
	tasks := []domain.Task{
		{ID: 1, Length: 2000, FileSize: 10, Deadline: 10},
		{ID: 2, Length: 2000, FileSize: 10, Deadline: 10, Parents: []int{1}},
		{ID: 3, Length: 2000, FileSize: 10, Deadline: 10, Parents: []int{1}},
		{ID: 4, Length: 2000, FileSize: 10, Deadline: 10, Parents: []int{2, 3}},
	}
	wf, err := domain.NewWorkflow("S2", tasks)
	if err != nil {
		panic(fmt.Sprintf("scenario S2: %v", err))
	}
	nodes, err := domain.NewNodeSet([]domain.Node{
		{ID: 1, MIPS: 2000, CostPerSec: 0.1, Bandwidth: 1000, LatencyMs: 0},
		{ID: 2, MIPS: 2000, CostPerSec: 0.1, Bandwidth: 1000, LatencyMs: 0},
	})
	if err != nil {
		panic(fmt.Sprintf("scenario S2: %v", err))
	}
	return Scenario{Name: "S2", Workflow: wf, Nodes: nodes}
}

// S3 is the tight-deadline-forces-migration scenario: one task, length
// 10000, deadline 2.0, a slow cheap node and a fast expensive node.
func S3() Scenario {
	tasks := []domain.Task{
		{ID: 1, Length: 10000, FileSize: 10, Deadline: 2.0},
	}
	wf, err := domain.NewWorkflow("S3", tasks)
	if err != nil {
		panic(fmt.Sprintf("scenario S3: %v", err))
	}
	nodes, err := domain.NewNodeSet([]domain.Node{
		{ID: 1, MIPS: 1000, CostPerSec: 0.01, Bandwidth: 1000, LatencyMs: 0},
		{ID: 2, MIPS: 10000, CostPerSec: 1.0, Bandwidth: 1000, LatencyMs: 0},
	})
	if err != nil {
		panic(fmt.Sprintf("scenario S3: %v", err))
	}
	return Scenario{Name: "S3", Workflow: wf, Nodes: nodes}
}

// S4 is the infeasible scenario: one task, length 10000, deadline 0.5,
// with only a slow node available.
func S4() Scenario {
	tasks := []domain.Task{
		{ID: 1, Length: 10000, FileSize: 10, Deadline: 0.5},
	}
	wf, err := domain.NewWorkflow("S4", tasks)
	if err != nil {
		panic(fmt.Sprintf("scenario S4: %v", err))
	}
	nodes, err := domain.NewNodeSet([]domain.Node{
		{ID: 1, MIPS: 1000, CostPerSec: 0.01, Bandwidth: 1000, LatencyMs: 0},
	})
	if err != nil {
		panic(fmt.Sprintf("scenario S4: %v", err))
	}
	return Scenario{Name: "S4", Workflow: wf, Nodes: nodes}
}

// S5 is the outer-placement scenario: a single task plus 10 fog-node
// candidates with pairwise different latencies (5ms, 10ms, ..., 50ms)
// and one always-active cloud node.
func S5() Scenario {
	tasks := []domain.Task{
		{ID: 1, Length: 1000, FileSize: 10, Deadline: 10},
	}
	wf, err := domain.NewWorkflow("S5", tasks)
	if err != nil {
		panic(fmt.Sprintf("scenario S5: %v", err))
	}

	var fogNodes []domain.Node
	for i := 0; i < 10; i++ {
		fogNodes = append(fogNodes, domain.Node{
			ID:         i + 1,
			MIPS:       1000,
			CostPerSec: 0.05,
			Bandwidth:  1000,
			LatencyMs:  float64((i + 1) * 5),
		})
	}
	fogNodes = append(fogNodes, domain.Node{
		ID: 100, MIPS: 2000, CostPerSec: 0.2, Bandwidth: 1000, LatencyMs: 80, IsCloud: true,
	})
	nodes, err := domain.NewNodeSet(fogNodes)
	if err != nil {
		panic(fmt.Sprintf("scenario S5: %v", err))
	}
	return Scenario{Name: "S5", Workflow: wf, Nodes: nodes}
}

// All returns S1 through S5 in order.
func All() []Scenario {
	return []Scenario{S1(), S2(), S3(), S4(), S5()}
}

// Random builds a synthetic scenario with taskCount tasks in a random
// DAG (each task depends on a random subset of earlier tasks, so the
// result is acyclic by construction) and nodeCount nodes with
// randomized but plausible capability ranges.
func Random(seed uint64, taskCount, nodeCount int) Scenario {
	source := rand.New(rand.NewSource(seed))

	tasks := make([]domain.Task, 0, taskCount)
	for i := 1; i <= taskCount; i++ {
		var parents []int
		for p := 1; p < i; p++ {
			if source.Float64() < 0.3 {
				parents = append(parents, p)
			}
		}
		length := 500 + source.Float64()*4500
		tasks = append(tasks, domain.Task{
			ID:       i,
			Length:   length,
			FileSize: 5 + source.Float64()*95,
			PEs:      1,
			Deadline: length/1000 + 3.0 + source.Float64()*10,
			Parents:  parents,
		})
	}
	wf, err := domain.NewWorkflow(fmt.Sprintf("random-%d-%d-%d", seed, taskCount, nodeCount), tasks)
	if err != nil {
		panic(fmt.Sprintf("scenario Random: %v", err))
	}

	nodeList := make([]domain.Node, 0, nodeCount)
	for i := 1; i <= nodeCount; i++ {
		isCloud := source.Float64() < 0.2
		nodeList = append(nodeList, domain.Node{
			ID:           i,
			MIPS:         500 + source.Float64()*4500,
			RAM:          1024,
			Bandwidth:    100 + source.Float64()*900,
			Storage:      1024,
			IsCloud:      isCloud,
			CostPerSec:   0.01 + source.Float64()*0.5,
			LatencyMs:    source.Float64() * 100,
			EnergyPerSec: 0.1 + source.Float64()*2,
		})
	}
	nodes, err := domain.NewNodeSet(nodeList)
	if err != nil {
		panic(fmt.Sprintf("scenario Random: %v", err))
	}

	return Scenario{Name: wf.Name, Workflow: wf, Nodes: nodes}
}
