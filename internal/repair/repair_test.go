package repair_test

import (
	"context"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/config"
	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/repair"
	"github.com/fogsched/epoceis/internal/schedule"
)

func fixture(t *testing.T) (*domain.Workflow, domain.NodeSet, []int) {
	t.Helper()
	tasks := []domain.Task{
		{ID: 0, Length: 1000, Deadline: 50},
		{ID: 1, Length: 1000, Deadline: 50, Parents: []int{0}},
	}
	wf, err := domain.NewWorkflow("wf", tasks)
	if err != nil {
		t.Fatalf("NewWorkflow: %v", err)
	}
	nodes, err := domain.NewNodeSet([]domain.Node{
		{ID: 0, MIPS: 50, Bandwidth: 1000, CostPerSec: 0.5},
		{ID: 1, MIPS: 500, Bandwidth: 1000, CostPerSec: 2.0},
	})
	if err != nil {
		t.Fatalf("NewNodeSet: %v", err)
	}
	order, err := wf.TopoOrder()
	if err != nil {
		t.Fatalf("TopoOrder: %v", err)
	}
	return wf, nodes, order
}

func TestRunFillsMissingAssignmentsAndStartTimes(t *testing.T) {
	wf, nodes, order := fixture(t)
	c := schedule.NewCandidate(len(order))
	// Deliberately leave everything unassigned.
	source := rand.New(rand.NewSource(1))

	repair.Run(context.Background(), c, wf, nodes, order, config.Defaults(), source, nil)

	for _, taskID := range order {
		if _, ok := c.Assignment[taskID]; !ok {
			t.Errorf("task %d still unassigned after repair.Run", taskID)
		}
		if _, ok := c.StartTime[taskID]; !ok {
			t.Errorf("task %d still has no start time after repair.Run", taskID)
		}
	}
}

func TestRunReplacesReferenceToDeadNode(t *testing.T) {
	wf, nodes, order := fixture(t)
	c := schedule.NewCandidate(len(order))
	for _, taskID := range order {
		c.Assignment[taskID] = 999 // does not exist
		c.StartTime[taskID] = 0
	}
	source := rand.New(rand.NewSource(2))

	repair.Run(context.Background(), c, wf, nodes, order, config.Defaults(), source, nil)

	for _, taskID := range order {
		if _, ok := nodes.Get(c.Assignment[taskID]); !ok {
			t.Errorf("task %d still references a non-existent node after repair", taskID)
		}
	}
}

func TestRunMigratesDeadlineViolatingTaskToFasterNode(t *testing.T) {
	// Task assigned to the slow node with an unreachable deadline should
	// end up migrated (tier 1) or forced onto the fastest node (tier 2),
	// either way landing on node 1 (the only node fast enough).
	tasks := []domain.Task{{ID: 0, Length: 100000, Deadline: 5}}
	wf, err := domain.NewWorkflow("tight", tasks)
	if err != nil {
		t.Fatalf("NewWorkflow: %v", err)
	}
	nodes, err := domain.NewNodeSet([]domain.Node{
		{ID: 0, MIPS: 10, Bandwidth: 1000, CostPerSec: 0.1},
		{ID: 1, MIPS: 100000, Bandwidth: 1000, CostPerSec: 5},
	})
	if err != nil {
		t.Fatalf("NewNodeSet: %v", err)
	}
	order, err := wf.TopoOrder()
	if err != nil {
		t.Fatalf("TopoOrder: %v", err)
	}
	c := schedule.NewCandidate(1)
	c.Assignment[0] = 0
	c.StartTime[0] = 0

	source := rand.New(rand.NewSource(3))
	repair.Run(context.Background(), c, wf, nodes, order, config.Defaults(), source, nil)

	if c.Assignment[0] != 1 {
		t.Errorf("expected migration to the fast node 1, got node %d", c.Assignment[0])
	}
}

func TestRunNeverLeavesNegativeStartTime(t *testing.T) {
	wf, nodes, order := fixture(t)
	c := schedule.NewCandidate(len(order))
	for _, taskID := range order {
		c.Assignment[taskID] = 0
		c.StartTime[taskID] = -10
	}
	source := rand.New(rand.NewSource(4))

	repair.Run(context.Background(), c, wf, nodes, order, config.Defaults(), source, nil)

	for _, taskID := range order {
		if c.StartTime[taskID] < 0 {
			t.Errorf("task %d has negative start time %v after repair", taskID, c.StartTime[taskID])
		}
	}
}
