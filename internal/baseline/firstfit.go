package baseline

import (
	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/engine"
	"github.com/fogsched/epoceis/internal/kernel"
)

// FirstFit assigns each task, in topological order, to the first node
// (in NodeSet iteration order) that keeps it deadline-feasible given
// the node's current availability; if none qualifies it falls back to
// the first node regardless, so every task still gets placed.
func FirstFit(wf *domain.Workflow, nodes domain.NodeSet) (engine.Result, error) {
	order, err := wf.TopoOrder()
	if err != nil {
		return engine.Result{}, err
	}

	assignment := make(map[int]int, len(order))
	startTime := make(map[int]float64, len(order))
	available := make(map[int]float64, nodes.Len())
	finish := make(map[int]float64, len(order))
	ids := nodes.IDs()

	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		ready := wf.ReadyTime(taskID, finish)

		chosen := ids[0]
		chosenStart := clampNonNegative(ready)
		found := false
		for _, nodeID := range ids {
			node, _ := nodes.Get(nodeID)
			pairing := kernel.Pair(task, node)
			start := ready
			if available[nodeID] > start {
				start = available[nodeID]
			}
			if start+pairing.Duration <= task.Deadline {
				chosen = nodeID
				chosenStart = start
				found = true
				break
			}
		}
		if !found {
			node, _ := nodes.Get(chosen)
			pairing := kernel.Pair(task, node)
			chosenStart = ready
			finish[taskID] = chosenStart + pairing.Duration
		} else {
			node, _ := nodes.Get(chosen)
			pairing := kernel.Pair(task, node)
			finish[taskID] = chosenStart + pairing.Duration
		}

		assignment[taskID] = chosen
		startTime[taskID] = chosenStart
		available[chosen] = finish[taskID]
	}

	return summarize(assignment, startTime, wf, nodes, order), nil
}
