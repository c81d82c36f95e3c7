package baseline

import (
	"math"

	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/engine"
	"github.com/fogsched/epoceis/internal/kernel"
)

// MinMin repeatedly scans every not-yet-scheduled task whose parents
// are already placed, computes its minimum completion time over all
// nodes, and commits the single (task, node) pair with the smallest
// such completion time across the whole ready set — the classic
// Min-Min heuristic, grounded on the teacher's own greedy
// best-fit-decreasing construction in warmstart/gsch.go generalized
// from "best node for one task" to "best (task, node) pair overall".
func MinMin(wf *domain.Workflow, nodes domain.NodeSet) (engine.Result, error) {
	order, err := wf.TopoOrder()
	if err != nil {
		return engine.Result{}, err
	}

	assignment := make(map[int]int, len(order))
	startTime := make(map[int]float64, len(order))
	available := make(map[int]float64, nodes.Len())
	finish := make(map[int]float64, len(order))
	done := make(map[int]bool, len(order))
	ids := nodes.IDs()

	for len(done) < len(order) {
		bestTask, bestNode := -1, -1
		bestFinish := math.Inf(1)
		bestStart := 0.0

		for _, taskID := range order {
			if done[taskID] {
				continue
			}
			if !parentsReady(wf, taskID, done) {
				continue
			}
			taskRef, _ := wf.Task(taskID)
			task := *taskRef
			ready := wf.ReadyTime(taskID, finish)

			for _, nodeID := range ids {
				node, _ := nodes.Get(nodeID)
				pairing := kernel.Pair(task, node)
				start := ready
				if available[nodeID] > start {
					start = available[nodeID]
				}
				f := start + pairing.Duration
				if f < bestFinish {
					bestFinish = f
					bestTask = taskID
					bestNode = nodeID
					bestStart = start
				}
			}
		}

		if bestTask == -1 {
			break // should not happen for a valid DAG with a non-empty ready set
		}

		assignment[bestTask] = bestNode
		startTime[bestTask] = bestStart
		finish[bestTask] = bestFinish
		available[bestNode] = bestFinish
		done[bestTask] = true
	}

	return summarize(assignment, startTime, wf, nodes, order), nil
}

func parentsReady(wf *domain.Workflow, taskID int, done map[int]bool) bool {
	for _, p := range wf.Parents(taskID) {
		if !done[p] {
			return false
		}
	}
	return true
}
