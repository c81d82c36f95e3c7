// Package baseline provides the simple comparison algorithms the
// distilled spec marks as an external collaborator's concern (GA, PSO,
// Min-Min, First-Fit): minimal, clearly-scoped implementations so the
// CLI's --compare flag has something real to report against. Min-Min
// and First-Fit are grounded on the teacher's own greedy
// best-fit-decreasing pattern; GA and PSO reuse this repo's own
// kernel/evaluator machinery at a single-objective weighted-sum
// reduction, the way the teacher's own NSGA2 machinery collapses to a
// scalar score wherever one objective is asked for.
package baseline

import (
	"math"

	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/engine"
	"github.com/fogsched/epoceis/internal/kernel"
)

// summarize computes an engine.Result from a completed assignment and
// start-time map, recomputing finish times and the same derived
// metrics internal/engine.Run reports, so every algorithm's output is
// directly comparable in the CSV report.
func summarize(assignment map[int]int, startTime map[int]float64, wf *domain.Workflow, nodes domain.NodeSet, order []int) engine.Result {
	finish := make(map[int]float64, len(order))
	var cost, energy, makespan float64
	missed := 0
	var latencySum, fogDuration, cloudDuration float64

	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		nodeID := assignment[taskID]
		node, _ := nodes.Get(nodeID)

		ready := wf.ReadyTime(taskID, finish)
		start := startTime[taskID]
		if start < ready {
			start = ready
		}

		pairing := kernel.Pair(task, node)
		f := start + pairing.Duration
		finish[taskID] = f
		cost += pairing.Cost
		energy += pairing.Energy
		if f > task.Deadline {
			missed++
			cost += kernel.Penalty(f, task.Deadline)
		}
		if f > makespan {
			makespan = f
		}
		latencySum += node.LatencyMs

		duration := f - start
		if duration < 0 {
			duration = 0
		}
		if node.IsCloud {
			cloudDuration += duration
		} else {
			fogDuration += duration
		}
	}

	res := engine.Result{
		Assignment:      assignment,
		StartTime:       startTime,
		TotalCost:       cost,
		Makespan:        makespan,
		TotalEnergy:     energy,
		MissedDeadlines: missed,
	}
	if len(order) > 0 {
		res.DeadlineHitRate = float64(len(order)-missed) / float64(len(order))
		res.AvgLatency = latencySum / float64(len(order))
	}
	if fogCount := len(nodes.FogIDs()); makespan > 0 && fogCount > 0 {
		res.FogUtilization = fogDuration / (makespan * float64(fogCount))
	}
	if cloudCount := len(nodes.CloudIDs()); makespan > 0 && cloudCount > 0 {
		res.CloudUtilization = cloudDuration / (makespan * float64(cloudCount))
	}
	return res
}

func clampNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
