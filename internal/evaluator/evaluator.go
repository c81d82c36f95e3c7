// Package evaluator computes a Candidate's deterministic fitness: cost
// plus the weighted deadline penalty folded in, mirroring the teacher's
// objectives/cost.Evaluate pattern of a pure scoring pass over a
// solution's variable vector that never itself returns an error —
// degenerate inputs become the Unschedulable sentinel instead of a
// panic or bubbled error, matching this domain's §7 "never raises"
// contract for per-candidate arithmetic.
package evaluator

import (
	"log/slog"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/kernel"
	"github.com/fogsched/epoceis/internal/schedule"
)

// Evaluate scores candidate against wf/nodes, mutating its cached
// Cost/Energy/Makespan/MissedDeadlines/Fitness fields and returning the
// composite fitness. order must be a valid topological order of wf's
// tasks (computed once by the caller before the fatal-error window
// closes); Evaluate itself never fails.
func Evaluate(c *schedule.Candidate, order []int, wf *domain.Workflow, nodes domain.NodeSet, source *rand.Rand, log *slog.Logger) float64 {
	c.FinishTime = make(map[int]float64, len(order))
	available := make(map[int]float64, nodes.Len())

	var cost, energy, makespan float64
	missed := 0

	for _, taskID := range order {
		task, _ := wf.Task(taskID)

		nodeID, haveNode := c.Assignment[taskID]
		start, haveStart := c.StartTime[taskID]
		if !haveNode {
			nodeID = fallbackNode(nodes, source)
			c.Assignment[taskID] = nodeID
			if log != nil {
				log.Warn("evaluator: missing assignment, inserted fallback node", "task", taskID, "node", nodeID)
			}
		}
		if !haveStart {
			start = 0
			c.StartTime[taskID] = 0
		}

		node, ok := nodes.Get(nodeID)
		if !ok {
			nodeID = fallbackNode(nodes, source)
			c.Assignment[taskID] = nodeID
			node, _ = nodes.Get(nodeID)
			if log != nil {
				log.Warn("evaluator: assignment referenced dead node, inserted fallback", "task", taskID, "node", nodeID)
			}
		}

		execTime := kernel.ExecTime(task.Length, node.MIPS)
		transferDelay := kernel.TransferDelay(task.FileSize, node.Bandwidth, node.LatencyMs)
		duration := kernel.Duration(execTime, transferDelay)

		parentFinish := wf.ReadyTime(taskID, c.FinishTime)
		earliest := start
		if available[nodeID] > earliest {
			earliest = available[nodeID]
		}
		if parentFinish > earliest {
			earliest = parentFinish
		}

		finish := earliest + duration
		if duration >= kernel.Unschedulable {
			finish = kernel.Unschedulable
		}

		c.StartTime[taskID] = earliest
		c.FinishTime[taskID] = finish

		cost += kernel.Cost(duration, node.CostPerSec)
		energy += kernel.Energy(execTime, node.EnergyPerSec)

		if finish > task.Deadline {
			missed++
			cost += kernel.Penalty(finish, task.Deadline)
		}

		available[nodeID] = finish
		if finish > makespan {
			makespan = finish
		}
	}

	c.Cost = cost
	c.Energy = energy
	c.Makespan = makespan
	c.MissedDeadlines = missed
	c.Fitness = cost
	c.Evaluated = true
	return cost
}

// fallbackNode picks a random fog node, or any node if the set has none,
// used when a candidate is missing an assignment the evaluator must
// still be able to score.
func fallbackNode(nodes domain.NodeSet, source *rand.Rand) int {
	fog := nodes.FogIDs()
	if len(fog) > 0 {
		return fog[source.Intn(len(fog))]
	}
	ids := nodes.IDs()
	return ids[source.Intn(len(ids))]
}
