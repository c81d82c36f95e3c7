// Package repair implements the four-stage deadline-aware repair state
// machine run after every operator application and as the final step of
// initialization, grounded on the teacher's constraints.go pattern of a
// small ordered sequence of fixup passes applied to a solution's
// variable vector until it satisfies hard constraints (or escalation is
// exhausted).
package repair

import (
	"context"
	"math"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/config"
	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/kernel"
	"github.com/fogsched/epoceis/internal/schedule"
	"github.com/fogsched/epoceis/internal/telemetry"
)

// Run executes Completeness, the escalating Deadline Repair Pass, and
// the (no-op) Optimization pass in order, early-exiting once no
// violations remain. It spans the whole pass under ctx (a no-op span
// when telem is nil) and counts each tier escalation against telem.
func Run(ctx context.Context, c *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int, params config.Parameters, source *rand.Rand, telem *telemetry.Telemetry) {
	_, span := telem.StartSpan(ctx, "repair")
	defer span.End()

	completeness(c, wf, nodes, order)
	deadlineRepairPass(c, wf, nodes, order, source, telem)
	optimizationPass(c)
}

// completeness assigns every task missing a valid assignment or start
// time, using the same node-selection score Ambush uses for critical
// tasks and a smart start time that respects parent ready-time without
// overshooting 60% of the task's own deadline.
func completeness(c *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int) {
	finish := make(map[int]float64, len(order))
	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		ready := wf.ReadyTime(taskID, finish)

		nodeID, haveNode := c.Assignment[taskID]
		if !haveNode {
			nodeID = mostSuitableNode(task, nodes)
			c.Assignment[taskID] = nodeID
		} else if _, ok := nodes.Get(nodeID); !ok {
			nodeID = mostSuitableNode(task, nodes)
			c.Assignment[taskID] = nodeID
		}

		start, haveStart := c.StartTime[taskID]
		if !haveStart || start < 0 || math.IsNaN(start) {
			start = smartStart(ready, task.Deadline)
			c.StartTime[taskID] = start
		}

		node, _ := nodes.Get(nodeID)
		pairing := kernel.Pair(task, node)
		begin := math.Max(start, ready)
		finish[taskID] = begin + pairing.Duration
	}
}

func smartStart(readyTime, deadline float64) float64 {
	v := math.Min(readyTime, 0.6*deadline)
	if v < 0 {
		v = 0
	}
	return v
}

// mostSuitableNode is the Ambush/Completeness shared node-selection
// score: cost plus a deadline-pressure term, evaluated statically
// (ignoring running node availability) since Completeness has no
// meaningful availability state to consult yet for an unassigned task.
func mostSuitableNode(task domain.Task, nodes domain.NodeSet) int {
	best := -1
	bestScore := kernel.Unschedulable + 1
	for _, nodeID := range nodes.IDs() {
		node, _ := nodes.Get(nodeID)
		pairing := kernel.Pair(task, node)
		score := kernel.CriticalScore(pairing.Cost, pairing.Duration, task.Deadline)
		if score < bestScore {
			bestScore = score
			best = nodeID
		}
	}
	return best
}

// fastestNode returns the node with the lowest execTime for task,
// ignoring cost entirely (used by the Aggressive and Emergency tiers).
func fastestNode(task domain.Task, nodes domain.NodeSet) int {
	best := -1
	bestExec := math.Inf(1)
	for _, nodeID := range nodes.IDs() {
		node, _ := nodes.Get(nodeID)
		execTime := kernel.ExecTime(task.Length, node.MIPS)
		if execTime < bestExec {
			bestExec = execTime
			best = nodeID
		}
	}
	return best
}

// deadlineRepairPass runs the escalating tier sequence (TimeShift,
// NodeMigration, Aggressive) up to three times, each a full forward
// sweep in topological order, stopping early once a sweep produces no
// violations. A final Emergency pass runs whenever violations remain
// after Aggressive; it counts one more escalation and reassigns only
// tasks whose node is not in the NodeSet, which Completeness has
// already ruled out for a non-empty NodeSet.
func deadlineRepairPass(c *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int, source *rand.Rand, telem *telemetry.Telemetry) {
	violating := make(map[int]bool)

	for tier := 0; tier < 3; tier++ {
		if tier > 0 {
			telem.IncRepairEscalation()
		}
		available := make(map[int]float64, nodes.Len())
		finish := make(map[int]float64, len(order))
		anyViolation := false

		for _, taskID := range order {
			taskRef, _ := wf.Task(taskID)
			task := *taskRef
			ready := wf.ReadyTime(taskID, finish)
			nodeID := c.Assignment[taskID]

			isViolating := tier == 0 || violating[taskID]

			switch {
			case tier == 0:
				node, _ := nodes.Get(nodeID)
				pairing := kernel.Pair(task, node)
				effectiveStart := math.Max(c.StartTime[taskID], ready)
				finishCand := effectiveStart + pairing.Duration
				if finishCand <= task.Deadline {
					c.StartTime[taskID] = effectiveStart
				} else {
					violating[taskID] = true
					anyViolation = true
				}
				c.StartTime[taskID] = effectiveStart
				finish[taskID] = finishCand
				available[nodeID] = finishCand

			case tier == 1 && isViolating:
				migrated := false
				bestNode, bestFinish, bestStart := -1, math.Inf(1), 0.0
				for _, candID := range nodes.IDs() {
					candNode, _ := nodes.Get(candID)
					pairing := kernel.Pair(task, candNode)
					start := math.Max(ready, available[candID])
					f := start + pairing.Duration
					if f <= task.Deadline && f < bestFinish {
						bestNode, bestFinish, bestStart = candID, f, start
						migrated = true
					}
				}
				if migrated {
					c.Assignment[taskID] = bestNode
					c.StartTime[taskID] = bestStart
					finish[taskID] = bestFinish
					available[bestNode] = bestFinish
					violating[taskID] = false
				} else {
					fastID := fastestNode(task, nodes)
					fastNode, _ := nodes.Get(fastID)
					pairing := kernel.Pair(task, fastNode)
					start := math.Max(ready, available[fastID])
					f := start + pairing.Duration
					c.Assignment[taskID] = fastID
					c.StartTime[taskID] = start
					finish[taskID] = f
					available[fastID] = f
					anyViolation = true
				}

			case tier == 2 && isViolating:
				fastID := fastestNode(task, nodes)
				fastNode, _ := nodes.Get(fastID)
				pairing := kernel.Pair(task, fastNode)
				start := ready
				f := start + pairing.Duration
				c.Assignment[taskID] = fastID
				c.StartTime[taskID] = start
				finish[taskID] = f
				available[fastID] = math.Max(available[fastID], f)
				if f > task.Deadline {
					anyViolation = true
				} else {
					violating[taskID] = false
				}

			default:
				node, _ := nodes.Get(nodeID)
				pairing := kernel.Pair(task, node)
				start := math.Max(c.StartTime[taskID], ready)
				f := start + pairing.Duration
				finish[taskID] = f
				available[nodeID] = math.Max(available[nodeID], f)
			}
		}

		if !anyViolation {
			return
		}
	}

	// Emergency fallback: reached when deadline violations persist
	// after Aggressive. Its random reassignment applies only to tasks
	// on a node outside the NodeSet, which cannot occur here with a
	// non-empty NodeSet since Completeness assigned every task a live
	// node.
	if nodes.Len() == 0 {
		return
	}
	telem.IncRepairEscalation()
	finish := make(map[int]float64, len(order))
	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		nodeID := c.Assignment[taskID]
		if _, ok := nodes.Get(nodeID); ok {
			node, _ := nodes.Get(nodeID)
			ready := wf.ReadyTime(taskID, finish)
			pairing := kernel.Pair(task, node)
			finish[taskID] = math.Max(c.StartTime[taskID], ready) + pairing.Duration
			continue
		}
		ids := nodes.IDs()
		randNodeID := ids[source.Intn(len(ids))]
		ready := wf.ReadyTime(taskID, finish)
		node, _ := nodes.Get(randNodeID)
		pairing := kernel.Pair(task, node)
		c.Assignment[taskID] = randNodeID
		c.StartTime[taskID] = ready
		finish[taskID] = ready + pairing.Duration
	}
}

// optimizationPass is a deliberate no-op: the distilled source's final
// repair stage is reserved for cost-reducing adjustments that never
// introduce new violations, and this port declares it empty by
// contract rather than inventing behavior the original never
// specified. Any future cost-reduction logic added here must preserve
// the "no new violations" invariant the other two stages establish.
func optimizationPass(c *schedule.Candidate) {}
