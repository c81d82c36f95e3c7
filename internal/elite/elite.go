// Package elite implements the five-strategy local search applied to
// the top EliteSize candidates after each generation, grounded on the
// teacher's NSGA2 elitism loop (nsga2.go's carry-forward-then-refine
// shape) generalized from "keep the best K unmodified" to "keep the
// best K after trying to improve each one locally".
package elite

import (
	"context"
	"math"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/config"
	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/kernel"
	"github.com/fogsched/epoceis/internal/repair"
	"github.com/fogsched/epoceis/internal/schedule"
	"github.com/fogsched/epoceis/internal/telemetry"
)

// EvalFunc scores a candidate in place, setting its Fitness and the
// other evaluator-derived fields, the same contract
// internal/evaluator.Evaluate exposes (passed in rather
// than imported directly to keep this package independent of the
// evaluator's logging/rng plumbing).
type EvalFunc func(c *schedule.Candidate)

// Refine tries all five strategies against elite and returns whichever
// of {original, strategy results} has the lowest fitness. ctx/telem flow
// through to Task Swap's repair.Run calls so elite-refinement escalations
// count against the same epoceis_repair_escalations_total series as the
// main generation loop's.
func Refine(ctx context.Context, elite *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int, critical map[int]bool, params config.Parameters, eval EvalFunc, source *rand.Rand, telem *telemetry.Telemetry) *schedule.Candidate {
	best := elite
	candidates := []*schedule.Candidate{
		taskSwap(ctx, elite, wf, nodes, order, params, eval, source, telem),
		nodeMigration(elite, wf, nodes, order, eval),
		timeOptimization(elite, wf, nodes, order, eval),
		criticalPath(elite, wf, nodes, order, critical, eval),
		hybrid(ctx, elite, wf, nodes, order, params, eval, source, telem),
	}
	for _, c := range candidates {
		if c != nil && c.Fitness < best.Fitness {
			best = c
		}
	}
	return best
}

// taskSwap tries up to 10 random task-pair swaps (both assignment and
// start time), repairing and evaluating each, and keeps the best.
func taskSwap(ctx context.Context, elite *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int, params config.Parameters, eval EvalFunc, source *rand.Rand, telem *telemetry.Telemetry) *schedule.Candidate {
	if len(order) < 2 {
		return nil
	}
	var best *schedule.Candidate
	attempts := 10
	for a := 0; a < attempts; a++ {
		i := order[source.Intn(len(order))]
		j := order[source.Intn(len(order))]
		if i == j {
			continue
		}
		trial := elite.Clone()
		trial.Assignment[i], trial.Assignment[j] = trial.Assignment[j], trial.Assignment[i]
		trial.StartTime[i], trial.StartTime[j] = trial.StartTime[j], trial.StartTime[i]
		repair.Run(ctx, trial, wf, nodes, order, params, source, telem)
		eval(trial)
		if best == nil || trial.Fitness < best.Fitness {
			best = trial
		}
	}
	return best
}

// nodeMigration greedily tries, for each task in order, every
// alternative node with a feasibility-constrained start time,
// accepting a move whenever it strictly improves fitness.
func nodeMigration(elite *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int, eval EvalFunc) *schedule.Candidate {
	working := elite.Clone()
	eval(working)

	finish := make(map[int]float64, len(order))
	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		ready := wf.ReadyTime(taskID, finish)
		currentNode := working.Assignment[taskID]

		bestNode := currentNode
		bestFitness := working.Fitness
		bestStart := working.StartTime[taskID]

		for _, candID := range nodes.IDs() {
			if candID == currentNode {
				continue
			}
			trial := working.Clone()
			node, _ := nodes.Get(candID)
			pairing := kernel.Pair(task, node)
			start := reoptimizedStart(ready, task.Deadline, pairing.Duration)
			trial.Assignment[taskID] = candID
			trial.StartTime[taskID] = start
			eval(trial)
			if trial.Fitness < bestFitness {
				bestFitness = trial.Fitness
				bestNode = candID
				bestStart = start
			}
		}

		working.Assignment[taskID] = bestNode
		working.StartTime[taskID] = bestStart
		working.Fitness = bestFitness
		node, _ := nodes.Get(bestNode)
		pairing := kernel.Pair(task, node)
		finish[taskID] = math.Max(bestStart, ready) + pairing.Duration
	}

	eval(working)
	return working
}

// timeOptimization tries, for each task, a fixed set of start-time
// offsets, keeping the best of those that are both dependency- and
// deadline-feasible and improve fitness.
func timeOptimization(elite *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int, eval EvalFunc) *schedule.Candidate {
	offsets := []float64{-5, -2, -1, -0.5, 0.5, 1, 2, 5}
	working := elite.Clone()
	eval(working)

	finish := make(map[int]float64, len(order))
	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		ready := wf.ReadyTime(taskID, finish)
		node, _ := nodes.Get(working.Assignment[taskID])
		pairing := kernel.Pair(task, node)
		current := working.StartTime[taskID]

		bestStart := current
		bestFitness := working.Fitness
		for _, off := range offsets {
			candidate := current + off
			if candidate < ready {
				continue
			}
			if candidate+pairing.Duration > task.Deadline {
				continue
			}
			trial := working.Clone()
			trial.StartTime[taskID] = candidate
			eval(trial)
			if trial.Fitness < bestFitness {
				bestFitness = trial.Fitness
				bestStart = candidate
			}
		}
		working.StartTime[taskID] = bestStart
		working.Fitness = bestFitness
		finish[taskID] = math.Max(bestStart, ready) + pairing.Duration
	}

	eval(working)
	return working
}

// criticalPath snaps every critical task to its most-suitable node and
// a feasibility-constrained start time, in one pass.
func criticalPath(elite *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int, critical map[int]bool, eval EvalFunc) *schedule.Candidate {
	working := elite.Clone()
	finish := make(map[int]float64, len(order))
	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		ready := wf.ReadyTime(taskID, finish)

		if critical[taskID] {
			bestNode, bestDuration := -1, math.Inf(1)
			bestScore := kernel.Unschedulable + 1
			for _, nodeID := range nodes.IDs() {
				node, _ := nodes.Get(nodeID)
				pairing := kernel.Pair(task, node)
				score := kernel.CriticalScore(pairing.Cost, pairing.Duration, task.Deadline)
				if score < bestScore {
					bestScore, bestNode, bestDuration = score, nodeID, pairing.Duration
				}
			}
			working.Assignment[taskID] = bestNode
			working.StartTime[taskID] = reoptimizedStart(ready, task.Deadline, bestDuration)
		}

		node, _ := nodes.Get(working.Assignment[taskID])
		pairing := kernel.Pair(task, node)
		finish[taskID] = math.Max(working.StartTime[taskID], ready) + pairing.Duration
	}
	eval(working)
	return working
}

// hybrid alternates Task Swap and Time Optimization up to three times,
// accepting each round only on strict improvement.
func hybrid(ctx context.Context, elite *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int, params config.Parameters, eval EvalFunc, source *rand.Rand, telem *telemetry.Telemetry) *schedule.Candidate {
	working := elite.Clone()
	eval(working)

	for iter := 0; iter < 3; iter++ {
		swapped := taskSwap(ctx, working, wf, nodes, order, params, eval, source, telem)
		if swapped != nil && swapped.Fitness < working.Fitness {
			working = swapped
		}
		tuned := timeOptimization(working, wf, nodes, order, eval)
		if tuned.Fitness < working.Fitness {
			working = tuned
		} else {
			break
		}
	}
	return working
}

// reoptimizedStart is the earliest feasible slot for a (task, node)
// pairing: as early as dependencies allow, capped so the task still
// finishes by its deadline where that is achievable at all.
func reoptimizedStart(earliestFromParents, deadline, duration float64) float64 {
	hi := deadline - duration
	v := earliestFromParents
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}
