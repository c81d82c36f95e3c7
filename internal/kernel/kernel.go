// Package kernel implements the pure cost/delay functions used to score a
// single (task, node) pairing. These are stateless and allocation-free by
// design, matching the teacher's objectives/cost and objectives/disruption
// packages: small pure functions over PodInfo/NodeInfo that the evaluator
// and operators call repeatedly in hot loops.
package kernel

import (
	"math"

	"github.com/fogsched/epoceis/internal/domain"
)

// PenaltyMultiplier (M) is applied per second of deadline overshoot.
const PenaltyMultiplier = 1000.0

// Unschedulable is the sentinel fitness substituted when kernel inputs are
// degenerate (zero MIPS, negative size, non-finite results), so that
// comparisons across candidates remain total instead of propagating NaN/Inf.
const Unschedulable = 1e12

// ExecTime returns the compute time of a task on a node, in seconds.
func ExecTime(length, mips float64) float64 {
	if mips <= 0 || !finite(length) || length < 0 {
		return Unschedulable
	}
	v := length / mips
	if !finite(v) {
		return Unschedulable
	}
	return v
}

// TransferDelay returns the payload transfer delay plus network latency,
// in seconds.
func TransferDelay(fileSize, bandwidth, latencyMs float64) float64 {
	if bandwidth < 0 || !finite(fileSize) {
		return Unschedulable
	}
	size := math.Max(fileSize, 1)
	bw := math.Max(bandwidth, 1)
	v := size/bw + latencyMs/1000.0
	if !finite(v) || v < 0 {
		return Unschedulable
	}
	return v
}

// Duration returns ExecTime + TransferDelay, folding network latency in.
func Duration(execTime, transferDelay float64) float64 {
	if execTime >= Unschedulable || transferDelay >= Unschedulable {
		return Unschedulable
	}
	v := execTime + transferDelay
	if !finite(v) || v < 0 {
		return Unschedulable
	}
	return v
}

// Cost returns the monetary cost of occupying a node for duration seconds.
func Cost(duration, costPerSec float64) float64 {
	if duration >= Unschedulable || costPerSec < 0 {
		return Unschedulable
	}
	v := duration * costPerSec
	if !finite(v) {
		return Unschedulable
	}
	return v
}

// Energy returns the energy consumed executing a task on a node.
func Energy(execTime, energyPerSec float64) float64 {
	if execTime >= Unschedulable || energyPerSec < 0 {
		return Unschedulable
	}
	v := execTime * energyPerSec
	if !finite(v) {
		return Unschedulable
	}
	return v
}

// Penalty returns the deadline-overshoot penalty added to cost.
func Penalty(finish, deadline float64) float64 {
	over := finish - deadline
	if over <= 0 {
		return 0
	}
	return over * PenaltyMultiplier
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Pairing is the full set of timing/cost figures for one (task, node)
// placement, computed once and reused by initializer/operators/repair so
// they never recompute execTime/duration independently and risk drifting
// from the evaluator's own arithmetic.
type Pairing struct {
	ExecTime      float64
	TransferDelay float64
	Duration      float64
	Cost          float64
	Energy        float64
}

// Pair computes every kernel figure for placing task on node.
func Pair(task domain.Task, node domain.Node) Pairing {
	execTime := ExecTime(task.Length, node.MIPS)
	transferDelay := TransferDelay(task.FileSize, node.Bandwidth, node.LatencyMs)
	duration := Duration(execTime, transferDelay)
	return Pairing{
		ExecTime:      execTime,
		TransferDelay: transferDelay,
		Duration:      duration,
		Cost:          Cost(duration, node.CostPerSec),
		Energy:        Energy(execTime, node.EnergyPerSec),
	}
}

// GreedyScore is the node-selection score used by the greedy initializer,
// the static node ranking of the opposition/hybrid initializers and
// Sprint's node comparison: cost plus a
// fractional penalty for projected deadline overshoot, so a node that is
// merely a little late is still preferred over one that is very late.
func GreedyScore(cost, finish, deadline float64) float64 {
	if cost >= Unschedulable {
		return Unschedulable
	}
	return cost + 0.1*PenaltyMultiplier*math.Max(0, finish-deadline)
}

// CriticalScore is the node-selection score used by Ambush and the
// Critical-Path elite strategy for tasks deemed critical, and by the
// Completeness repair pass for unassigned tasks: cost plus a
// deadline-pressure term that dominates once totalTime approaches the
// deadline.
func CriticalScore(cost, totalTime, deadline float64) float64 {
	if cost >= Unschedulable {
		return Unschedulable
	}
	if deadline <= 0 {
		return Unschedulable
	}
	return cost + 100*totalTime/deadline
}
