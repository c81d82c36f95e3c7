// Package operators implements the four movement operators —
// Random-Jump, Social-Forage (exploration) and Ambush, Sprint
// (exploitation) — as a small tagged-variant dispatch, the same shape
// the design notes ask for and the one the teacher's crossovers.go/
// nsga2.go pair already uses: a closed set of functions sharing one
// signature, selected by the generation loop rather than through an
// interface hierarchy.
package operators

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/config"
	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/kernel"
	"github.com/fogsched/epoceis/internal/schedule"
)

// Context carries everything an operator needs beyond the parent it is
// given: the workflow/node set being scheduled, a frozen snapshot of
// the current elite window (for Social Forage's centroid and Sprint's
// target), and the critical-task set Ambush targets.
type Context struct {
	WF       *domain.Workflow
	Nodes    domain.NodeSet
	Order    []int
	Params   config.Parameters
	Elites   schedule.Population // frozen, best-first
	Critical map[int]bool
}

// Kind tags which operator produced a child, used for logging/metrics.
type Kind int

const (
	RandomJump Kind = iota
	SocialForage
	Ambush
	Sprint
)

func (k Kind) String() string {
	switch k {
	case RandomJump:
		return "random-jump"
	case SocialForage:
		return "social-forage"
	case Ambush:
		return "ambush"
	case Sprint:
		return "sprint"
	default:
		return "unknown"
	}
}

// Apply dispatches to the operator named by kind.
func Apply(kind Kind, parent *schedule.Candidate, ctx Context, source *rand.Rand) *schedule.Candidate {
	switch kind {
	case RandomJump:
		return applyRandomJump(parent, ctx, source)
	case SocialForage:
		return applySocialForage(parent, ctx, source)
	case Ambush:
		return applyAmbush(parent, ctx, source)
	default:
		return applySprint(parent, ctx, source)
	}
}

// ExplorationRate computes the current generation's probability of
// applying an exploration operator rather than an exploitation one,
// per §4.4: a linear anneal from 0.8 toward 0.1 over the generation
// budget, adjusted up when the population has converged prematurely
// (low diversity, high intensification) and down when it is still
// diffuse and far from converged.
func ExplorationRate(generation, maxGenerations int, pop schedule.Population, bestFitness, penaltyM float64) float64 {
	base := 1 - float64(generation)/float64(maxGenerations)
	base = clamp(base, 0.1, 0.8)

	d := diversity(pop)
	i := intensification(bestFitness, penaltyM)

	if d < 0.3 && i > 0.7 {
		base += 0.3
	} else if d > 0.7 && i < 0.3 {
		base -= 0.2
	}
	return clamp(base, 0.1, 0.8)
}

func intensification(bestFitness, penaltyM float64) float64 {
	v := 1 - bestFitness/(10*penaltyM)
	return clamp(v, 0, 1)
}

// diversity is the normalized average pairwise candidate distance: for
// each task, a node mismatch contributes 1 and a clamped start-time
// delta (|Δ|/100, capped at 1) contributes up to 1 more, averaged
// across tasks and pairs, then halved into [0,1] since each task
// contributes at most 2.
func diversity(pop schedule.Population) float64 {
	n := len(pop)
	if n < 2 {
		return 1
	}
	var total float64
	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			total += pairDistance(pop[i], pop[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 1
	}
	avg := total / float64(pairs)
	return clamp(avg/2, 0, 1)
}

func pairDistance(a, b *schedule.Candidate) float64 {
	if len(a.Assignment) == 0 {
		return 0
	}
	var sum float64
	for taskID, nodeA := range a.Assignment {
		if nodeA != b.Assignment[taskID] {
			sum += 1
		}
		delta := math.Abs(a.StartTime[taskID] - b.StartTime[taskID])
		sum += clamp(delta/100, 0, 1)
	}
	return sum / float64(len(a.Assignment))
}

// applyRandomJump clones parent and reassigns 20% of tasks to a
// uniform random node and uniform random start time in [0, 100).
func applyRandomJump(parent *schedule.Candidate, ctx Context, source *rand.Rand) *schedule.Candidate {
	child := parent.Clone()
	targets := samplePortion(ctx.Order, 0.2, source)
	ids := ctx.Nodes.IDs()
	for _, taskID := range targets {
		child.Assignment[taskID] = ids[source.Intn(len(ids))]
		child.StartTime[taskID] = source.Float64() * 100
	}
	child.Evaluated = false
	return child
}

// applySocialForage clones parent and, for 40% of randomly chosen
// tasks, pulls them toward the elite centroid (modal node, mean start
// time) with 70% probability per chosen task.
func applySocialForage(parent *schedule.Candidate, ctx Context, source *rand.Rand) *schedule.Candidate {
	child := parent.Clone()
	if len(ctx.Elites) == 0 {
		return child
	}
	modalNode, meanStart := centroid(ctx.Elites, ctx.Order)
	targets := samplePortion(ctx.Order, 0.4, source)
	for _, taskID := range targets {
		if source.Float64() >= 0.7 {
			continue
		}
		child.Assignment[taskID] = modalNode[taskID]
		start := meanStart[taskID] + (source.Float64()*20 - 10)
		if start < 0 {
			start = 0
		}
		child.StartTime[taskID] = start
	}
	child.Evaluated = false
	return child
}

func centroid(elites schedule.Population, order []int) (map[int]int, map[int]float64) {
	modalNode := make(map[int]int, len(order))
	meanStart := make(map[int]float64, len(order))
	for _, taskID := range order {
		counts := make(map[int]int)
		var sum float64
		n := 0
		for _, e := range elites {
			if nodeID, ok := e.Assignment[taskID]; ok {
				counts[nodeID]++
			}
			if st, ok := e.StartTime[taskID]; ok {
				sum += st
				n++
			}
		}
		best, bestCount := -1, -1
		for nodeID, count := range counts {
			if count > bestCount {
				best, bestCount = nodeID, count
			}
		}
		modalNode[taskID] = best
		if n > 0 {
			meanStart[taskID] = sum / float64(n)
		}
	}
	return modalNode, meanStart
}

// applyAmbush clones parent, retargets critical tasks onto their
// lowest-CriticalScore node and re-optimizes their start time, and
// lightly perturbs non-critical tasks' start times.
func applyAmbush(parent *schedule.Candidate, ctx Context, source *rand.Rand) *schedule.Candidate {
	child := parent.Clone()
	finish := make(map[int]float64, len(ctx.Order))

	for _, taskID := range ctx.Order {
		taskRef, _ := ctx.WF.Task(taskID)
		task := *taskRef
		ready := ctx.WF.ReadyTime(taskID, finish)

		if ctx.Critical[taskID] {
			bestNode, bestDuration := -1, math.Inf(1)
			bestScore := kernel.Unschedulable + 1
			for _, nodeID := range ctx.Nodes.IDs() {
				node, _ := ctx.Nodes.Get(nodeID)
				pairing := kernel.Pair(task, node)
				score := kernel.CriticalScore(pairing.Cost, pairing.Duration, task.Deadline)
				if score < bestScore {
					bestScore, bestNode, bestDuration = score, nodeID, pairing.Duration
				}
			}
			child.Assignment[taskID] = bestNode
			lo := ready
			hi := task.Deadline - bestDuration
			child.StartTime[taskID] = clampRange(child.StartTime[taskID], lo, hi)
		} else if source.Float64() < 0.3 {
			perturbed := child.StartTime[taskID] + (source.Float64()*5 - 2.5)
			if perturbed < 0 {
				perturbed = 0
			}
			child.StartTime[taskID] = perturbed
		}

		nodeID := child.Assignment[taskID]
		node, _ := ctx.Nodes.Get(nodeID)
		pairing := kernel.Pair(task, node)
		finish[taskID] = math.Max(child.StartTime[taskID], ready) + pairing.Duration
	}
	child.Evaluated = false
	return child
}

// applySprint clones parent and pulls each task probabilistically
// toward the current best candidate G's node and start time, with the
// pull probability (velocity) scaled by how much better G's node
// scores than the parent's for that task.
func applySprint(parent *schedule.Candidate, ctx Context, source *rand.Rand) *schedule.Candidate {
	child := parent.Clone()
	if len(ctx.Elites) == 0 {
		return child
	}
	best := ctx.Elites[0]

	for _, taskID := range ctx.Order {
		if source.Float64() >= ctx.Params.SprintIntensity {
			continue
		}
		taskRef, _ := ctx.WF.Task(taskID)
		task := *taskRef

		parentNodeID := parent.Assignment[taskID]
		bestNodeID, haveBest := best.Assignment[taskID]
		if !haveBest {
			continue
		}

		parentScore := staticScore(task, ctx.Nodes, parentNodeID)
		bestScore := staticScore(task, ctx.Nodes, bestNodeID)

		velocity := 0.5
		if parentScore != 0 {
			velocity = 0.5 + (parentScore-bestScore)/parentScore
		}
		velocity = clamp(velocity, 0.1, 0.95)

		if source.Float64() < velocity {
			child.Assignment[taskID] = bestNodeID
		}

		if bestStart, ok := best.StartTime[taskID]; ok {
			current := child.StartTime[taskID]
			child.StartTime[taskID] = current + 0.6*(bestStart-current)
		}
	}
	child.Evaluated = false
	return child
}

func staticScore(task domain.Task, nodes domain.NodeSet, nodeID int) float64 {
	node, ok := nodes.Get(nodeID)
	if !ok {
		return kernel.Unschedulable
	}
	pairing := kernel.Pair(task, node)
	return kernel.GreedyScore(pairing.Cost, pairing.Duration, task.Deadline)
}

func samplePortion(order []int, fraction float64, source *rand.Rand) []int {
	count := int(math.Ceil(fraction * float64(len(order))))
	if count > len(order) {
		count = len(order)
	}
	shuffled := make([]int, len(order))
	copy(shuffled, order)
	source.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:count]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampRange clamps v into [lo, hi], tolerating hi < lo (deadline
// pressure can make deadline-duration fall below the ready time) by
// collapsing to lo in that case.
func clampRange(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return clamp(v, lo, hi)
}
