// Package initializer builds the starting population as four equal
// quartiles — random, greedy, opposition, hybrid — mirroring the
// teacher's warmstart.GCSH greedy weight-vector construction for the
// "greedy" quartile, generalized here to also synthesize the other
// three the spec requires.
package initializer

import (
	"sort"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/config"
	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/kernel"
	"github.com/fogsched/epoceis/internal/schedule"
)

// Build returns a population of exactly params.PopulationSize candidates
// split into four quartiles (random/greedy/opposition/hybrid). It does
// not evaluate, rank, or repair the candidates; the engine does that as
// the first generation pass, same as every subsequent generation.
// warmStart, when non-nil, seeds the first slot of the hybrid quartile
// instead of synthesizing it — a cached best-known SchedulingResult from
// a prior CLI invocation standing in for that slot's usual candidate.
func Build(wf *domain.Workflow, nodes domain.NodeSet, order []int, params config.Parameters, source *rand.Rand, warmStart *schedule.Candidate) schedule.Population {
	n := params.PopulationSize
	quarter := n / 4
	remainder := n - quarter*4 // folded into the last quartile

	pop := make(schedule.Population, 0, n)
	for i := 0; i < quarter; i++ {
		pop = append(pop, Random(wf, nodes, order, source))
	}
	for i := 0; i < quarter; i++ {
		pop = append(pop, Greedy(wf, nodes, order, source))
	}
	oppositionCount := quarter
	for i := 0; i < oppositionCount; i++ {
		base := pop[source.Intn(len(pop))]
		pop = append(pop, Opposition(base, wf, nodes, order, source))
	}
	hybridCount := quarter + remainder
	if warmStart != nil && hybridCount > 0 {
		pop = append(pop, warmStart.Clone())
		hybridCount--
	}
	for i := 0; i < hybridCount; i++ {
		pop = append(pop, Hybrid(wf, nodes, order, source))
	}
	if len(pop) > n {
		pop = pop[:n]
	}
	return pop
}

// Random assigns every task a uniformly chosen node and a uniform
// [0, 100) start time.
func Random(wf *domain.Workflow, nodes domain.NodeSet, order []int, source *rand.Rand) *schedule.Candidate {
	c := schedule.NewCandidate(len(order))
	ids := nodes.IDs()
	for _, taskID := range order {
		c.Assignment[taskID] = ids[source.Intn(len(ids))]
		c.StartTime[taskID] = source.Float64() * 100
	}
	return c
}

// Greedy picks, for each task in topological order, the node minimizing
// kernel.GreedyScore against the running node-availability table, and
// sets its start time to the workflow's parent-based ready time.
func Greedy(wf *domain.Workflow, nodes domain.NodeSet, order []int, source *rand.Rand) *schedule.Candidate {
	c := schedule.NewCandidate(len(order))
	available := make(map[int]float64, nodes.Len())
	finish := make(map[int]float64, len(order))

	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		ready := wf.ReadyTime(taskID, finish)

		bestNode := -1
		bestScore := kernel.Unschedulable + 1
		bestFinish := ready
		for _, nodeID := range nodes.IDs() {
			node, _ := nodes.Get(nodeID)
			pairing := kernel.Pair(task, node)
			start := ready
			if available[nodeID] > start {
				start = available[nodeID]
			}
			candFinish := start + pairing.Duration
			score := kernel.GreedyScore(pairing.Cost, candFinish, task.Deadline)
			if score < bestScore {
				bestScore = score
				bestNode = nodeID
				bestFinish = candFinish
			}
		}

		c.Assignment[taskID] = bestNode
		c.StartTime[taskID] = ready
		available[bestNode] = bestFinish
		finish[taskID] = bestFinish
	}
	return c
}

// Opposition maps a previously generated candidate to its "opposite":
// for every task, a node from the opposite MIPS performance class, and
// a start time reflected around 0.8*deadline.
func Opposition(base *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int, source *rand.Rand) *schedule.Candidate {
	avgMIPS := averageMIPS(nodes)
	above, below := partitionByMIPS(nodes, avgMIPS)

	c := schedule.NewCandidate(len(order))
	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		origNodeID := base.Assignment[taskID]
		origNode, ok := nodes.Get(origNodeID)

		var pool []int
		if ok && origNode.MIPS > avgMIPS {
			pool = below
		} else {
			pool = above
		}
		if len(pool) == 0 {
			pool = nodes.IDs()
		}
		c.Assignment[taskID] = bestStaticNode(task, nodes, pool)

		t := base.StartTime[taskID]
		reflected := task.Deadline*0.8 - t
		c.StartTime[taskID] = clamp(reflected, 0, task.Deadline*0.8)
	}
	return c
}

// Hybrid chooses, per task, uniformly among the three best statically
// scored nodes 70% of the time and a fully random node the other 30%,
// with start time uniform in [0, max(10, 0.6*deadline)).
func Hybrid(wf *domain.Workflow, nodes domain.NodeSet, order []int, source *rand.Rand) *schedule.Candidate {
	c := schedule.NewCandidate(len(order))
	allIDs := nodes.IDs()
	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		ranked := rankNodesStatic(task, nodes, allIDs)
		top := ranked
		if len(top) > 3 {
			top = top[:3]
		}

		if source.Float64() < 0.7 && len(top) > 0 {
			c.Assignment[taskID] = top[source.Intn(len(top))]
		} else {
			c.Assignment[taskID] = allIDs[source.Intn(len(allIDs))]
		}

		upper := 0.6 * task.Deadline
		if upper < 10 {
			upper = 10
		}
		c.StartTime[taskID] = source.Float64() * upper
	}
	return c
}

func averageMIPS(nodes domain.NodeSet) float64 {
	ids := nodes.IDs()
	if len(ids) == 0 {
		return 0
	}
	var total float64
	for _, id := range ids {
		n, _ := nodes.Get(id)
		total += n.MIPS
	}
	return total / float64(len(ids))
}

func partitionByMIPS(nodes domain.NodeSet, avg float64) (above, below []int) {
	for _, id := range nodes.IDs() {
		n, _ := nodes.Get(id)
		if n.MIPS > avg {
			above = append(above, id)
		} else {
			below = append(below, id)
		}
	}
	return above, below
}

// rankNodesStatic ranks nodeIDs ascending by a static per-task score
// that ignores running node availability (start time 0), used wherever
// the spec asks for "best-scoring nodes for that task" independent of
// the population's current schedule.
func rankNodesStatic(task domain.Task, nodes domain.NodeSet, nodeIDs []int) []int {
	type scored struct {
		id    int
		score float64
	}
	list := make([]scored, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		n, ok := nodes.Get(id)
		if !ok {
			continue
		}
		pairing := kernel.Pair(task, n)
		score := kernel.GreedyScore(pairing.Cost, pairing.Duration, task.Deadline)
		list = append(list, scored{id, score})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].score < list[j].score })
	out := make([]int, len(list))
	for i, s := range list {
		out[i] = s.id
	}
	return out
}

func bestStaticNode(task domain.Task, nodes domain.NodeSet, pool []int) int {
	ranked := rankNodesStatic(task, nodes, pool)
	if len(ranked) == 0 {
		ids := nodes.IDs()
		return ids[0]
	}
	return ranked[0]
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
