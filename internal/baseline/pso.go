package baseline

import (
	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/engine"
	"github.com/fogsched/epoceis/internal/kernel"
)

// particle holds one swarm member's continuous position/velocity per
// task; position is rounded to the nearest node index on evaluation.
type particle struct {
	position []float64
	velocity []float64
	best     []float64
	bestCost float64
}

// PSO is a thin particle-swarm baseline over task-to-node-index
// position vectors, rounded to the nearest valid node on evaluation.
// Start times are always the workflow-ready time (PSO here only
// searches placement, not timing), which keeps every particle
// trivially dependency-feasible without needing a repair pass.
func PSO(wf *domain.Workflow, nodes domain.NodeSet, swarmSize, iterations int, seed uint64) (engine.Result, error) {
	order, err := wf.TopoOrder()
	if err != nil {
		return engine.Result{}, err
	}
	source := rand.New(rand.NewSource(seed))
	ids := nodes.IDs()
	n := len(ids)
	if n == 0 {
		return engine.Result{}, domain.ErrEmptyNodeSet
	}

	swarm := make([]*particle, swarmSize)
	var globalBest []float64
	globalBestCost := kernel.Unschedulable + 1

	for i := range swarm {
		p := &particle{
			position: make([]float64, len(order)),
			velocity: make([]float64, len(order)),
		}
		for t := range order {
			p.position[t] = source.Float64() * float64(n)
			p.velocity[t] = source.Float64()*2 - 1
		}
		cost := evalPositions(p.position, order, wf, nodes, ids)
		p.best = append([]float64(nil), p.position...)
		p.bestCost = cost
		if cost < globalBestCost {
			globalBestCost = cost
			globalBest = append([]float64(nil), p.position...)
		}
		swarm[i] = p
	}

	const inertia, cognitive, social = 0.5, 1.2, 1.2
	for iter := 0; iter < iterations; iter++ {
		for _, p := range swarm {
			for t := range order {
				r1, r2 := source.Float64(), source.Float64()
				p.velocity[t] = inertia*p.velocity[t] +
					cognitive*r1*(p.best[t]-p.position[t]) +
					social*r2*(globalBest[t]-p.position[t])
				p.position[t] += p.velocity[t]
				p.position[t] = clampPos(p.position[t], float64(n))
			}
			cost := evalPositions(p.position, order, wf, nodes, ids)
			if cost < p.bestCost {
				p.bestCost = cost
				copy(p.best, p.position)
			}
			if cost < globalBestCost {
				globalBestCost = cost
				copy(globalBest, p.position)
			}
		}
	}

	assignment, startTime := positionsToSchedule(globalBest, order, wf, nodes, ids)
	return summarize(assignment, startTime, wf, nodes, order), nil
}

func clampPos(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v >= max {
		return max - 1
	}
	return v
}

func positionsToSchedule(positions []float64, order []int, wf *domain.Workflow, nodes domain.NodeSet, ids []int) (map[int]int, map[int]float64) {
	assignment := make(map[int]int, len(order))
	startTime := make(map[int]float64, len(order))
	finish := make(map[int]float64, len(order))
	for t, taskID := range order {
		idx := int(positions[t])
		if idx < 0 {
			idx = 0
		}
		if idx >= len(ids) {
			idx = len(ids) - 1
		}
		nodeID := ids[idx]
		ready := wf.ReadyTime(taskID, finish)
		assignment[taskID] = nodeID
		startTime[taskID] = ready

		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		node, _ := nodes.Get(nodeID)
		pairing := kernel.Pair(task, node)
		finish[taskID] = ready + pairing.Duration
	}
	return assignment, startTime
}

func evalPositions(positions []float64, order []int, wf *domain.Workflow, nodes domain.NodeSet, ids []int) float64 {
	assignment, startTime := positionsToSchedule(positions, order, wf, nodes, ids)
	res := summarize(assignment, startTime, wf, nodes, order)
	return res.TotalCost
}
