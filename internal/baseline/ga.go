package baseline

import (
	"log/slog"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/engine"
	"github.com/fogsched/epoceis/internal/evaluator"
	"github.com/fogsched/epoceis/internal/initializer"
	"github.com/fogsched/epoceis/internal/schedule"
)

// GA is a thin single-objective genetic algorithm baseline: random
// init, tournament selection, uniform crossover and random-reset
// mutation, ranked by the same weighted-sum fitness
// internal/evaluator.Evaluate computes (cost with deadline penalty
// folded in). It deliberately carries none of the repair state machine
// or elite local search the main engine layers on top, so it serves as
// a meaningful "what if we didn't have those" comparison point.
func GA(wf *domain.Workflow, nodes domain.NodeSet, popSize, generations int, seed uint64) (engine.Result, error) {
	order, err := wf.TopoOrder()
	if err != nil {
		return engine.Result{}, err
	}
	source := rand.New(rand.NewSource(seed))

	pop := make(schedule.Population, popSize)
	for i := range pop {
		pop[i] = initializer.Random(wf, nodes, order, source)
		evaluator.Evaluate(pop[i], order, wf, nodes, source, slog.Default())
	}
	pop.Rank()

	ids := nodes.IDs()
	for gen := 0; gen < generations; gen++ {
		next := make(schedule.Population, popSize)
		next[0] = pop[0].Clone() // elitism of 1, the minimum that guarantees monotonic improvement
		for i := 1; i < popSize; i++ {
			a := tournamentPick(pop, source)
			b := tournamentPick(pop, source)
			child := crossover(a, b, order, source)
			mutate(child, order, ids, source)
			next[i] = child
		}
		for _, c := range next {
			evaluator.Evaluate(c, order, wf, nodes, source, nil)
		}
		next.Rank()
		pop = next
	}

	best := pop.Best()
	return summarize(best.Assignment, best.StartTime, wf, nodes, order), nil
}

func tournamentPick(pop schedule.Population, source *rand.Rand) *schedule.Candidate {
	a := pop[source.Intn(len(pop))]
	b := pop[source.Intn(len(pop))]
	if a.Fitness < b.Fitness {
		return a
	}
	return b
}

func crossover(a, b *schedule.Candidate, order []int, source *rand.Rand) *schedule.Candidate {
	child := schedule.NewCandidate(len(order))
	for _, taskID := range order {
		if source.Float64() < 0.5 {
			child.Assignment[taskID] = a.Assignment[taskID]
			child.StartTime[taskID] = a.StartTime[taskID]
		} else {
			child.Assignment[taskID] = b.Assignment[taskID]
			child.StartTime[taskID] = b.StartTime[taskID]
		}
	}
	return child
}

func mutate(c *schedule.Candidate, order []int, nodeIDs []int, source *rand.Rand) {
	for _, taskID := range order {
		if source.Float64() < 0.05 {
			c.Assignment[taskID] = nodeIDs[source.Intn(len(nodeIDs))]
			c.StartTime[taskID] = source.Float64() * 100
		}
	}
}
