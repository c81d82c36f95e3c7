// Package outer implements the optional two-layer variant's bit-vector
// search over which fog nodes to activate, reusing the same
// explore/exploit operator shape as internal/operators but specialized
// to a PlacementVector instead of a task-to-node assignment, per §4.7.
package outer

import (
	"sort"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/config"
	"github.com/fogsched/epoceis/internal/domain"
)

// Vector is a PlacementVector: one bit per fog-capable node (true =
// active), indexed the same way as the fogIDs slice it was built from.
type Vector []bool

func randomVector(n int, source *rand.Rand) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = source.Float64() < 0.5
	}
	repair(v)
	return v
}

// repair enforces the "at least one active bit" invariant, turning the
// first bit on if every bit came out false.
func repair(v Vector) {
	for _, b := range v {
		if b {
			return
		}
	}
	if len(v) > 0 {
		v[0] = true
	}
}

func (v Vector) clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// fitness is 0.6*avgLatencyOfActiveFog + 0.4*deployCost, with
// deployCost = Σ over active fog of (100 + 3600*costPerSec).
func fitness(v Vector, fogIDs []int, nodes domain.NodeSet, latencyWeight, deployCostWeight float64) float64 {
	var latencySum, deployCost float64
	active := 0
	for i, id := range fogIDs {
		if !v[i] {
			continue
		}
		node, _ := nodes.Get(id)
		latencySum += node.LatencyMs
		deployCost += 100 + 3600*node.CostPerSec
		active++
	}
	avgLatency := 0.0
	if active > 0 {
		avgLatency = latencySum / float64(active)
	}
	return latencyWeight*avgLatency + deployCostWeight*deployCost
}

type candidate struct {
	vector  Vector
	fitness float64
}

func evaluate(v Vector, fogIDs []int, nodes domain.NodeSet, params config.Parameters) candidate {
	return candidate{vector: v, fitness: fitness(v, fogIDs, nodes, params.LatencyWeight, params.DeployCostWeight)}
}

// Run searches for the fog-activation bit-vector minimizing outer
// fitness and returns the node ids that should be active: the chosen
// fog subset plus every cloud node (always implicitly active).
func Run(nodes domain.NodeSet, params config.Parameters, source *rand.Rand) []int {
	fogIDs := nodes.FogIDs()
	cloudIDs := nodes.CloudIDs()
	if len(fogIDs) == 0 {
		return cloudIDs
	}

	popSize := params.OuterPop
	if popSize < 2 {
		popSize = 2
	}
	pop := make([]candidate, popSize)
	for i := range pop {
		pop[i] = evaluate(randomVector(len(fogIDs), source), fogIDs, nodes, params)
	}
	sort.Slice(pop, func(i, j int) bool { return pop[i].fitness < pop[j].fitness })

	eliteSize := popSize / 5
	if eliteSize < 1 {
		eliteSize = 1
	}

	for gen := 0; gen < params.OuterGens; gen++ {
		best := pop[0].vector
		next := make([]candidate, 0, popSize)
		for i := 0; i < eliteSize; i++ {
			next = append(next, pop[i])
		}
		for len(next) < popSize {
			parent := pop[source.Intn(len(pop))].vector
			var child Vector
			if source.Float64() < 0.5 {
				child = exploreFlip(parent, source)
			} else {
				child = exploitTowards(parent, best, source)
			}
			repair(child)
			next = append(next, evaluate(child, fogIDs, nodes, params))
		}
		sort.Slice(next, func(i, j int) bool { return next[i].fitness < next[j].fitness })
		pop = next
	}

	best := hillClimb(pop[0].vector, fogIDs, nodes, params)

	out := make([]int, 0, len(cloudIDs)+len(fogIDs))
	for i, id := range fogIDs {
		if best[i] {
			out = append(out, id)
		}
	}
	out = append(out, cloudIDs...)
	return out
}

// exploreFlip is the explore operator: flip ~20% of bits at random.
func exploreFlip(parent Vector, source *rand.Rand) Vector {
	child := parent.clone()
	flips := len(child) / 5
	if flips < 1 {
		flips = 1
	}
	for i := 0; i < flips; i++ {
		idx := source.Intn(len(child))
		child[idx] = !child[idx]
	}
	return child
}

// exploitTowards is the exploit operator: copy bits from best with 70%
// probability per position, biasing the population toward the current
// leader the way Sprint biases toward the best chromosome in §4.4.
func exploitTowards(parent, best Vector, source *rand.Rand) Vector {
	child := parent.clone()
	for i := range child {
		if source.Float64() < 0.7 {
			child[i] = best[i]
		}
	}
	return child
}

// hillClimb flips each bit once, keeping the flip whenever it strictly
// improves fitness, per §4.7's "elite hill-climb".
func hillClimb(v Vector, fogIDs []int, nodes domain.NodeSet, params config.Parameters) Vector {
	current := v.clone()
	currentFitness := fitness(current, fogIDs, nodes, params.LatencyWeight, params.DeployCostWeight)
	for i := range current {
		trial := current.clone()
		trial[i] = !trial[i]
		repair(trial)
		f := fitness(trial, fogIDs, nodes, params.LatencyWeight, params.DeployCostWeight)
		if f < currentFitness {
			current = trial
			currentFitness = f
		}
	}
	return current
}
