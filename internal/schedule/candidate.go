// Package schedule owns the mutable per-candidate scheduling state:
// task-to-node assignment, per-task timing, and the scalar scores the
// evaluator fills in. Keeping this state off domain.Task and domain.Node
// is what lets the engine evaluate a whole generation of candidates
// concurrently against one shared Workflow/NodeSet, mirroring the
// teacher's IntegerSolution usage in algorithms/nsga2.go where each
// solution in the population owns its own variable vector and objective
// values independently of the problem definition it was generated from.
package schedule

import "sort"

// Candidate is one chromosome: a task-to-node assignment plus the timing
// and scoring state the evaluator computes for it.
type Candidate struct {
	// Assignment maps task id to node id. Genes, in GA terms.
	Assignment map[int]int

	// StartTime and FinishTime are populated by the evaluator, keyed by
	// task id, and are private to this Candidate.
	StartTime  map[int]float64
	FinishTime map[int]float64

	// Cost, Energy, Makespan and MissedDeadlines are the raw objective
	// components. Fitness is the single composite score used for
	// ranking (lower is better).
	Cost            float64
	Energy          float64
	Makespan        float64
	MissedDeadlines int
	Fitness         float64

	// Evaluated is false until the evaluator has run at least once on
	// this candidate; operators that mutate Assignment must reset it.
	Evaluated bool
}

// NewCandidate returns an empty Candidate sized for a workflow with
// taskCount tasks.
func NewCandidate(taskCount int) *Candidate {
	return &Candidate{
		Assignment: make(map[int]int, taskCount),
		StartTime:  make(map[int]float64, taskCount),
		FinishTime: make(map[int]float64, taskCount),
	}
}

// Clone returns a deep copy, used by operators that must not mutate a
// parent candidate still referenced elsewhere in the population.
func (c *Candidate) Clone() *Candidate {
	clone := &Candidate{
		Assignment:      make(map[int]int, len(c.Assignment)),
		StartTime:       make(map[int]float64, len(c.StartTime)),
		FinishTime:      make(map[int]float64, len(c.FinishTime)),
		Cost:            c.Cost,
		Energy:          c.Energy,
		Makespan:        c.Makespan,
		MissedDeadlines: c.MissedDeadlines,
		Fitness:         c.Fitness,
		Evaluated:       c.Evaluated,
	}
	for k, v := range c.Assignment {
		clone.Assignment[k] = v
	}
	for k, v := range c.StartTime {
		clone.StartTime[k] = v
	}
	for k, v := range c.FinishTime {
		clone.FinishTime[k] = v
	}
	return clone
}

// Reset clears timing and score state without touching Assignment, used
// after an operator mutates a gene and the candidate needs re-evaluation.
func (c *Candidate) Reset() {
	c.StartTime = make(map[int]float64, len(c.Assignment))
	c.FinishTime = make(map[int]float64, len(c.Assignment))
	c.Cost = 0
	c.Energy = 0
	c.Makespan = 0
	c.MissedDeadlines = 0
	c.Fitness = 0
	c.Evaluated = false
}

// Population is an ordered set of candidates, kept sorted by Rank after
// every call to Rank.
type Population []*Candidate

// Rank sorts the population ascending by Fitness, breaking ties first by
// fewer MissedDeadlines then by lower Makespan, for deterministic
// selection under equal fitness.
func (p Population) Rank() {
	sort.SliceStable(p, func(i, j int) bool {
		a, b := p[i], p[j]
		if a.Fitness != b.Fitness {
			return a.Fitness < b.Fitness
		}
		if a.MissedDeadlines != b.MissedDeadlines {
			return a.MissedDeadlines < b.MissedDeadlines
		}
		return a.Makespan < b.Makespan
	})
}

// Best returns the top-ranked candidate. Population must be non-empty and
// should have had Rank called on it (or be freshly ranked by the caller).
func (p Population) Best() *Candidate {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

// Clone returns a deep copy of every candidate in the population.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i, c := range p {
		out[i] = c.Clone()
	}
	return out
}
