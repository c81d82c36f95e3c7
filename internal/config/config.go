// Package config carries the engine's tunable control parameters, bound
// to CLI flags with spf13/pflag the way the teacher's ScheduleConfig
// binds its own JSON-tagged fields in scheduler.go — except here there
// is no JSON surface, only flags/env, since a one-shot CLI has no need
// for the teacher's heavier config-file layer.
package config

import "github.com/spf13/pflag"

// Parameters holds every §4.8 control constant, with its documented
// default, as a mutable struct so the CLI can override any of them.
type Parameters struct {
	PopulationSize  int
	MaxGenerations  int
	EliteSize       int
	PenaltyM        float64
	SprintIntensity float64
	CritTaskCap     float64
	OuterPop        int
	OuterGens       int
	LatencyWeight   float64
	DeployCostWeight float64

	Seed       uint64
	Sequential bool
}

// Defaults returns the engine's default parameter set.
func Defaults() Parameters {
	return Parameters{
		PopulationSize:   100,
		MaxGenerations:   200,
		EliteSize:        10,
		PenaltyM:         1000,
		SprintIntensity:  0.8,
		CritTaskCap:      0.3,
		OuterPop:         50,
		OuterGens:        100,
		LatencyWeight:    0.6,
		DeployCostWeight: 0.4,
		Seed:             42,
		Sequential:       false,
	}
}

// BindFlags registers every parameter as a flag on fs, defaulting to the
// values already present in p (call Defaults() first).
func (p *Parameters) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&p.PopulationSize, "population-size", p.PopulationSize, "candidates per generation")
	fs.IntVar(&p.MaxGenerations, "max-generations", p.MaxGenerations, "generation budget")
	fs.IntVar(&p.EliteSize, "elite-size", p.EliteSize, "elites carried into each generation after local refinement")
	fs.Float64Var(&p.PenaltyM, "penalty-m", p.PenaltyM, "penalty multiplier for the exploration-rate intensification term (the evaluator's deadline penalty always uses kernel.PenaltyMultiplier)")
	fs.Float64Var(&p.SprintIntensity, "sprint-intensity", p.SprintIntensity, "per-task probability that Sprint pulls a task toward the best candidate")
	fs.Float64Var(&p.CritTaskCap, "crit-task-cap", p.CritTaskCap, "fraction of tasks eligible to be critical")
	fs.IntVar(&p.OuterPop, "outer-pop", p.OuterPop, "outer placement search population size")
	fs.IntVar(&p.OuterGens, "outer-gens", p.OuterGens, "outer placement search generation budget")
	fs.Float64Var(&p.LatencyWeight, "latency-weight", p.LatencyWeight, "outer fitness latency term weight")
	fs.Float64Var(&p.DeployCostWeight, "deploy-cost-weight", p.DeployCostWeight, "outer fitness deploy cost term weight")
	fs.Uint64Var(&p.Seed, "seed", p.Seed, "master PRNG seed")
	fs.BoolVar(&p.Sequential, "sequential", p.Sequential, "force single-threaded evaluation for deterministic debugging")
}
