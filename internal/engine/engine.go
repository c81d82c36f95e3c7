// Package engine ties the initializer, evaluator, operators, repair
// and elite local search into the generation loop, parallelizing
// per-candidate work across a bounded worker pool the same shape as
// the teacher's NSGAII.Run parallel branch and the orchestrator's
// worker/coordinatorDone pair: freeze the previous generation, fan
// work out by index, fan results back in with a sync.WaitGroup.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"golang.org/x/exp/rand"

	"github.com/fogsched/epoceis/internal/config"
	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/elite"
	"github.com/fogsched/epoceis/internal/evaluator"
	"github.com/fogsched/epoceis/internal/initializer"
	"github.com/fogsched/epoceis/internal/kernel"
	"github.com/fogsched/epoceis/internal/operators"
	"github.com/fogsched/epoceis/internal/repair"
	"github.com/fogsched/epoceis/internal/rng"
	"github.com/fogsched/epoceis/internal/schedule"
	"github.com/fogsched/epoceis/internal/telemetry"
)

// Result is the SchedulingResult §6 describes: the winning candidate's
// assignment/timing plus the scalar metrics derived from it.
type Result struct {
	Assignment map[int]int
	StartTime  map[int]float64

	TotalCost         float64
	Makespan          float64
	TotalEnergy       float64
	DeadlineHitRate   float64
	AvgLatency        float64
	FogUtilization    float64
	CloudUtilization  float64
	MissedDeadlines   int
}

// Run executes the full evolutionary search and returns the best
// candidate found, translated into a Result. It returns a fatal error
// (wrapping domain.ErrEmptyNodeSet, domain.ErrCycleDetected or
// domain.ErrNoRoot) immediately and never starts the search in that
// case, per §7's propagation policy. telem may be nil (untelemetered
// run); warmStart, when non-nil, seeds one hybrid-quartile population
// slot instead of synthesizing it, the way a cached best-known result
// from a prior CLI invocation warm-starts the next one.
func Run(wf *domain.Workflow, nodes domain.NodeSet, params config.Parameters, log *slog.Logger, telem *telemetry.Telemetry, warmStart *schedule.Candidate) (Result, error) {
	if log == nil {
		log = slog.Default()
	}
	if nodes.Len() == 0 {
		return Result{}, fmt.Errorf("engine: cannot schedule onto an empty node set: %w", domain.ErrEmptyNodeSet)
	}

	order, err := wf.TopoOrder()
	if err != nil {
		return Result{}, fmt.Errorf("engine: invalid workflow: %w", err)
	}

	runCtx := context.Background()

	workers := runtime.NumCPU()
	if params.Sequential || workers < 1 {
		workers = 1
	}
	streams := rng.Split(params.Seed, workers+1)
	initRand := streams[workers]

	pop := initializer.Build(wf, nodes, order, params, initRand, warmStart)
	for _, c := range pop {
		repair.Run(runCtx, c, wf, nodes, order, params, initRand, telem)
	}
	evaluateAll(pop, order, wf, nodes, streams, params, log)
	pop.Rank()

	critical := kernel.CriticalTasks(wf, nodes, order, params.CritTaskCap)

	for gen := 0; gen < params.MaxGenerations; gen++ {
		genCtx, genSpan := telem.StartSpan(runCtx, "generation")

		eliteWindow := eliteSize(params, len(pop))
		elites := pop[:eliteWindow].Clone()
		elites.Rank()

		rate := operators.ExplorationRate(gen, params.MaxGenerations, pop, pop.Best().Fitness, params.PenaltyM)

		next := make(schedule.Population, len(pop))
		for i := 0; i < eliteWindow; i++ {
			next[i] = elites[i].Clone()
		}

		opCtx := operators.Context{WF: wf, Nodes: nodes, Order: order, Params: params, Elites: elites, Critical: critical}
		fillOffspring(genCtx, next, eliteWindow, pop, opCtx, streams, params, rate, wf, nodes, order, log, telem)

		evaluateAll(next, order, wf, nodes, streams, params, log)

		refineElites(genCtx, next, eliteWindow, wf, nodes, order, critical, params, streams, telem)

		next.Rank()
		pop = next

		if gen%10 == 0 || gen == params.MaxGenerations-1 {
			log.Debug("generation complete", "generation", gen, "bestFitness", pop.Best().Fitness, "explorationRate", rate)
		}
		genSpan.End()
	}

	best := pop.Best()
	return toResult(best, wf, nodes, order), nil
}

func eliteSize(params config.Parameters, popLen int) int {
	if params.EliteSize > popLen {
		return popLen
	}
	return params.EliteSize
}

// fillOffspring fills next[eliteWindow:] by tournament selection plus
// operator dispatch and repair, across a bounded worker pool (or
// sequentially when params.Sequential forces it).
func fillOffspring(ctx context.Context, next schedule.Population, eliteWindow int, prev schedule.Population, opCtx operators.Context, streams []*rand.Rand, params config.Parameters, rate float64, wf *domain.Workflow, nodes domain.NodeSet, order []int, log *slog.Logger, telem *telemetry.Telemetry) {
	remaining := len(next) - eliteWindow
	if params.Sequential || len(streams) <= 1 {
		source := streams[0]
		for i := 0; i < remaining; i++ {
			next[eliteWindow+i] = breed(ctx, prev, opCtx, rate, source, wf, nodes, order, log, telem)
		}
		return
	}

	workers := len(streams) - 1
	if workers > remaining {
		workers = remaining
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	perWorker := (remaining + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := start + perWorker
		if end > remaining {
			end = remaining
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		source := streams[w]
		go func(start, end int, source *rand.Rand) {
			defer wg.Done()
			for i := start; i < end; i++ {
				next[eliteWindow+i] = breed(ctx, prev, opCtx, rate, source, wf, nodes, order, log, telem)
			}
		}(start, end, source)
	}
	wg.Wait()
}

func breed(ctx context.Context, prev schedule.Population, opCtx operators.Context, rate float64, source *rand.Rand, wf *domain.Workflow, nodes domain.NodeSet, order []int, log *slog.Logger, telem *telemetry.Telemetry) *schedule.Candidate {
	parent := tournament(prev, source)

	var kind operators.Kind
	explore := source.Float64() < rate
	coin := source.Float64() < 0.5
	switch {
	case explore && coin:
		kind = operators.RandomJump
	case explore && !coin:
		kind = operators.SocialForage
	case !explore && coin:
		kind = operators.Ambush
	default:
		kind = operators.Sprint
	}

	child := safeApply(kind, parent, opCtx, source, log, telem)
	repair.Run(ctx, child, wf, nodes, order, opCtx.Params, source, telem)
	return child
}

// safeApply absorbs any OperatorFault (a panic from degenerate
// per-candidate arithmetic) by logging at warn and falling back to a
// repaired random candidate, matching §7's "never abort the run"
// contract for non-fatal error kinds.
func safeApply(kind operators.Kind, parent *schedule.Candidate, ctx operators.Context, source *rand.Rand, log *slog.Logger, telem *telemetry.Telemetry) (child *schedule.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("operator fault absorbed", "kind", kind, "recovered", r)
			telem.IncOperatorFault()
			child = fallbackCandidate(ctx, source)
		}
	}()
	child = operators.Apply(kind, parent, ctx, source)
	if child == nil || hasNonFinite(child) {
		log.Warn("operator fault absorbed", "kind", kind, "reason", "non-finite output")
		telem.IncOperatorFault()
		return fallbackCandidate(ctx, source)
	}
	return child
}

func hasNonFinite(c *schedule.Candidate) bool {
	for _, v := range c.StartTime {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

func fallbackCandidate(ctx operators.Context, source *rand.Rand) *schedule.Candidate {
	return initializer.Random(ctx.WF, ctx.Nodes, ctx.Order, source)
}

// tournament picks the best of 3 uniformly chosen candidates by
// fitness.
func tournament(pop schedule.Population, source *rand.Rand) *schedule.Candidate {
	best := pop[source.Intn(len(pop))]
	for i := 0; i < 2; i++ {
		c := pop[source.Intn(len(pop))]
		if c.Fitness < best.Fitness {
			best = c
		}
	}
	return best
}

func evaluateAll(pop schedule.Population, order []int, wf *domain.Workflow, nodes domain.NodeSet, streams []*rand.Rand, params config.Parameters, log *slog.Logger) {
	if params.Sequential || len(streams) <= 1 {
		source := streams[0]
		for _, c := range pop {
			evaluator.Evaluate(c, order, wf, nodes, source, log)
		}
		return
	}

	workers := len(streams) - 1
	if workers > len(pop) {
		workers = len(pop)
	}
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	perWorker := (len(pop) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := start + perWorker
		if end > len(pop) {
			end = len(pop)
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		source := streams[w]
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				evaluator.Evaluate(pop[i], order, wf, nodes, source, log)
			}
		}(start, end)
	}
	wg.Wait()
}

func refineElites(ctx context.Context, pop schedule.Population, eliteWindow int, wf *domain.Workflow, nodes domain.NodeSet, order []int, critical map[int]bool, params config.Parameters, streams []*rand.Rand, telem *telemetry.Telemetry) {
	source := streams[0]
	evalFn := func(c *schedule.Candidate) {
		evaluator.Evaluate(c, order, wf, nodes, source, nil)
	}
	for i := 0; i < eliteWindow && i < len(pop); i++ {
		pop[i] = elite.Refine(ctx, pop[i], wf, nodes, order, critical, params, evalFn, source, telem)
	}
}

func toResult(best *schedule.Candidate, wf *domain.Workflow, nodes domain.NodeSet, order []int) Result {
	res := Result{
		Assignment:      best.Assignment,
		StartTime:       best.StartTime,
		TotalCost:       best.Cost,
		Makespan:        best.Makespan,
		TotalEnergy:     best.Energy,
		MissedDeadlines: best.MissedDeadlines,
	}
	if len(order) > 0 {
		res.DeadlineHitRate = float64(len(order)-best.MissedDeadlines) / float64(len(order))
	}

	var latencySum float64
	var fogDuration, cloudDuration float64
	fogCount := len(nodes.FogIDs())
	cloudCount := len(nodes.CloudIDs())

	for _, taskID := range order {
		nodeID := best.Assignment[taskID]
		node, ok := nodes.Get(nodeID)
		if !ok {
			continue
		}
		latencySum += node.LatencyMs
		duration := best.FinishTime[taskID] - best.StartTime[taskID]
		if duration < 0 {
			duration = 0
		}
		if node.IsCloud {
			cloudDuration += duration
		} else {
			fogDuration += duration
		}
	}
	if len(order) > 0 {
		res.AvgLatency = latencySum / float64(len(order))
	}
	if res.Makespan > 0 && fogCount > 0 {
		res.FogUtilization = fogDuration / (res.Makespan * float64(fogCount))
	}
	if res.Makespan > 0 && cloudCount > 0 {
		res.CloudUtilization = cloudDuration / (res.Makespan * float64(cloudCount))
	}
	return res
}
