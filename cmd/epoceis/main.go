// Command epoceis is the CLI driver for the scheduling engine, built
// with spf13/cobra the way the teacher's own root command tree is,
// since sigs.k8s.io/descheduler ships a cobra+pflag command even
// though none of it was retrieved for this pack — the dependency
// itself is real and already in the teacher's go.mod.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/fogsched/epoceis/internal/baseline"
	"github.com/fogsched/epoceis/internal/config"
	"github.com/fogsched/epoceis/internal/engine"
	"github.com/fogsched/epoceis/internal/logging"
	"github.com/fogsched/epoceis/internal/outer"
	"github.com/fogsched/epoceis/internal/parse"
	"github.com/fogsched/epoceis/internal/report"
	"github.com/fogsched/epoceis/internal/rng"
	"github.com/fogsched/epoceis/internal/scenario"
	"github.com/fogsched/epoceis/internal/schedule"
	"github.com/fogsched/epoceis/internal/store"
	"github.com/fogsched/epoceis/internal/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "epoceis",
		Short: "Fog/cloud DAG scheduling optimization engine",
	}
	root.AddCommand(newEvaluateCmd())
	return root
}

func newEvaluateCmd() *cobra.Command {
	params := config.Defaults()
	var scenarioNames string
	var workflowPath, nodesPath string
	var compare bool
	var jsonLog bool
	var cachePath string
	var twoLayer bool

	cmd := &cobra.Command{
		Use:   "evaluate [output_dir]",
		Short: "Run configured scenarios through the scheduling engine and write a CSV report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonLog {
				os.Setenv("EPOCEIS_JSON_LOG", "1")
			}
			log := logging.Init("epoceis")

			outputDir := "."
			if len(args) == 1 {
				outputDir = args[0]
			}

			scenarios, err := loadScenarios(scenarioNames, workflowPath, nodesPath)
			if err != nil {
				return err
			}

			telem := telemetry.Init("epoceis", prometheus.NewRegistry())
			defer telem.Flush(context.Background())

			var rows []report.Row
			for _, sc := range scenarios {
				scRows, err := runScenario(sc, params, log, telem, cachePath, twoLayer)
				if err != nil {
					return err
				}
				rows = append(rows, scRows...)
				if compare {
					rows = append(rows, runBaselines(sc)...)
				}
			}

			return writeReport(outputDir, rows)
		},
	}

	params.BindFlags(cmd.Flags())
	cmd.Flags().StringVar(&scenarioNames, "scenarios", "s1,s2,s3,s4,s5", "comma-separated built-in scenario names to run")
	cmd.Flags().StringVar(&workflowPath, "workflow", "", "path to a workflow text file (paired with --nodes)")
	cmd.Flags().StringVar(&nodesPath, "nodes", "", "path to a node-set text file (paired with --workflow)")
	cmd.Flags().BoolVar(&compare, "compare", false, "also run the GA/PSO/Min-Min/First-Fit baselines")
	cmd.Flags().BoolVar(&jsonLog, "json-log", false, "emit JSON structured logs instead of text")
	cmd.Flags().StringVar(&cachePath, "cache", "", "path to a bbolt best-result cache (disabled when empty)")
	cmd.Flags().BoolVar(&twoLayer, "two-layer", false, "run the optional outer fog-placement search before scheduling")
	return cmd
}

func loadScenarios(names, workflowPath, nodesPath string) ([]scenario.Scenario, error) {
	var scenarios []scenario.Scenario
	builtins := map[string]func() scenario.Scenario{
		"s1": scenario.S1, "s2": scenario.S2, "s3": scenario.S3, "s4": scenario.S4, "s5": scenario.S5,
	}
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		build, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
		scenarios = append(scenarios, build())
	}

	if workflowPath != "" && nodesPath != "" {
		wfFile, err := os.Open(workflowPath)
		if err != nil {
			return nil, fmt.Errorf("opening workflow file: %w", err)
		}
		defer wfFile.Close()
		wf, err := parse.Workflow(workflowPath, wfFile)
		if err != nil {
			return nil, fmt.Errorf("parsing workflow: %w", err)
		}

		nodesFile, err := os.Open(nodesPath)
		if err != nil {
			return nil, fmt.Errorf("opening node file: %w", err)
		}
		defer nodesFile.Close()
		nodes, err := parse.NodeSet(nodesFile)
		if err != nil {
			return nil, fmt.Errorf("parsing node set: %w", err)
		}

		scenarios = append(scenarios, scenario.Scenario{Name: workflowPath, Workflow: wf, Nodes: nodes})
	}

	return scenarios, nil
}

// runScenario runs one scenario through the engine, optionally narrowing
// the node set with the outer two-layer placement search first and
// optionally warm-starting and caching the result against a bbolt store
// at cachePath (store errors are logged, never fatal — the cache is
// purely advisory, per internal/store's package doc).
func runScenario(sc scenario.Scenario, params config.Parameters, log interface {
	Error(msg string, args ...any)
}, telem *telemetry.Telemetry, cachePath string, twoLayer bool) ([]report.Row, error) {
	runID := uuid.NewString()
	start := time.Now()

	nodes := sc.Nodes
	if twoLayer {
		source := rng.Split(params.Seed, 1)[0]
		activeIDs := outer.Run(nodes, params, source)
		nodes = nodes.Subset(activeIDs)
	}

	var st *store.Store
	var warmStart *schedule.Candidate
	if cachePath != "" {
		opened, err := store.Open(cachePath)
		if err != nil {
			log.Error("opening result cache", "scenario", sc.Name, "runID", runID, "error", err)
		} else {
			st = opened
			defer st.Close()
			if cached, found, err := st.Best(sc.Name); err != nil {
				log.Error("reading result cache", "scenario", sc.Name, "runID", runID, "error", err)
			} else if found {
				warmStart = candidateFromResult(cached)
			}
		}
	}

	res, err := engine.Run(sc.Workflow, nodes, params, nil, telem, warmStart)
	elapsedMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		if isFatal(err) {
			log.Error("scenario failed", "scenario", sc.Name, "runID", runID, "error", err)
			return nil, fmt.Errorf("scenario %s (run %s): %w", sc.Name, runID, err)
		}
		return nil, nil
	}
	telem.RunDurationMs.Observe(elapsedMs)
	telem.GenerationBestFitness.Set(res.TotalCost)

	if st != nil {
		if err := st.PutBest(sc.Name, res); err != nil {
			log.Error("caching best result", "scenario", sc.Name, "runID", runID, "error", err)
		}
	}

	return []report.Row{toRow("enhanced-epo-ceis", sc, res, elapsedMs)}, nil
}

// candidateFromResult seeds a fresh Candidate from a cached
// SchedulingResult's assignment/timing; the engine re-evaluates it
// (filling FinishTime and the scalar scores) as part of the first
// generation pass like every other initializer-produced candidate.
func candidateFromResult(res engine.Result) *schedule.Candidate {
	c := schedule.NewCandidate(len(res.Assignment))
	for taskID, nodeID := range res.Assignment {
		c.Assignment[taskID] = nodeID
	}
	for taskID, t := range res.StartTime {
		c.StartTime[taskID] = t
	}
	return c
}

func runBaselines(sc scenario.Scenario) []report.Row {
	var rows []report.Row
	start := time.Now()
	if res, err := baseline.FirstFit(sc.Workflow, sc.Nodes); err == nil {
		rows = append(rows, toRow("first-fit", sc, res, elapsedSince(start)))
	}
	start = time.Now()
	if res, err := baseline.MinMin(sc.Workflow, sc.Nodes); err == nil {
		rows = append(rows, toRow("min-min", sc, res, elapsedSince(start)))
	}
	start = time.Now()
	if res, err := baseline.GA(sc.Workflow, sc.Nodes, 50, 50, 42); err == nil {
		rows = append(rows, toRow("ga", sc, res, elapsedSince(start)))
	}
	start = time.Now()
	if res, err := baseline.PSO(sc.Workflow, sc.Nodes, 30, 50, 42); err == nil {
		rows = append(rows, toRow("pso", sc, res, elapsedSince(start)))
	}
	return rows
}

func elapsedSince(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}

func toRow(algorithm string, sc scenario.Scenario, res engine.Result, elapsedMs float64) report.Row {
	return report.Row{
		Algorithm:         algorithm,
		Scenario:          sc.Name,
		TaskCount:         sc.Workflow.Len(),
		NodeCount:         sc.Nodes.Len(),
		TotalCost:         res.TotalCost,
		Makespan:          res.Makespan,
		DeadlineHitRate:   res.DeadlineHitRate,
		ExecutionTimeMs:   elapsedMs,
		EnergyConsumption: res.TotalEnergy,
		FogUtilization:    res.FogUtilization,
		CloudUtilization:  res.CloudUtilization,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}
}

// isFatal reports whether err is one of the three fatal kinds engine.Run
// can return; it always does today (Run never returns a non-fatal
// error), named separately so a future non-fatal Run error wouldn't
// silently start logging every scenario as an error.
func isFatal(err error) bool {
	return err != nil
}

func writeReport(outputDir string, rows []report.Row) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	path := outputDir + string(os.PathSeparator) + "report.csv"
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()
	return report.Write(f, rows)
}
