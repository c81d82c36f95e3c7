// Package report writes the §6 comparison-report CSV schema, one row
// per (algorithm, scenario, run), with encoding/csv the way the
// teacher pack has no dedicated CSV library anywhere for this to
// reuse — a stdlib writer is the justified choice here (see
// DESIGN.md).
package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Row is one (algorithm, scenario, run) result line of the §6 schema.
type Row struct {
	Algorithm         string
	Scenario          string
	TaskCount         int
	NodeCount         int
	TotalCost         float64
	Makespan          float64
	DeadlineHitRate   float64
	ExecutionTimeMs   float64
	EnergyConsumption float64
	FogUtilization    float64
	CloudUtilization  float64
	Timestamp         string // ISO-8601 UTC, e.g. time.Now().UTC().Format(time.RFC3339)
}

var header = []string{
	"algorithm", "scenario", "taskCount", "nodeCount", "totalCost",
	"makespan", "deadlineHitRate", "executionTimeMs", "energyConsumption",
	"fogUtilization", "cloudUtilization", "timestamp",
}

// Write emits rows as CSV with a header line.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Algorithm,
			r.Scenario,
			strconv.Itoa(r.TaskCount),
			strconv.Itoa(r.NodeCount),
			strconv.FormatFloat(r.TotalCost, 'f', -1, 64),
			strconv.FormatFloat(r.Makespan, 'f', -1, 64),
			strconv.FormatFloat(r.DeadlineHitRate, 'f', -1, 64),
			strconv.FormatFloat(r.ExecutionTimeMs, 'f', -1, 64),
			strconv.FormatFloat(r.EnergyConsumption, 'f', -1, 64),
			strconv.FormatFloat(r.FogUtilization, 'f', -1, 64),
			strconv.FormatFloat(r.CloudUtilization, 'f', -1, 64),
			r.Timestamp,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
