package kernel_test

import (
	"math"
	"testing"

	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/kernel"
)

func TestExecTimeBasic(t *testing.T) {
	got := kernel.ExecTime(1000, 100)
	if got != 10 {
		t.Errorf("ExecTime(1000, 100) = %v, want 10", got)
	}
}

func TestExecTimeZeroMIPSIsUnschedulable(t *testing.T) {
	got := kernel.ExecTime(1000, 0)
	if got != kernel.Unschedulable {
		t.Errorf("ExecTime with zero MIPS = %v, want Unschedulable", got)
	}
}

func TestTransferDelayFloorsToOne(t *testing.T) {
	// fileSize and bandwidth below 1 should be floored to 1 before dividing.
	got := kernel.TransferDelay(0, 0, 0)
	if got != 1 {
		t.Errorf("TransferDelay(0,0,0) = %v, want 1 (floored size/bandwidth)", got)
	}
}

func TestTransferDelayIncludesLatency(t *testing.T) {
	got := kernel.TransferDelay(100, 100, 500)
	want := 1.0 + 0.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("TransferDelay(100,100,500) = %v, want %v", got, want)
	}
}

func TestDurationPropagatesUnschedulable(t *testing.T) {
	got := kernel.Duration(kernel.Unschedulable, 5)
	if got != kernel.Unschedulable {
		t.Errorf("Duration with unschedulable execTime = %v, want Unschedulable", got)
	}
}

func TestCostAndEnergy(t *testing.T) {
	if got := kernel.Cost(10, 0.5); got != 5 {
		t.Errorf("Cost(10, 0.5) = %v, want 5", got)
	}
	if got := kernel.Energy(10, 2); got != 20 {
		t.Errorf("Energy(10, 2) = %v, want 20", got)
	}
}

func TestPenaltyOnlyAppliesWhenLate(t *testing.T) {
	if got := kernel.Penalty(5, 10); got != 0 {
		t.Errorf("Penalty(5,10) = %v, want 0 (on time)", got)
	}
	got := kernel.Penalty(12, 10)
	want := 2 * kernel.PenaltyMultiplier
	if got != want {
		t.Errorf("Penalty(12,10) = %v, want %v", got, want)
	}
}

func TestGreedyScorePropagatesUnschedulableCost(t *testing.T) {
	got := kernel.GreedyScore(kernel.Unschedulable, 0, 10)
	if got != kernel.Unschedulable {
		t.Errorf("GreedyScore with unschedulable cost = %v, want Unschedulable", got)
	}
}

func TestGreedyScoreAddsOvershootFraction(t *testing.T) {
	got := kernel.GreedyScore(10, 15, 10)
	want := 10 + 0.1*kernel.PenaltyMultiplier*5
	if got != want {
		t.Errorf("GreedyScore(10,15,10) = %v, want %v", got, want)
	}
}

func TestCriticalScoreZeroDeadlineIsUnschedulable(t *testing.T) {
	got := kernel.CriticalScore(10, 5, 0)
	if got != kernel.Unschedulable {
		t.Errorf("CriticalScore with zero deadline = %v, want Unschedulable", got)
	}
}

func TestCriticalScoreDeadlinePressureTerm(t *testing.T) {
	got := kernel.CriticalScore(10, 5, 10)
	want := 10 + 100*5.0/10.0
	if got != want {
		t.Errorf("CriticalScore(10,5,10) = %v, want %v", got, want)
	}
}

func TestPairBundlesKernelFigures(t *testing.T) {
	task := domain.Task{Length: 1000, FileSize: 100}
	node := domain.Node{MIPS: 100, Bandwidth: 100, LatencyMs: 0, CostPerSec: 1, EnergyPerSec: 1}
	p := kernel.Pair(task, node)
	if p.ExecTime != 10 {
		t.Errorf("Pair.ExecTime = %v, want 10", p.ExecTime)
	}
	if p.TransferDelay != 1 {
		t.Errorf("Pair.TransferDelay = %v, want 1", p.TransferDelay)
	}
	if p.Duration != 11 {
		t.Errorf("Pair.Duration = %v, want 11", p.Duration)
	}
	if p.Cost != 11 {
		t.Errorf("Pair.Cost = %v, want 11", p.Cost)
	}
	if p.Energy != 10 {
		t.Errorf("Pair.Energy = %v, want 10", p.Energy)
	}
}
