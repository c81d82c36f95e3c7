package domain

// Task is a single node of the workflow DAG. Length is in million
// instructions, FileSize/OutputSize in the same payload units the node's
// bandwidth is expressed in, and Deadline is seconds from epoch 0 (the
// workflow's own clock, not wall time).
//
// Unlike the distilled spec's description, Task carries no mutable
// start/finish fields here: §5 requires candidate evaluation to be safely
// parallel across a population that shares one Workflow, so per-evaluation
// start/finish times live on the Candidate (see schedule.Candidate),
// keyed by task id, rather than on the shared Task struct. The effect on
// callers is identical — every evaluated candidate still reports a
// finish time per task — without the shared mutable state a concurrent
// evaluator would otherwise race on.
type Task struct {
	ID         int
	Length     float64
	FileSize   float64
	OutputSize float64
	PEs        int
	Deadline   float64

	Parents  []int
	Children []int
}
