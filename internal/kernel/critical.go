package kernel

import (
	"sort"

	"github.com/fogsched/epoceis/internal/domain"
)

// MinExecTime returns the execution time of task on its fastest node,
// ignoring transfer delay and cost — the "minimum possible execution
// time" the critical-task definition is stated in terms of.
func MinExecTime(task domain.Task, nodes domain.NodeSet) float64 {
	best := Unschedulable
	for _, id := range nodes.IDs() {
		node, _ := nodes.Get(id)
		execTime := ExecTime(task.Length, node.MIPS)
		if execTime < best {
			best = execTime
		}
	}
	return best
}

// CriticalTasks returns the set of task ids considered critical: those
// whose minimum execution time exceeds half their deadline, or which
// have more than two dependency parents — capped at cap (fraction, e.g.
// 0.3) of the task count, keeping the most time-pressured tasks when
// more qualify than the cap allows.
func CriticalTasks(wf *domain.Workflow, nodes domain.NodeSet, order []int, cap float64) map[int]bool {
	type candidate struct {
		id       int
		pressure float64
	}
	var qualifying []candidate
	for _, taskID := range order {
		taskRef, _ := wf.Task(taskID)
		task := *taskRef
		minExec := MinExecTime(task, nodes)
		pressure := 0.0
		if task.Deadline > 0 {
			pressure = minExec / task.Deadline
		}
		if pressure > 0.5 || len(wf.Parents(taskID)) > 2 {
			qualifying = append(qualifying, candidate{taskID, pressure})
		}
	}

	limit := int(cap * float64(len(order)))
	if limit < 1 {
		limit = 1
	}
	if len(qualifying) <= limit {
		out := make(map[int]bool, len(qualifying))
		for _, q := range qualifying {
			out[q.id] = true
		}
		return out
	}

	sort.Slice(qualifying, func(i, j int) bool { return qualifying[i].pressure > qualifying[j].pressure })
	out := make(map[int]bool, limit)
	for i := 0; i < limit; i++ {
		out[qualifying[i].id] = true
	}
	return out
}
