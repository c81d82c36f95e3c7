package domain

import (
	"fmt"
	"sort"
)

// Workflow owns the task table and the forward dependency relation. It is
// built once from parsed input and is immutable for the remainder of a
// scheduling run; evaluation state (start/finish times) lives on
// schedule.Candidate instead, so many candidates can be evaluated
// concurrently against the same Workflow.
//
// The topological-sort and cycle-detection approach mirrors the teacher's
// DAGEngine.buildDAG: compute in-degree per task, seed a ready queue with
// roots, and repeatedly drain it while decrementing children's in-degree.
type Workflow struct {
	Name  string
	tasks map[int]*Task
	order []int // insertion order, used for id tie-breaks
}

// NewWorkflow builds a Workflow from a flat task list plus DEP edges
// already folded into each Task's Parents. Children are derived here.
func NewWorkflow(name string, tasks []Task) (*Workflow, error) {
	wf := &Workflow{Name: name, tasks: make(map[int]*Task, len(tasks))}
	for i := range tasks {
		t := tasks[i]
		if _, exists := wf.tasks[t.ID]; exists {
			return nil, fmt.Errorf("workflow: duplicate task id %d", t.ID)
		}
		wf.tasks[t.ID] = &t
		wf.order = append(wf.order, t.ID)
	}
	sort.Ints(wf.order)

	for _, id := range wf.order {
		task := wf.tasks[id]
		for _, pid := range task.Parents {
			parent, ok := wf.tasks[pid]
			if !ok {
				return nil, fmt.Errorf("workflow: task %d depends on non-existent task %d", task.ID, pid)
			}
			parent.Children = append(parent.Children, task.ID)
		}
	}
	for _, id := range wf.order {
		sort.Ints(wf.tasks[id].Children)
	}

	return wf, nil
}

// Task returns the task with the given id.
func (wf *Workflow) Task(id int) (*Task, bool) {
	t, ok := wf.tasks[id]
	return t, ok
}

// TaskIDs returns all task ids in ascending order.
func (wf *Workflow) TaskIDs() []int {
	out := make([]int, len(wf.order))
	copy(out, wf.order)
	return out
}

// Len reports the number of tasks in the workflow.
func (wf *Workflow) Len() int { return len(wf.order) }

// TopoOrder returns a topological order of task ids, stable by id among
// tasks whose dependencies are satisfied at the same step. Returns
// ErrCycleDetected if the dependency relation is not a DAG, and ErrNoRoot
// (which also matches ErrCycleDetected) if a non-empty workflow has no
// task with zero parents.
func (wf *Workflow) TopoOrder() ([]int, error) {
	inDegree := make(map[int]int, len(wf.tasks))
	for _, id := range wf.order {
		inDegree[id] = len(wf.tasks[id].Parents)
	}

	var ready []int
	for _, id := range wf.order {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	if len(wf.tasks) > 0 && len(ready) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoRoot, ErrCycleDetected)
	}

	order := make([]int, 0, len(wf.tasks))
	for len(ready) > 0 {
		sort.Ints(ready) // stable by id among simultaneously-ready tasks
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, childID := range wf.tasks[id].Children {
			inDegree[childID]--
			if inDegree[childID] == 0 {
				ready = append(ready, childID)
			}
		}
	}

	if len(order) != len(wf.tasks) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// ReadyTime computes the earliest a task could start given a caller-owned
// map of already-computed finish times (keyed by task id). Callers
// evaluate tasks in topological order, so by the time a task is visited
// every parent's entry in finish is final for that pass. The map is
// caller-owned (usually private to one candidate's evaluation) so that
// concurrent evaluation of different candidates over the same Workflow
// never shares mutable state.
func (wf *Workflow) ReadyTime(taskID int, finish map[int]float64) float64 {
	task, ok := wf.tasks[taskID]
	if !ok {
		return 0
	}
	ready := 0.0
	for _, pid := range task.Parents {
		if f, ok := finish[pid]; ok && f > ready {
			ready = f
		}
	}
	return ready
}

// Parents returns the parent task ids of the given task.
func (wf *Workflow) Parents(taskID int) []int {
	if t, ok := wf.tasks[taskID]; ok {
		return t.Parents
	}
	return nil
}
