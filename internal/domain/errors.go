package domain

import (
	"errors"
	"strconv"
)

// Fatal error kinds returned by the domain/parse layer. Callers can match
// with errors.Is; the engine never starts a scheduling run once one of
// these surfaces.
var (
	// ErrCycleDetected is returned by Workflow.TopoOrder when the task
	// dependency relation is not a DAG.
	ErrCycleDetected = errors.New("workflow: cycle detected")

	// ErrEmptyNodeSet is returned by anything that needs at least one
	// node to place a task on.
	ErrEmptyNodeSet = errors.New("nodeset: empty")

	// ErrNoRoot is returned when a non-empty task set has no task with
	// zero parents, which also implies a cycle; TopoOrder wraps it
	// together with ErrCycleDetected.
	ErrNoRoot = errors.New("workflow: no root task")
)

// ParseError wraps a malformed workflow/node record with its source line
// number, mirroring the teacher's fmt.Errorf(...: %w) wrapping style.
type ParseError struct {
	Line int
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return "parse error at line " + strconv.Itoa(e.Line) + ": " + e.Err.Error() + " (" + e.Raw + ")"
}

func (e *ParseError) Unwrap() error { return e.Err }
