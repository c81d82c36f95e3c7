package parse_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/fogsched/epoceis/internal/domain"
	"github.com/fogsched/epoceis/internal/parse"
)

func TestWorkflowParsesTasksAndDeps(t *testing.T) {
	src := strings.Join([]string{
		"# a comment",
		"",
		"TASK,0,1000,200,100,1,0.5",
		"TASK,1,2000,300,150,1,0.8,25.0",
		"DEP,0,1",
	}, "\n")

	wf, err := parse.Workflow("test", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Workflow: %v", err)
	}
	if wf.Len() != 2 {
		t.Fatalf("Len = %d, want 2", wf.Len())
	}
	task0, ok := wf.Task(0)
	if !ok {
		t.Fatal("task 0 missing")
	}
	if task0.Deadline != 1000.0/1000+3.0 {
		t.Errorf("task 0 deadline default = %v, want %v", task0.Deadline, 1000.0/1000+3.0)
	}
	task1, ok := wf.Task(1)
	if !ok {
		t.Fatal("task 1 missing")
	}
	if task1.Deadline != 25.0 {
		t.Errorf("task 1 explicit deadline = %v, want 25.0", task1.Deadline)
	}
	parents := wf.Parents(1)
	if len(parents) != 1 || parents[0] != 0 {
		t.Errorf("task 1 parents = %v, want [0]", parents)
	}
}

func TestWorkflowMalformedLineProducesParseError(t *testing.T) {
	src := "TASK,0,notanumber,200,100,1,0.5"
	_, err := parse.Workflow("bad", strings.NewReader(src))
	if err == nil {
		t.Fatal("expected an error for a malformed TASK record")
	}
	var perr *domain.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *domain.ParseError, got %T: %v", err, err)
	}
	if perr.Line != 1 {
		t.Errorf("ParseError.Line = %d, want 1", perr.Line)
	}
}

func TestWorkflowUnknownRecordKind(t *testing.T) {
	_, err := parse.Workflow("bad", strings.NewReader("WOMBAT,1,2,3"))
	var perr *domain.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *domain.ParseError for unknown record kind, got %v", err)
	}
}

func TestWorkflowDepReferencingUnknownTask(t *testing.T) {
	src := "TASK,0,1000,200,100,1,0.5\nDEP,0,99"
	_, err := parse.Workflow("bad", strings.NewReader(src))
	if err == nil {
		t.Fatal("expected an error for a DEP referencing a non-existent task")
	}
}

func TestWriteWorkflowRoundTrips(t *testing.T) {
	tasks := []domain.Task{
		{ID: 0, Length: 1000, FileSize: 200, OutputSize: 100, PEs: 1, Deadline: 12.5},
		{ID: 1, Length: 500, FileSize: 50, OutputSize: 25, PEs: 2, Deadline: 9, Parents: []int{0}},
	}
	original, err := domain.NewWorkflow("roundtrip", tasks)
	if err != nil {
		t.Fatalf("NewWorkflow: %v", err)
	}

	lines := parse.WriteWorkflow(original)
	reparsed, err := parse.Workflow("roundtrip", strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("Workflow(WriteWorkflow(...)): %v", err)
	}

	if reparsed.Len() != original.Len() {
		t.Fatalf("round-trip Len mismatch: got %d, want %d", reparsed.Len(), original.Len())
	}
	for _, id := range original.TaskIDs() {
		want, _ := original.Task(id)
		got, ok := reparsed.Task(id)
		if !ok {
			t.Fatalf("round-trip missing task %d", id)
		}
		if got.Length != want.Length || got.FileSize != want.FileSize || got.OutputSize != want.OutputSize || got.PEs != want.PEs || got.Deadline != want.Deadline {
			t.Errorf("round-trip task %d mismatch: got %+v, want %+v", id, got, want)
		}
	}
	if parents := reparsed.Parents(1); len(parents) != 1 || parents[0] != 0 {
		t.Errorf("round-trip lost dependency edge: Parents(1) = %v", parents)
	}
}
