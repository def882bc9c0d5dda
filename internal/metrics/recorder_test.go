package metrics

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// newTestRecorder wires a manual clock and an in-memory snapshot sink.
func newTestRecorder() (*Recorder, *time.Time, *[][]byte) {
	clock := time.Unix(1000, 0)
	var writes [][]byte

	r := NewRecorder("test-project", "logs")
	r.now = func() time.Time { return clock }
	r.writeFile = func(_ string, data []byte) error {
		writes = append(writes, data)
		return nil
	}
	return r, &clock, &writes
}

func TestRecorder_StartEndDuration(t *testing.T) {
	r, clock, _ := newTestRecorder()

	r.StartStep("A")
	*clock = clock.Add(5 * time.Second)
	if err := r.EndStep(StatusSucceeded); err != nil {
		t.Fatalf("EndStep() error: %v", err)
	}

	if got := r.TotalDuration(); got != 5.0 {
		t.Errorf("TotalDuration() = %v, want 5.0", got)
	}
}

func TestRecorder_OpenStepExcludedFromTotal(t *testing.T) {
	r, clock, _ := newTestRecorder()

	r.StartStep("A")
	*clock = clock.Add(3 * time.Second)
	if err := r.EndStep(StatusSucceeded); err != nil {
		t.Fatalf("EndStep() error: %v", err)
	}

	r.StartStep("B")
	*clock = clock.Add(10 * time.Second)

	// B is still open, so only A's duration counts.
	if got := r.TotalDuration(); got != 3.0 {
		t.Errorf("TotalDuration() = %v, want 3.0", got)
	}
}

func TestRecorder_StartStepEndsPreviousAsSucceeded(t *testing.T) {
	r, clock, _ := newTestRecorder()

	r.StartStep("A")
	*clock = clock.Add(2 * time.Second)
	r.StartStep("B")

	if got := r.CurrentStep(); got != "B" {
		t.Errorf("CurrentStep() = %q, want %q", got, "B")
	}
	// A was implicitly closed with the success status.
	r.mu.Lock()
	a := r.steps["A"]
	r.mu.Unlock()
	if a.Status != StatusSucceeded {
		t.Errorf("step A status = %q, want %q", a.Status, StatusSucceeded)
	}
	if a.DurationSeconds == nil || *a.DurationSeconds != 2.0 {
		t.Errorf("step A duration = %v, want 2.0", a.DurationSeconds)
	}
}

func TestRecorder_StartStepPersistsTransition(t *testing.T) {
	r, clock, writes := newTestRecorder()

	if err := r.StartStep("A"); err != nil {
		t.Fatalf("StartStep() error: %v", err)
	}
	*clock = clock.Add(2 * time.Second)
	if err := r.StartStep("B"); err != nil {
		t.Fatalf("StartStep() error: %v", err)
	}

	// Each start writes through, so A's implicit close is already durable.
	if len(*writes) != 2 {
		t.Fatalf("got %d snapshot writes, want 2", len(*writes))
	}
	var snap Snapshot
	if err := json.Unmarshal((*writes)[1], &snap); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	a := snap.Steps["A"]
	if a.Status != StatusSucceeded || a.DurationSeconds == nil || *a.DurationSeconds != 2.0 {
		t.Errorf("steps[A] = %+v, want closed as %q with duration 2.0", a, StatusSucceeded)
	}
	if snap.Steps["B"].Status != StatusInProgress {
		t.Errorf("steps[B].Status = %q, want %q", snap.Steps["B"].Status, StatusInProgress)
	}
}

func TestRecorder_EndStepWithoutOpenStep(t *testing.T) {
	r, _, writes := newTestRecorder()
	if err := r.EndStep(StatusFailed); err != nil {
		t.Fatalf("EndStep() error: %v", err)
	}
	if len(*writes) != 0 {
		t.Errorf("got %d snapshot writes, want 0", len(*writes))
	}
}

func TestRecorder_WriteThroughSnapshot(t *testing.T) {
	r, clock, writes := newTestRecorder()

	r.StartStep("A")
	*clock = clock.Add(1 * time.Second)
	if err := r.EndStep(StatusFailed); err != nil {
		t.Fatalf("EndStep() error: %v", err)
	}

	// One write on start, one on end.
	if len(*writes) != 2 {
		t.Fatalf("got %d snapshot writes, want 2", len(*writes))
	}

	var snap Snapshot
	if err := json.Unmarshal((*writes)[1], &snap); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if snap.ProjectName != "test-project" {
		t.Errorf("project_name = %q, want %q", snap.ProjectName, "test-project")
	}
	if snap.TotalDuration != 1.0 {
		t.Errorf("total_duration = %v, want 1.0", snap.TotalDuration)
	}
	if step, ok := snap.Steps["A"]; !ok || step.Status != StatusFailed {
		t.Errorf("steps[A] = %+v, want recorded with status %q", step, StatusFailed)
	}
}

func TestRecorder_UpdateCountsPersists(t *testing.T) {
	r, _, writes := newTestRecorder()

	r.StartStep("A")
	if err := r.UpdateCounts(3, 2); err != nil {
		t.Fatalf("UpdateCounts() error: %v", err)
	}

	if len(*writes) != 2 {
		t.Fatalf("got %d snapshot writes, want 2", len(*writes))
	}
	var snap Snapshot
	if err := json.Unmarshal((*writes)[1], &snap); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	step := snap.Steps["A"]
	if step.CommandsExecuted != 3 || step.MessagesSent != 2 {
		t.Errorf("counts = %d/%d, want 3/2", step.CommandsExecuted, step.MessagesSent)
	}
}

func TestRecorder_RestartOverwrites(t *testing.T) {
	r, clock, _ := newTestRecorder()

	r.StartStep("A")
	*clock = clock.Add(4 * time.Second)
	if err := r.EndStep(StatusFailed); err != nil {
		t.Fatalf("EndStep() error: %v", err)
	}

	r.StartStep("A")
	*clock = clock.Add(1 * time.Second)
	if err := r.EndStep(StatusSucceeded); err != nil {
		t.Fatalf("EndStep() error: %v", err)
	}

	// Second run replaced the first record entirely.
	if got := r.TotalDuration(); got != 1.0 {
		t.Errorf("TotalDuration() = %v, want 1.0", got)
	}
}

func TestRecorder_Report(t *testing.T) {
	r, clock, _ := newTestRecorder()

	r.StartStep("setup environment")
	*clock = clock.Add(2 * time.Second)
	if err := r.EndStep(StatusSucceeded); err != nil {
		t.Fatalf("EndStep() error: %v", err)
	}
	r.StartStep("build")

	report := r.Report()
	for _, want := range []string{"test-project", "setup environment", "2.0s", "In Progress", "Total Duration"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestSnapshot_SortedSteps(t *testing.T) {
	snap := Snapshot{Steps: map[string]StepMetric{
		"b": {Name: "b", StartTime: 20},
		"a": {Name: "a", StartTime: 10},
		"c": {Name: "c", StartTime: 30},
	}}
	steps := snap.SortedSteps()
	if len(steps) != 3 || steps[0].Name != "a" || steps[2].Name != "c" {
		t.Errorf("SortedSteps() order wrong: %+v", steps)
	}
}
