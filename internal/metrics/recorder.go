// Package metrics tracks per-step timing and counters for an automation
// session and persists a snapshot on every step transition.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Step statuses recorded on completion, matching the checklist glyphs.
const (
	StatusSucceeded  = "✓"
	StatusFailed     = "❌"
	StatusInProgress = "🔄"
)

// StepMetric is the recorded timing for one named step.
type StepMetric struct {
	Name             string   `json:"step_name"`
	StartTime        float64  `json:"start_time"`
	EndTime          *float64 `json:"end_time,omitempty"`
	Status           string   `json:"status"`
	DurationSeconds  *float64 `json:"duration,omitempty"`
	CommandsExecuted int      `json:"commands_executed"`
	MessagesSent     int      `json:"messages_sent"`
}

// Snapshot is the durable representation written on every step transition.
type Snapshot struct {
	ProjectName   string                `json:"project_name"`
	TotalDuration float64               `json:"total_duration"`
	Steps         map[string]StepMetric `json:"steps"`
}

// Recorder accumulates step metrics for one session. A session has at most
// one open step at a time: StartStep implicitly ends the previous one as
// succeeded. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	project string
	file    string
	steps   map[string]StepMetric
	order   []string // step names in first-start order, for the report
	current string

	now       func() time.Time
	writeFile func(string, []byte) error
}

// NewRecorder creates a recorder that persists snapshots to a timestamped
// file under dir (created on first write).
func NewRecorder(project, dir string) *Recorder {
	file := filepath.Join(dir, fmt.Sprintf("project_metrics_%s.json", time.Now().Format("20060102_150405")))
	return &Recorder{
		project: project,
		file:    file,
		steps:   make(map[string]StepMetric),
		now:     time.Now,
		writeFile: func(path string, data []byte) error {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			return os.WriteFile(path, data, 0o644)
		},
	}
}

// File returns the snapshot file path.
func (r *Recorder) File() string { return r.file }

// StartStep opens a new step, first ending any currently open step as
// succeeded, and persists the snapshot. Restarting a name overwrites its
// previous record.
func (r *Recorder) StartStep(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != "" {
		r.endStepLocked(StatusSucceeded)
	}

	if _, seen := r.steps[name]; !seen {
		r.order = append(r.order, name)
	}
	r.current = name
	r.steps[name] = StepMetric{
		Name:      name,
		StartTime: timeSeconds(r.now()),
		Status:    StatusInProgress,
	}
	return r.saveLocked()
}

// EndStep closes the open step with the given status and persists the
// snapshot immediately. No-op when no step is open.
func (r *Recorder) EndStep(status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == "" {
		return nil
	}
	r.endStepLocked(status)
	return r.saveLocked()
}

// CurrentStep returns the name of the open step, empty when none.
func (r *Recorder) CurrentStep() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// UpdateCounts records the session counters on the open step and persists
// the snapshot.
func (r *Recorder) UpdateCounts(commands, messages int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == "" {
		return nil
	}
	step := r.steps[r.current]
	step.CommandsExecuted = commands
	step.MessagesSent = messages
	r.steps[r.current] = step
	return r.saveLocked()
}

// TotalDuration sums the durations of all closed steps. An open step has no
// duration yet and is excluded.
func (r *Recorder) TotalDuration() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalLocked()
}

func (r *Recorder) endStepLocked(status string) {
	step, ok := r.steps[r.current]
	if !ok {
		r.current = ""
		return
	}
	end := timeSeconds(r.now())
	duration := end - step.StartTime
	step.EndTime = &end
	step.DurationSeconds = &duration
	step.Status = status
	r.steps[r.current] = step
	r.current = ""
}

func (r *Recorder) totalLocked() float64 {
	var total float64
	for _, step := range r.steps {
		if step.DurationSeconds != nil {
			total += *step.DurationSeconds
		}
	}
	return total
}

// saveLocked writes the full snapshot. Write-through on every transition:
// a crash loses at most the in-flight step's final timestamp.
func (r *Recorder) saveLocked() error {
	snap := Snapshot{
		ProjectName:   r.project,
		TotalDuration: r.totalLocked(),
		Steps:         r.steps,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := r.writeFile(r.file, data); err != nil {
		return fmt.Errorf("write metrics %s: %w", r.file, err)
	}
	return nil
}

func timeSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// Report renders the session metrics as a boxed text table.
func (r *Recorder) Report() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RenderReport(r.project, r.orderedLocked(), r.totalLocked())
}

func (r *Recorder) orderedLocked() []StepMetric {
	out := make([]StepMetric, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.steps[name])
	}
	return out
}

// RenderReport formats a metrics snapshot as the boxed report. Exposed so
// the report command can render previously written snapshot files.
func RenderReport(project string, steps []StepMetric, total float64) string {
	lines := []string{
		"╔════════════════════════════════════════════════════════╗",
		fmt.Sprintf("║ Project: %-45s ║", truncate(project, 45)),
		"╠════════════════════════════════════════════════════════╣",
		"║ Step Metrics:                                          ║",
	}
	for _, step := range steps {
		duration := "In Progress"
		if step.DurationSeconds != nil {
			duration = fmt.Sprintf("%.1fs", *step.DurationSeconds)
		}
		lines = append(lines, fmt.Sprintf("║ %s %-30s %-19s ║", step.Status, truncate(step.Name, 30), duration))
	}
	lines = append(lines,
		"╠════════════════════════════════════════════════════════╣",
		fmt.Sprintf("║ Total Duration: %-38s ║", fmt.Sprintf("%.1f seconds", total)),
		"╚════════════════════════════════════════════════════════╝",
	)
	return strings.Join(lines, "\n")
}

// SortedSteps returns a snapshot's steps ordered by start time, for
// rendering files where the in-memory start order is gone.
func (s Snapshot) SortedSteps() []StepMetric {
	out := make([]StepMetric, 0, len(s.Steps))
	for _, step := range s.Steps {
		out = append(out, step)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
