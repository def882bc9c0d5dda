// Package engine drives the automation session: sample the screen region,
// recognize its text, classify it, and act on the result. It also tracks the
// checklist's current step and the session counters, and dispatches operator
// commands from whichever front end is attached.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rinadelph/cursor-automator/internal/checklist"
	"github.com/rinadelph/cursor-automator/internal/classifier"
	"github.com/rinadelph/cursor-automator/internal/evaluator"
	"github.com/rinadelph/cursor-automator/internal/input"
	"github.com/rinadelph/cursor-automator/internal/metrics"
	caotel "github.com/rinadelph/cursor-automator/internal/otel"
	"github.com/rinadelph/cursor-automator/internal/screen"
)

var tracer = otel.Tracer("cursor-automator")

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Event is one line of recent activity, kept for the front ends.
type Event struct {
	Time time.Time
	Line string
}

// maxRecent bounds the activity ring kept for display.
const maxRecent = 50

// Engine is the automation session. Populate the exported fields, then call
// Run. Grabber, Recognizer, Emitter, Resolver, Recorder and Log are
// required; Evaluator and Metrics may be nil.
type Engine struct {
	Grabber    screen.Grabber
	Recognizer screen.Recognizer
	Emitter    input.Emitter
	Resolver   *checklist.Resolver
	Recorder   *metrics.Recorder
	Evaluator  evaluator.Evaluator // advisory labels for unknown text; nil disables
	Log        *slog.Logger
	Metrics    *caotel.Metrics // nil-safe
	Region     screen.Region
	Poll       time.Duration
	LogPath    string

	mu       sync.Mutex
	state    State
	lastText string
	waiting  bool // an accept was emitted; the next completion gets a continue message
	lastStep string
	commands int
	messages int
	started  time.Time
	recent   []Event
	cancel   context.CancelFunc
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pause suspends sampling. The ticker keeps firing but no capture happens.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		e.state = StatePaused
	}
}

// Resume continues a paused session.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StatePaused {
		e.state = StateRunning
	}
}

// Stop ends the session. Safe to call from any goroutine, and before Run.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Counters returns the session's command and message counts.
func (e *Engine) Counters() (commands, messages int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commands, e.messages
}

// Uptime returns how long the session has been running.
func (e *Engine) Uptime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started.IsZero() {
		return 0
	}
	return time.Since(e.started)
}

// CurrentStep returns the most recently resolved step path, empty when none.
func (e *Engine) CurrentStep() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStep
}

// Recent returns a copy of the recent activity events, newest last.
func (e *Engine) Recent() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Event, len(e.recent))
	copy(out, e.recent)
	return out
}

// activity logs a line and keeps it in the ring for the front ends.
func (e *Engine) activity(line string) {
	e.Log.Info(line)
	e.mu.Lock()
	e.recent = append(e.recent, Event{Time: time.Now(), Line: line})
	if len(e.recent) > maxRecent {
		e.recent = e.recent[len(e.recent)-maxRecent:]
	}
	e.mu.Unlock()
}

// Run executes the poll loop until the context is cancelled or Stop is
// called. Each tick refreshes the checklist step, then samples the region
// unless the session is paused.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.state = StateRunning
	e.started = time.Now()
	e.cancel = cancel
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.state = StateIdle
		e.mu.Unlock()
	}()

	e.activity(fmt.Sprintf("watching region %s every %s", e.Region, e.Poll))
	e.refreshStep(ctx)

	ticker := time.NewTicker(e.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.activity("automation stopped")
			return nil
		case <-ticker.C:
			if e.State() != StateRunning {
				continue
			}
			e.refreshStep(ctx)
			e.sample(ctx)
		}
	}
}

// refreshStep resolves the checklist's current step and opens a new metrics
// step when it changed. Resolution errors keep the previous step.
func (e *Engine) refreshStep(ctx context.Context) {
	path, err := e.Resolver.Current()
	if err != nil {
		e.Log.Error("checklist read failed", "err", err)
		return
	}
	joined := strings.Join(path, " > ")

	e.mu.Lock()
	changed := joined != e.lastStep
	e.lastStep = joined
	e.mu.Unlock()

	if !changed {
		return
	}
	e.Metrics.RecordChecklistReparse(ctx)
	if joined == "" {
		e.activity("no pending steps in checklist")
		return
	}
	if err := e.Recorder.StartStep(joined); err != nil {
		e.Log.Error("persisting metrics failed", "err", err)
	}
	e.activity("current step: " + joined)
}

// sample captures the region, recognizes its text, and acts on it.
func (e *Engine) sample(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "sample")
	defer span.End()

	imagePath, err := e.Grabber.Grab(ctx, e.Region)
	if err != nil {
		e.Metrics.RecordRecognitionFailure(ctx)
		e.Log.Error("capture failed", "err", err)
		return
	}
	text, err := e.Recognizer.Recognize(ctx, imagePath)
	os.Remove(imagePath)
	if err != nil {
		e.Metrics.RecordRecognitionFailure(ctx)
		e.Log.Error("recognition failed", "err", err)
		return
	}
	span.SetAttributes(attribute.String("sample.text", text))

	e.HandleSample(ctx, text)
}

// HandleSample classifies one OCR sample and performs the resulting action.
// The sample is always remembered as the last seen text, so a repeated
// accept button is pressed only once until its text changes. An empty
// sample means recognition saw no text this tick and is skipped without
// touching the remembered text, so a momentary blank read cannot rearm
// the press for a button that never changed.
func (e *Engine) HandleSample(ctx context.Context, raw string) {
	if raw == "" {
		return
	}
	category := classifier.Classify(raw)
	e.Metrics.RecordSample(ctx, category.String())

	e.mu.Lock()
	changed := raw != e.lastText
	waiting := e.waiting
	e.mu.Unlock()

	switch category {
	case classifier.Accept:
		if changed {
			e.acceptButton(ctx, raw)
		}
	case classifier.Completed:
		if waiting {
			e.sendContinue(ctx, raw)
		}
	case classifier.Busy:
		if changed {
			e.Log.Info("agent busy", "text", raw)
		}
	case classifier.Dismiss:
		if changed {
			e.Log.Info("dismissable prompt ignored", "text", raw)
		}
	default:
		if changed {
			e.adviseUnknown(ctx, raw)
		}
	}

	e.mu.Lock()
	e.lastText = raw
	e.mu.Unlock()
}

// acceptButton presses the accept chord. The completion latch opens only
// when delivery succeeds.
func (e *Engine) acceptButton(ctx context.Context, raw string) {
	e.activity("found button: " + raw)
	if err := e.Emitter.Accept(ctx); err != nil {
		e.Metrics.RecordEmitFailure(ctx)
		e.Log.Error("pressing accept failed", "err", err)
		return
	}
	e.Metrics.RecordCommandEmitted(ctx)

	e.mu.Lock()
	e.commands++
	e.waiting = true
	commands, messages := e.commands, e.messages
	e.mu.Unlock()

	e.activity("command accepted")
	if err := e.Recorder.UpdateCounts(commands, messages); err != nil {
		e.Log.Error("persisting metrics failed", "err", err)
	}
}

// sendContinue types the continue message after a completed task. The latch
// stays open on delivery failure so the next completion retries.
func (e *Engine) sendContinue(ctx context.Context, raw string) {
	e.activity("task completed: " + raw)
	if err := e.Emitter.SendMessage(ctx, input.ContinueMessage); err != nil {
		e.Metrics.RecordEmitFailure(ctx)
		e.Log.Error("sending continue message failed", "err", err)
		return
	}
	e.Metrics.RecordMessageSent(ctx)

	e.mu.Lock()
	e.messages++
	e.waiting = false
	commands, messages := e.commands, e.messages
	e.mu.Unlock()

	e.activity("continue message sent")
	if err := e.Recorder.UpdateCounts(commands, messages); err != nil {
		e.Log.Error("persisting metrics failed", "err", err)
	}
}

// adviseUnknown asks the LLM, when configured, what an unmatched fragment
// likely is. The answer is logged only; it never triggers input.
func (e *Engine) adviseUnknown(ctx context.Context, raw string) {
	if e.Evaluator == nil {
		return
	}
	label, err := e.Evaluator.Label(ctx, raw)
	if err != nil {
		e.Log.Error("llm label failed", "err", err)
		return
	}
	e.Log.Info("llm advisory label", "text", raw, "category", label.Category, "reason", label.Reason)
}
