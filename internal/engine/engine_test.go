package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rinadelph/cursor-automator/internal/checklist"
	"github.com/rinadelph/cursor-automator/internal/input"
	"github.com/rinadelph/cursor-automator/internal/metrics"
	"github.com/rinadelph/cursor-automator/internal/screen"
)

type fakeEmitter struct {
	mu        sync.Mutex
	accepts   int
	messages  []string
	acceptErr error
	sendErr   error
	accepted  chan struct{}
}

func (f *fakeEmitter) Accept(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acceptErr != nil {
		return f.acceptErr
	}
	f.accepts++
	if f.accepted != nil {
		select {
		case f.accepted <- struct{}{}:
		default:
		}
	}
	return nil
}

func (f *fakeEmitter) SendMessage(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeEmitter) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accepts, len(f.messages)
}

type fakeGrabber struct{ path string }

func (f fakeGrabber) Grab(context.Context, screen.Region) (string, error) { return f.path, nil }

type fakeRecognizer struct{ text string }

func (f fakeRecognizer) Recognize(context.Context, string) (string, error) { return f.text, nil }

func newTestEngine(t *testing.T) (*Engine, *fakeEmitter) {
	t.Helper()
	dir := t.TempDir()
	stepsFile := filepath.Join(dir, "steps.md")
	if err := os.WriteFile(stepsFile, []byte("## Setup\n- ❌ configure env\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	em := &fakeEmitter{}
	e := &Engine{
		Grabber:    fakeGrabber{},
		Recognizer: fakeRecognizer{},
		Emitter:    em,
		Resolver:   checklist.NewResolver(stepsFile, time.Second),
		Recorder:   metrics.NewRecorder("test", dir),
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Region:     screen.Region{Left: 0, Top: 0, Right: 100, Bottom: 40},
		Poll:       5 * time.Millisecond,
	}
	return e, em
}

func TestHandleSample_AcceptDebounce(t *testing.T) {
	e, em := newTestEngine(t)
	ctx := context.Background()

	e.HandleSample(ctx, "run command")
	e.HandleSample(ctx, "run command")
	e.HandleSample(ctx, "run command")

	if accepts, _ := em.counts(); accepts != 1 {
		t.Errorf("got %d accepts for unchanged text, want 1", accepts)
	}
	if commands, _ := e.Counters(); commands != 1 {
		t.Errorf("commands counter = %d, want 1", commands)
	}
}

func TestHandleSample_BlankSampleKeepsDebounce(t *testing.T) {
	e, em := newTestEngine(t)
	ctx := context.Background()

	// A blank read between two sightings of the same button must not count
	// as a text change.
	e.HandleSample(ctx, "run command")
	e.HandleSample(ctx, "")
	e.HandleSample(ctx, "run command")

	if accepts, _ := em.counts(); accepts != 1 {
		t.Errorf("got %d accepts across a blank tick, want 1", accepts)
	}
}

func TestHandleSample_AcceptAgainOnChangedText(t *testing.T) {
	e, em := newTestEngine(t)
	ctx := context.Background()

	e.HandleSample(ctx, "run command")
	e.HandleSample(ctx, "generating response")
	e.HandleSample(ctx, "run command")

	if accepts, _ := em.counts(); accepts != 2 {
		t.Errorf("got %d accepts, want 2 (text changed in between)", accepts)
	}
}

func TestHandleSample_CompletionRequiresLatch(t *testing.T) {
	e, em := newTestEngine(t)
	ctx := context.Background()

	// Completed without a preceding accept: nothing to continue from.
	e.HandleSample(ctx, "task completed successfully")
	if _, msgs := em.counts(); msgs != 0 {
		t.Fatalf("got %d messages without an accept, want 0", msgs)
	}

	e.HandleSample(ctx, "run command")
	e.HandleSample(ctx, "task completed successfully")
	if _, msgs := em.counts(); msgs != 1 {
		t.Fatalf("got %d messages after accept+complete, want 1", msgs)
	}
	if em.messages[0] != input.ContinueMessage {
		t.Errorf("sent %q, want the continue message", em.messages[0])
	}

	// Latch closed: another completion sends nothing.
	e.HandleSample(ctx, "done")
	if _, msgs := em.counts(); msgs != 1 {
		t.Errorf("got %d messages after second completion, want 1", msgs)
	}
}

func TestHandleSample_AcceptFailureKeepsLatchClosed(t *testing.T) {
	e, em := newTestEngine(t)
	em.acceptErr = errors.New("no display")
	ctx := context.Background()

	e.HandleSample(ctx, "run command")
	if commands, _ := e.Counters(); commands != 0 {
		t.Errorf("commands counter = %d after failed emit, want 0", commands)
	}

	// No accept landed, so completion must not trigger a message.
	e.HandleSample(ctx, "task completed successfully")
	if _, msgs := em.counts(); msgs != 0 {
		t.Errorf("got %d messages, want 0", msgs)
	}
}

func TestHandleSample_SendFailureKeepsLatchOpen(t *testing.T) {
	e, em := newTestEngine(t)
	ctx := context.Background()

	e.HandleSample(ctx, "run command")
	em.sendErr = errors.New("no display")
	e.HandleSample(ctx, "task completed successfully")
	if _, msgs := e.Counters(); msgs != 0 {
		t.Fatalf("messages counter = %d after failed send, want 0", msgs)
	}

	// Delivery recovers: the still-open latch retries on the next completion.
	em.sendErr = nil
	e.HandleSample(ctx, "done")
	if _, msgs := em.counts(); msgs != 1 {
		t.Errorf("got %d messages after recovery, want 1", msgs)
	}
}

func TestHandleSample_BusyAndDismissEmitNothing(t *testing.T) {
	e, em := newTestEngine(t)
	ctx := context.Background()

	e.HandleSample(ctx, "generating response...")
	e.HandleSample(ctx, "loading")
	e.HandleSample(ctx, "cancel")
	e.HandleSample(ctx, "some unknown text")

	accepts, msgs := em.counts()
	if accepts != 0 || msgs != 0 {
		t.Errorf("got %d accepts and %d messages for passive samples, want none", accepts, msgs)
	}
}

func TestPauseResume(t *testing.T) {
	e, _ := newTestEngine(t)

	// Pause only applies to a running session.
	e.Pause()
	if e.State() != StateIdle {
		t.Errorf("state after pause while idle = %v, want idle", e.State())
	}

	e.mu.Lock()
	e.state = StateRunning
	e.mu.Unlock()

	e.Pause()
	if e.State() != StatePaused {
		t.Errorf("state = %v, want paused", e.State())
	}
	e.Resume()
	if e.State() != StateRunning {
		t.Errorf("state = %v, want running", e.State())
	}
}

func TestExecute_Commands(t *testing.T) {
	e, _ := newTestEngine(t)

	if resp, stop := e.Execute("step"); stop || resp != "no step in progress" {
		t.Errorf("step: got (%q, %v)", resp, stop)
	}

	if resp, _ := e.Execute("step manual deploy"); !strings.Contains(resp, "started step: manual deploy") {
		t.Errorf("step <name>: got %q", resp)
	}
	if e.Recorder.CurrentStep() != "manual deploy" {
		t.Errorf("current recorder step = %q, want manual deploy", e.Recorder.CurrentStep())
	}

	e.Recorder.StartStep("Setup > configure env")
	if resp, _ := e.Execute("complete"); !strings.Contains(resp, "step marked complete") {
		t.Errorf("complete: got %q", resp)
	}
	if e.Recorder.CurrentStep() != "" {
		t.Error("step still open after complete")
	}

	e.Recorder.StartStep("Setup > configure env")
	if resp, _ := e.Execute("fail"); !strings.Contains(resp, "step marked failed") {
		t.Errorf("fail: got %q", resp)
	}

	if resp, _ := e.Execute("metrics"); !strings.Contains(resp, "Project: test") {
		t.Errorf("metrics: got %q", resp)
	}

	if resp, _ := e.Execute("help"); !strings.Contains(resp, "commands:") {
		t.Errorf("help: got %q", resp)
	}

	if resp, _ := e.Execute("bogus"); !strings.Contains(resp, "unknown command") {
		t.Errorf("bogus: got %q", resp)
	}

	if resp, stop := e.Execute(""); stop || resp != "" {
		t.Errorf("empty: got (%q, %v)", resp, stop)
	}

	// Stop closes any open step as succeeded before shutting down.
	e.Recorder.StartStep("teardown")
	if _, stop := e.Execute("stop"); !stop {
		t.Error("stop did not request shutdown")
	}
	if e.Recorder.CurrentStep() != "" {
		t.Error("step still open after stop")
	}
}

func TestRun_SamplesAndStops(t *testing.T) {
	e, em := newTestEngine(t)
	e.Recognizer = fakeRecognizer{text: "run command"}
	em.accepted = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case <-em.accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("no accept emitted within 2s")
	}

	if e.State() != StateRunning {
		t.Errorf("state during run = %v, want running", e.State())
	}
	if e.CurrentStep() != "Setup > configure env" {
		t.Errorf("current step = %q, want Setup > configure env", e.CurrentStep())
	}

	e.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if e.State() != StateIdle {
		t.Errorf("state after stop = %v, want idle", e.State())
	}
}
