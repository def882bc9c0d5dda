// Package input synthesizes the keyboard actions the automation emits:
// the accept key-chord and the typed continue message. Transport only;
// deciding when to emit belongs to the engine.
package input

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// ContinueMessage is the fixed literal sent after a completion signal to
// keep the agent working through the checklist.
const ContinueMessage = "continue with the steps and update the project steps with what we have completed and whats in progress and the implementation unless there is something critical you need to add or unless the test scripts dont show 100% functionality"

// Emitter delivers synthetic input to the target application.
type Emitter interface {
	// Accept presses the accept key-chord (ctrl+enter).
	Accept(ctx context.Context) error
	// SendMessage opens the chat input, types text literally, and submits it.
	SendMessage(ctx context.Context, text string) error
}

// XdotoolEmitter emits input through xdotool. The accept chord is delivered
// twice through different mechanisms because a single synthetic press is
// occasionally swallowed by the target's focus handling: first an explicit
// keydown/key/keyup sequence, then a combined chord press.
type XdotoolEmitter struct {
	// Run executes one xdotool invocation. Injectable for tests.
	Run func(ctx context.Context, args ...string) error
	// Sleep pauses between key events. Injectable for tests.
	Sleep func(d time.Duration)
}

// NewXdotoolEmitter creates an emitter. Returns an error when xdotool is
// not installed.
func NewXdotoolEmitter() (*XdotoolEmitter, error) {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return nil, fmt.Errorf("xdotool not found in PATH: %w", err)
	}
	return &XdotoolEmitter{Run: runXdotool, Sleep: time.Sleep}, nil
}

// Accept presses ctrl+enter via both delivery mechanisms. The chord only
// needs to land once, so the redundant press failing is not an error; both
// failing is.
func (e *XdotoolEmitter) Accept(ctx context.Context) error {
	seqErr := e.acceptSequence(ctx)
	chordErr := e.Run(ctx, "key", "--clearmodifiers", "ctrl+Return")
	if seqErr != nil && chordErr != nil {
		return fmt.Errorf("accept chord: %w (fallback also failed: %v)", seqErr, chordErr)
	}
	return nil
}

// acceptSequence holds ctrl, taps Return, releases ctrl, with short pauses
// so the target registers each event.
func (e *XdotoolEmitter) acceptSequence(ctx context.Context) error {
	steps := [][]string{
		{"keydown", "ctrl"},
		{"key", "Return"},
		{"keyup", "ctrl"},
	}
	for _, args := range steps {
		if err := e.Run(ctx, args...); err != nil {
			// Never leave ctrl held down after a partial failure.
			_ = e.Run(ctx, "keyup", "ctrl")
			return err
		}
		e.Sleep(150 * time.Millisecond)
	}
	return nil
}

// SendMessage focuses the chat input with ctrl+slash, types the text
// literally, and submits with Return.
func (e *XdotoolEmitter) SendMessage(ctx context.Context, text string) error {
	if err := e.Run(ctx, "key", "--clearmodifiers", "ctrl+slash"); err != nil {
		return fmt.Errorf("focus chat input: %w", err)
	}
	e.Sleep(500 * time.Millisecond)

	if err := e.Run(ctx, "type", "--delay", "12", "--", text); err != nil {
		return fmt.Errorf("type message: %w", err)
	}
	e.Sleep(500 * time.Millisecond)

	if err := e.Run(ctx, "key", "Return"); err != nil {
		return fmt.Errorf("submit message: %w", err)
	}
	return nil
}

func runXdotool(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "xdotool", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("xdotool %s: %w (output: %s)", args[0], err, string(out))
	}
	return nil
}
