package engine

import (
	"fmt"
	"strings"

	"github.com/rinadelph/cursor-automator/internal/metrics"
)

const helpText = `commands:
  step         show the current checklist step
  step <name>  start tracking a named step
  complete  mark the current step complete
  fail      mark the current step failed
  metrics   print the session metrics report
  pause     suspend screen sampling
  resume    resume screen sampling
  log       show the session log file path
  stop      end the session (also: exit, quit)
  help      show this help`

// Execute dispatches one operator command, from the console, the TUI, or
// the control socket. It returns the response text and whether the command
// ended the session.
func (e *Engine) Execute(command string) (string, bool) {
	cmd := strings.ToLower(strings.TrimSpace(command))

	// "step <name>" manually starts tracking a named step.
	if name, ok := strings.CutPrefix(cmd, "step "); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return "step needs a name", false
		}
		if err := e.Recorder.StartStep(name); err != nil {
			return fmt.Sprintf("persisting metrics failed: %v", err), false
		}
		e.activity("started step: " + name)
		return "started step: " + name, false
	}

	switch cmd {
	case "":
		return "", false

	case "step":
		if step := e.CurrentStep(); step != "" {
			return "current step: " + step, false
		}
		return "no step in progress", false

	case "complete":
		name := e.Recorder.CurrentStep()
		if name == "" {
			return "no step in progress", false
		}
		if err := e.Recorder.EndStep(metrics.StatusSucceeded); err != nil {
			return fmt.Sprintf("persisting metrics failed: %v", err), false
		}
		e.activity("step marked complete: " + name)
		return "step marked complete: " + name, false

	case "fail":
		name := e.Recorder.CurrentStep()
		if name == "" {
			return "no step in progress", false
		}
		if err := e.Recorder.EndStep(metrics.StatusFailed); err != nil {
			return fmt.Sprintf("persisting metrics failed: %v", err), false
		}
		e.activity("step marked failed: " + name)
		return "step marked failed: " + name, false

	case "metrics":
		return e.Recorder.Report(), false

	case "pause":
		e.Pause()
		e.activity("automation paused")
		return "paused", false

	case "resume":
		e.Resume()
		e.activity("automation resumed")
		return "resumed", false

	case "log":
		if e.LogPath == "" {
			return "no log file for this session", false
		}
		return "log file: " + e.LogPath, false

	case "help":
		return helpText, false

	case "stop", "exit", "quit":
		// An open step ends as succeeded so the snapshot closes cleanly.
		if err := e.Recorder.EndStep(metrics.StatusSucceeded); err != nil {
			e.Log.Error("persisting metrics failed", "err", err)
		}
		e.Stop()
		return "stopping", true

	default:
		return fmt.Sprintf("unknown command %q (try help)", cmd), false
	}
}
