package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"
)

// Console is the plain-terminal front end: a status banner on start, log
// lines as they happen (the engine's logger mirrors to the console), and a
// blocking command prompt on stdin.
type Console struct {
	Engine *Engine
	In     io.Reader
	Out    io.Writer
}

// Run reads operator commands until EOF, a stop command, context end, or
// the engine stopping on its own (e.g. via the control socket).
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintf(c.Out, "cursor-automator watching %s (help for commands)\n", c.Engine.Region)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.In)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if c.Engine.State() == StateIdle && c.Engine.Uptime() > 0 {
				return nil
			}
		case line, ok := <-lines:
			if !ok {
				// stdin closed; keep running until the session ends.
				lines = nil
				continue
			}
			response, stop := c.Engine.Execute(line)
			if response != "" {
				fmt.Fprintln(c.Out, response)
			}
			if stop {
				return nil
			}
		}
	}
}
