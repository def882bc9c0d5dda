package screen

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Grabber captures a screen region to an image file and returns its path.
type Grabber interface {
	Grab(ctx context.Context, region Region) (string, error)
}

// grabTool describes one supported screenshot backend and how to invoke it
// with a crop geometry.
type grabTool struct {
	name string
	args func(region Region, out string) []string
}

// Supported backends, tried in order. All crop to the region directly so no
// full-screen image is written to disk.
var grabTools = []grabTool{
	{"maim", func(r Region, out string) []string {
		return []string{"-g", fmt.Sprintf("%dx%d+%d+%d", r.Width(), r.Height(), r.Left, r.Top), out}
	}},
	{"scrot", func(r Region, out string) []string {
		return []string{"-a", fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Width(), r.Height()), out}
	}},
	{"grim", func(r Region, out string) []string {
		return []string{"-g", fmt.Sprintf("%d,%d %dx%d", r.Left, r.Top, r.Width(), r.Height()), out}
	}},
	{"import", func(r Region, out string) []string {
		return []string{"-window", "root", "-crop",
			fmt.Sprintf("%dx%d+%d+%d", r.Width(), r.Height(), r.Left, r.Top), out}
	}},
}

// ExecGrabber shells out to the first available screenshot tool, then
// enhances the capture for recognition (3x upscale plus contrast) with
// ImageMagick when present. Enhancement failure is not fatal; recognition
// just runs on the raw capture.
type ExecGrabber struct {
	dir  string
	tool *grabTool

	lookPath func(string) (string, error)
	runCmd   func(ctx context.Context, name string, args ...string) error
}

// NewExecGrabber creates a grabber writing temp images under the system
// temp dir. Returns an error when no screenshot tool is installed.
func NewExecGrabber() (*ExecGrabber, error) {
	g := &ExecGrabber{
		dir:      os.TempDir(),
		lookPath: exec.LookPath,
		runCmd:   runCommand,
	}
	for i := range grabTools {
		if _, err := g.lookPath(grabTools[i].name); err == nil {
			g.tool = &grabTools[i]
			return g, nil
		}
	}
	return nil, fmt.Errorf("no screenshot tool found (tried maim, scrot, grim, import)")
}

// Grab captures the region and returns the path of the enhanced image.
// The caller owns the file and should remove it after recognition.
func (g *ExecGrabber) Grab(ctx context.Context, region Region) (string, error) {
	out := filepath.Join(g.dir, fmt.Sprintf("cursor-automator-%d.png", os.Getpid()))
	if err := g.runCmd(ctx, g.tool.name, g.tool.args(region, out)...); err != nil {
		return "", fmt.Errorf("%s capture: %w", g.tool.name, err)
	}
	g.enhance(ctx, out)
	return out, nil
}

// enhance upscales 3x and boosts contrast in place, which markedly improves
// recognition on small button text. Best-effort.
func (g *ExecGrabber) enhance(ctx context.Context, path string) {
	magick, err := g.lookPath("magick")
	if err != nil {
		magick, err = g.lookPath("convert")
		if err != nil {
			return
		}
	}
	_ = g.runCmd(ctx, magick, path, "-resize", "300%", "-contrast-stretch", "2%", path)
}

// runCommand executes a command, annotating failures with stderr.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}
