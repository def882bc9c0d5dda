package screen

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Selector interactively picks a region by reading the mouse position at
// two corners. The operator moves the mouse and presses Enter for each
// corner; a too-small result re-prompts from the first corner.
type Selector struct {
	In  io.Reader
	Out io.Writer

	// MousePosition returns the current pointer coordinates. Defaults to
	// querying xdotool.
	MousePosition func(ctx context.Context) (int, int, error)
}

// NewSelector creates a selector reading from in and prompting on out.
func NewSelector(in io.Reader, out io.Writer) *Selector {
	return &Selector{In: in, Out: out, MousePosition: xdotoolMousePosition}
}

// Select runs the two-corner pick until a valid region is chosen or input
// ends.
func (s *Selector) Select(ctx context.Context) (Region, error) {
	reader := bufio.NewReader(s.In)
	for {
		fmt.Fprintln(s.Out, "Move the mouse to the TOP-LEFT corner of the button area and press Enter.")
		if err := waitEnter(reader); err != nil {
			return Region{}, err
		}
		x1, y1, err := s.MousePosition(ctx)
		if err != nil {
			return Region{}, fmt.Errorf("read mouse position: %w", err)
		}

		fmt.Fprintln(s.Out, "Now move to the BOTTOM-RIGHT corner and press Enter.")
		if err := waitEnter(reader); err != nil {
			return Region{}, err
		}
		x2, y2, err := s.MousePosition(ctx)
		if err != nil {
			return Region{}, fmt.Errorf("read mouse position: %w", err)
		}

		region := NewRegion(x1, y1, x2, y2)
		if err := region.Validate(); err != nil {
			fmt.Fprintf(s.Out, "%v, try again.\n", err)
			continue
		}
		fmt.Fprintf(s.Out, "Region selected: %dx%d pixels at %s\n", region.Width(), region.Height(), region)
		return region, nil
	}
}

func waitEnter(reader *bufio.Reader) error {
	_, err := reader.ReadString('\n')
	return err
}

// xdotoolMousePosition parses "x:123 y:456 screen:0 window:..." output.
func xdotoolMousePosition(ctx context.Context) (int, int, error) {
	out, err := runCommandOutput(ctx, "xdotool", "getmouselocation")
	if err != nil {
		return 0, 0, fmt.Errorf("xdotool getmouselocation: %w", err)
	}
	var x, y int
	found := 0
	for _, field := range strings.Fields(out) {
		k, v, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		switch k {
		case "x":
			x = n
			found++
		case "y":
			y = n
			found++
		}
	}
	if found < 2 {
		return 0, 0, fmt.Errorf("unexpected xdotool output %q", strings.TrimSpace(out))
	}
	return x, y, nil
}
