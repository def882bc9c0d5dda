// Package screen provides the capture and text-recognition collaborators:
// a screen region type, a screenshot grabber, and a tesseract-backed
// recognizer. This is pure transport; interpretation of the recognized
// text belongs to the classifier.
package screen

import (
	"fmt"
	"strconv"
	"strings"
)

// MinRegionSize is the smallest usable edge length in pixels. Regions below
// this are rejected at selection time and the operator is re-prompted.
const MinRegionSize = 10

// Region is a screen rectangle in absolute pixel coordinates.
type Region struct {
	Left   int `yaml:"left" json:"left"`
	Top    int `yaml:"top" json:"top"`
	Right  int `yaml:"right" json:"right"`
	Bottom int `yaml:"bottom" json:"bottom"`
}

// Width returns the region width in pixels.
func (r Region) Width() int { return r.Right - r.Left }

// Height returns the region height in pixels.
func (r Region) Height() int { return r.Bottom - r.Top }

// String formats the region as "left,top,right,bottom".
func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Right, r.Bottom)
}

// Validate rejects empty or too-small regions.
func (r Region) Validate() error {
	if r.Width() < MinRegionSize || r.Height() < MinRegionSize {
		return fmt.Errorf("region %s is too small: need at least %dx%d pixels", r, MinRegionSize, MinRegionSize)
	}
	return nil
}

// ParseRegion parses "left,top,right,bottom". Corners may be given in any
// order; they are normalized so left <= right and top <= bottom.
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("invalid region %q: want left,top,right,bottom", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		vals[i] = n
	}
	r := NewRegion(vals[0], vals[1], vals[2], vals[3])
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

// NewRegion builds a normalized region from two corner points.
func NewRegion(x1, y1, x2, y2 int) Region {
	return Region{
		Left:   min(x1, x2),
		Top:    min(y1, y2),
		Right:  max(x1, x2),
		Bottom: max(y1, y2),
	}
}
