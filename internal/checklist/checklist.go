// Package checklist parses the project steps document and resolves the
// single "current step" from it.
//
// The document is line-oriented markdown: "## " opens a section, "### "
// opens a subsection (cleared by the next "## "), and any line carrying one
// of the three status glyphs (✓ complete, 🔄 in progress, ❌ incomplete)
// is a step. Parsing never fails; reading the file is the caller's
// concern, and malformed headings simply leave the section fields empty.
package checklist

import "strings"

// StepStatus is the completion state a step line carries.
type StepStatus int

const (
	StatusComplete StepStatus = iota
	StatusInProgress
	StatusIncomplete
)

// String returns the glyph for the status, matching the document markers.
func (s StepStatus) String() string {
	switch s {
	case StatusInProgress:
		return "🔄"
	case StatusIncomplete:
		return "❌"
	default:
		return "✓"
	}
}

// Status glyphs recognized on step lines.
const (
	glyphComplete   = "✓"
	glyphInProgress = "🔄"
	glyphIncomplete = "❌"
)

// Step is one checklist entry. Steps are rebuilt wholesale on every parse
// and never mutated individually.
type Step struct {
	// Section is the most recent "## " heading above this step.
	Section string
	// Subsection is the most recent "### " heading, cleared by each new section.
	Subsection string
	// Label is the step line with glyphs and the leading list marker stripped.
	Label string
	// Status is derived from the glyph the line carried.
	Status StepStatus
	// Position is the zero-based line number in the source document,
	// used for earliest-position tie-breaking.
	Position int
}

// Path returns [section, subsection, label], omitting an empty subsection.
func (s Step) Path() []string {
	if s.Subsection != "" {
		return []string{s.Section, s.Subsection, s.Label}
	}
	return []string{s.Section, s.Label}
}

// Index is the ordered sequence of steps from one document snapshot.
// Order equals document line order.
type Index []Step

// Parse scans the document text and builds the step index. It is a total
// function: any input yields an index (possibly empty).
func Parse(text string) Index {
	var (
		index      Index
		section    string
		subsection string
	)

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "## "):
			section = strings.TrimSpace(line[3:])
			subsection = ""
		case strings.HasPrefix(line, "### "):
			subsection = strings.TrimSpace(line[4:])
		}

		if !hasStatusGlyph(line) {
			continue
		}

		index = append(index, Step{
			Section:    section,
			Subsection: subsection,
			Label:      stripMarkers(line),
			Status:     lineStatus(line),
			Position:   i,
		})
	}

	return index
}

// hasStatusGlyph reports whether the line is a step line.
func hasStatusGlyph(line string) bool {
	return strings.Contains(line, glyphInProgress) ||
		strings.Contains(line, glyphIncomplete) ||
		strings.Contains(line, glyphComplete)
}

// lineStatus derives the step status. A line can textually carry several
// glyphs; in-progress wins over incomplete, which wins over complete.
func lineStatus(line string) StepStatus {
	switch {
	case strings.Contains(line, glyphInProgress):
		return StatusInProgress
	case strings.Contains(line, glyphIncomplete):
		return StatusIncomplete
	default:
		return StatusComplete
	}
}

// stripMarkers removes all status glyphs and the leading list marker,
// leaving the bare label.
func stripMarkers(line string) string {
	clean := strings.ReplaceAll(line, glyphInProgress, "")
	clean = strings.ReplaceAll(clean, glyphIncomplete, "")
	clean = strings.ReplaceAll(clean, glyphComplete, "")
	clean = strings.Trim(clean, "- ")
	return strings.TrimSpace(clean)
}

// Current applies the resolution rule to the index: the earliest-position
// in-progress step wins; with none in progress, the earliest incomplete
// step; with neither, nil.
func (idx Index) Current() []string {
	if s := idx.earliest(StatusInProgress); s != nil {
		return s.Path()
	}
	if s := idx.earliest(StatusIncomplete); s != nil {
		return s.Path()
	}
	return nil
}

// earliest returns the step with the smallest position among those with the
// given status, or nil. Index order equals document order, so the first
// match is the earliest.
func (idx Index) earliest(status StepStatus) *Step {
	for i := range idx {
		if idx[i].Status == status {
			return &idx[i]
		}
	}
	return nil
}
