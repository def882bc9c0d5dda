package checklist

import (
	"fmt"
	"os"
	"strings"
)

// Diagnostics summarizes a checklist document for the pre-run file check.
type Diagnostics struct {
	HasSections    bool
	HasSubsections bool
	TotalSteps     int
	Completed      int
	InProgress     int
	Incomplete     int

	// Issues are critical problems that should block an automation run.
	Issues []string
	// Warnings are non-critical observations.
	Warnings []string
}

// OK reports whether the document is usable for automation.
func (d Diagnostics) OK() bool {
	return len(d.Issues) == 0
}

// Preflight reads the checklist document and verifies it is usable before a
// session starts. A missing or unreadable file fails here, once, instead of
// producing a read error on every refresh of a running session.
func Preflight(path string) (Diagnostics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Diagnostics{}, fmt.Errorf("read checklist: %w", err)
	}
	d := Diagnose(string(data))
	if !d.OK() {
		return d, fmt.Errorf("checklist %s: %s", path, strings.Join(d.Issues, "; "))
	}
	return d, nil
}

// Diagnose inspects the document text and reports structural statistics,
// critical issues, and warnings.
func Diagnose(text string) Diagnostics {
	var d Diagnostics

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "## "):
			d.HasSections = true
		case strings.HasPrefix(line, "### "):
			d.HasSubsections = true
		}
		if !hasStatusGlyph(line) {
			continue
		}
		d.TotalSteps++
		switch lineStatus(line) {
		case StatusInProgress:
			d.InProgress++
		case StatusIncomplete:
			d.Incomplete++
		default:
			d.Completed++
		}
	}

	if !d.HasSections {
		d.Issues = append(d.Issues, "no sections (##) found; steps need a section heading above them")
	}
	if d.InProgress == 0 && d.Incomplete == 0 {
		d.Issues = append(d.Issues, "no in-progress (🔄) or incomplete (❌) markers found; nothing to resolve")
	}
	if d.InProgress > 1 {
		d.Warnings = append(d.Warnings,
			fmt.Sprintf("multiple in-progress (🔄) steps found: %d; the earliest one wins", d.InProgress))
	}

	return d
}
