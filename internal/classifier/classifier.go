// Package classifier maps raw recognized button text to a semantic
// category using case-insensitive substring membership against known
// phrase sets.
//
// The phrase lists mirror what the target editor actually renders. They are
// broad: a bare "command" matches the accept set and can misfire on
// unrelated text containing that word, but narrower lists miss real buttons
// in noisy OCR output more often.
package classifier

import "strings"

// Category is the semantic class of a recognized text sample.
type Category int

const (
	// Unknown means no phrase set matched.
	Unknown Category = iota
	// Accept is a run-command / accept button that should be activated.
	Accept
	// Completed signals the agent finished its task.
	Completed
	// Busy signals generation or loading in progress. Informational only.
	Busy
	// Dismiss is a cancel/skip control. Informational only.
	Dismiss
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case Accept:
		return "accept"
	case Completed:
		return "completed"
	case Busy:
		return "busy"
	case Dismiss:
		return "dismiss"
	default:
		return "unknown"
	}
}

var acceptPhrases = []string{
	"run command",
	"run this command",
	"run the command",
	"accept",
	"accept all",
	"command",
	"command ⌘",
}

var completedPhrases = []string{
	"completed",
	"done",
	"success",
	"finished",
}

var busyPhrases = []string{
	"generating",
	"loading",
}

var dismissPhrases = []string{
	"cancel",
	"skip",
}

// Classify labels a raw text sample. Sets are checked in dispatch-precedence
// order (accept before completed); the first match wins. Total and
// side-effect free.
func Classify(raw string) Category {
	lower := strings.ToLower(raw)
	switch {
	case matchesAny(lower, acceptPhrases):
		return Accept
	case matchesAny(lower, completedPhrases):
		return Completed
	case matchesAny(lower, busyPhrases):
		return Busy
	case matchesAny(lower, dismissPhrases):
		return Dismiss
	default:
		return Unknown
	}
}

func matchesAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
