package evaluator

import (
	_ "embed"
	"strings"
)

// SystemPrompt is the system-level instruction for the LLM evaluator.
// Loaded from prompts/system.md at compile time.
//
//go:embed prompts/system.md
var SystemPrompt string

// UserPromptTemplate is the user-level prompt template.
// The OCR text is appended after this template at runtime.
// Loaded from prompts/user.md at compile time.
//
//go:embed prompts/user.md
var UserPromptTemplate string

// stripMarkdownFences removes a surrounding ```json ... ``` (or plain ```)
// fence, which models sometimes wrap JSON responses in despite instructions.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "" || !strings.ContainsAny(first, " \t{") {
			s = s[idx+1:]
		}
	} else {
		s = strings.TrimSpace(s)
		return strings.TrimSuffix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
