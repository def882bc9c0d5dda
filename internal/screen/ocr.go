package screen

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Recognizer extracts text from a captured image.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Recognition profiles, tried in order: single line, uniform block, fully
// automatic. Button text is usually one line, so the single-line profile
// wins most ticks; the others catch multi-line dialogs.
var ocrProfiles = [][]string{
	{"--psm", "7", "--oem", "3"},
	{"--psm", "6", "--oem", "3"},
	{"--psm", "3", "--oem", "3"},
}

// TesseractRecognizer shells out to tesseract, accepting the first
// non-empty result across the recognition profiles.
type TesseractRecognizer struct {
	runOutput func(ctx context.Context, name string, args ...string) (string, error)
}

// NewTesseractRecognizer creates a recognizer. Returns an error when the
// tesseract binary is not installed.
func NewTesseractRecognizer() (*TesseractRecognizer, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return nil, fmt.Errorf("tesseract not found in PATH: %w", err)
	}
	return &TesseractRecognizer{runOutput: runCommandOutput}, nil
}

// Recognize runs each profile until one yields text. The result is
// lower-cased and trimmed, matching what the classifier expects. An empty
// string with nil error means "no text this tick".
func (t *TesseractRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	var lastErr error
	for _, profile := range ocrProfiles {
		args := append([]string{imagePath, "stdout"}, profile...)
		out, err := t.runOutput(ctx, "tesseract", args...)
		if err != nil {
			lastErr = err
			continue
		}
		if text := strings.ToLower(strings.TrimSpace(out)); text != "" {
			return text, nil
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("tesseract: %w", lastErr)
	}
	return "", nil
}

func runCommandOutput(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
