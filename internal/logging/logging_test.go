package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_NumbersLogFiles(t *testing.T) {
	dir := t.TempDir()

	first, err := Setup(dir, io.Discard)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	defer first.Close()

	second, err := Setup(dir, io.Discard)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	defer second.Close()

	if filepath.Base(first.Path) != "log_1.txt" {
		t.Errorf("first session file = %q, want log_1.txt", first.Path)
	}
	if filepath.Base(second.Path) != "log_2.txt" {
		t.Errorf("second session file = %q, want log_2.txt", second.Path)
	}
}

func TestSetup_WritesTimestampedLines(t *testing.T) {
	dir := t.TempDir()

	sess, err := Setup(dir, io.Discard)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}

	sess.Logger.Info("found button", "text", "run command")
	sess.Logger.Error("pressing keys failed")
	if err := sess.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(sess.Path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "- found button text=run command") {
		t.Errorf("missing info line:\n%s", content)
	}
	if !strings.Contains(content, "ERROR: pressing keys failed") {
		t.Errorf("missing error line:\n%s", content)
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 2 {
		t.Errorf("got %d lines, want 2:\n%s", len(lines), content)
	}
}

func TestSetup_MirrorsToConsole(t *testing.T) {
	dir := t.TempDir()
	var console strings.Builder

	sess, err := Setup(dir, &console)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	defer sess.Close()

	sess.Logger.Info("starting automation")
	if !strings.Contains(console.String(), "starting automation") {
		t.Errorf("console missing log line: %q", console.String())
	}
}
