package input

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newRecordingEmitter() (*XdotoolEmitter, *[][]string) {
	var calls [][]string
	e := &XdotoolEmitter{
		Run: func(_ context.Context, args ...string) error {
			calls = append(calls, args)
			return nil
		},
		Sleep: func(time.Duration) {},
	}
	return e, &calls
}

func TestAccept_BothMechanisms(t *testing.T) {
	e, calls := newRecordingEmitter()

	if err := e.Accept(context.Background()); err != nil {
		t.Fatalf("Accept() error: %v", err)
	}

	// keydown ctrl, key Return, keyup ctrl, then the combined chord.
	want := [][]string{
		{"keydown", "ctrl"},
		{"key", "Return"},
		{"keyup", "ctrl"},
		{"key", "--clearmodifiers", "ctrl+Return"},
	}
	if len(*calls) != len(want) {
		t.Fatalf("got %d xdotool calls, want %d: %v", len(*calls), len(want), *calls)
	}
	for i := range want {
		if strings.Join((*calls)[i], " ") != strings.Join(want[i], " ") {
			t.Errorf("call %d: got %v, want %v", i, (*calls)[i], want[i])
		}
	}
}

func TestAccept_SequenceFailureFallsBackToChord(t *testing.T) {
	var calls [][]string
	e := &XdotoolEmitter{
		Run: func(_ context.Context, args ...string) error {
			calls = append(calls, args)
			if args[0] == "keydown" {
				return errors.New("keydown failed")
			}
			return nil
		},
		Sleep: func(time.Duration) {},
	}

	// The redundant chord still lands, so Accept succeeds.
	if err := e.Accept(context.Background()); err != nil {
		t.Fatalf("Accept() error: %v", err)
	}

	// A failed sequence releases ctrl before the fallback chord.
	joined := make([]string, len(calls))
	for i, c := range calls {
		joined[i] = strings.Join(c, " ")
	}
	all := strings.Join(joined, "; ")
	if !strings.Contains(all, "keyup ctrl") {
		t.Errorf("expected a ctrl release after partial failure: %s", all)
	}
	if !strings.Contains(all, "ctrl+Return") {
		t.Errorf("expected fallback chord press: %s", all)
	}
}

func TestAccept_BothMechanismsFailing(t *testing.T) {
	e := &XdotoolEmitter{
		Run:   func(_ context.Context, _ ...string) error { return errors.New("no display") },
		Sleep: func(time.Duration) {},
	}
	if err := e.Accept(context.Background()); err == nil {
		t.Error("expected error when both delivery mechanisms fail")
	}
}

func TestSendMessage(t *testing.T) {
	e, calls := newRecordingEmitter()

	if err := e.SendMessage(context.Background(), "continue"); err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	if len(*calls) != 3 {
		t.Fatalf("got %d xdotool calls, want 3: %v", len(*calls), *calls)
	}
	if strings.Join((*calls)[0], " ") != "key --clearmodifiers ctrl+slash" {
		t.Errorf("call 0: got %v, want ctrl+slash focus", (*calls)[0])
	}
	if (*calls)[1][0] != "type" || (*calls)[1][len((*calls)[1])-1] != "continue" {
		t.Errorf("call 1: got %v, want literal type of the message", (*calls)[1])
	}
	if strings.Join((*calls)[2], " ") != "key Return" {
		t.Errorf("call 2: got %v, want Return submit", (*calls)[2])
	}
}

func TestSendMessage_TypeFailureStopsBeforeSubmit(t *testing.T) {
	var calls [][]string
	e := &XdotoolEmitter{
		Run: func(_ context.Context, args ...string) error {
			calls = append(calls, args)
			if args[0] == "type" {
				return errors.New("type failed")
			}
			return nil
		},
		Sleep: func(time.Duration) {},
	}

	if err := e.SendMessage(context.Background(), "continue"); err == nil {
		t.Fatal("expected error when typing fails")
	}
	for _, c := range calls {
		if c[0] == "key" && c[len(c)-1] == "Return" && len(c) == 2 {
			t.Error("message was submitted despite the typing failure")
		}
	}
}
