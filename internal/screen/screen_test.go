package screen

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Region
		wantErr bool
	}{
		{"valid", "10,20,110,220", Region{10, 20, 110, 220}, false},
		{"reversed corners normalized", "110,220,10,20", Region{10, 20, 110, 220}, false},
		{"spaces tolerated", " 10, 20, 110, 220 ", Region{10, 20, 110, 220}, false},
		{"too few fields", "10,20,110", Region{}, true},
		{"not a number", "a,b,c,d", Region{}, true},
		{"too small", "10,10,15,15", Region{}, true},
		{"empty", "", Region{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRegion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRegion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRegion(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegion_Validate(t *testing.T) {
	if err := (Region{0, 0, 100, 40}).Validate(); err != nil {
		t.Errorf("valid region rejected: %v", err)
	}
	if err := (Region{0, 0, 5, 40}).Validate(); err == nil {
		t.Error("narrow region accepted")
	}
	if err := (Region{0, 0, 100, 5}).Validate(); err == nil {
		t.Error("short region accepted")
	}
}

func TestTesseractRecognizer_FirstNonEmptyProfileWins(t *testing.T) {
	var calls [][]string
	r := &TesseractRecognizer{
		runOutput: func(_ context.Context, name string, args ...string) (string, error) {
			calls = append(calls, args)
			if len(calls) == 1 {
				return "   \n", nil // single-line profile finds nothing
			}
			return " Run Command \n", nil
		},
	}

	text, err := r.Recognize(context.Background(), "img.png")
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if text != "run command" {
		t.Errorf("got %q, want %q (lower-cased, trimmed)", text, "run command")
	}
	if len(calls) != 2 {
		t.Errorf("got %d tesseract invocations, want 2", len(calls))
	}
	// First attempt uses the single-line profile.
	if !strings.Contains(strings.Join(calls[0], " "), "--psm 7") {
		t.Errorf("first profile args = %v, want --psm 7", calls[0])
	}
}

func TestTesseractRecognizer_AllEmptyYieldsNoText(t *testing.T) {
	r := &TesseractRecognizer{
		runOutput: func(_ context.Context, _ string, _ ...string) (string, error) {
			return "", nil
		},
	}
	text, err := r.Recognize(context.Background(), "img.png")
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if text != "" {
		t.Errorf("got %q, want empty", text)
	}
}

func TestTesseractRecognizer_AllProfilesFail(t *testing.T) {
	r := &TesseractRecognizer{
		runOutput: func(_ context.Context, _ string, _ ...string) (string, error) {
			return "", errors.New("boom")
		},
	}
	if _, err := r.Recognize(context.Background(), "img.png"); err == nil {
		t.Error("expected error when every profile fails")
	}
}

func TestSelector_RepromptsOnTooSmallRegion(t *testing.T) {
	positions := [][2]int{
		{100, 100}, {102, 102}, // first attempt: too small
		{100, 100}, {300, 200}, // second attempt: fine
	}
	idx := 0
	var out strings.Builder
	s := &Selector{
		In:  strings.NewReader("\n\n\n\n"),
		Out: &out,
		MousePosition: func(_ context.Context) (int, int, error) {
			p := positions[idx]
			idx++
			return p[0], p[1], nil
		},
	}

	region, err := s.Select(context.Background())
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	want := Region{100, 100, 300, 200}
	if region != want {
		t.Errorf("got %+v, want %+v", region, want)
	}
	if !strings.Contains(out.String(), "try again") {
		t.Errorf("expected re-prompt message in output:\n%s", out.String())
	}
}
