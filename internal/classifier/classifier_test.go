package classifier

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		// Accept phrases
		{"Run Command", Accept},
		{"run this command", Accept},
		{"Run the command ⌘", Accept},
		{"Accept", Accept},
		{"accept all", Accept},
		{"Command", Accept},
		{"please run command now", Accept},

		// Completed phrases
		{"Task completed successfully", Completed},
		{"done", Completed},
		{"Finished!", Completed},

		// Busy phrases
		{"Generating response...", Busy},
		{"Loading", Busy},

		// Dismiss phrases
		{"Cancel", Dismiss},
		{"Skip this step", Dismiss},

		// No match
		{"xyz", Unknown},
		{"", Unknown},
		{"hello world", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Classify(tt.raw); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClassify_AcceptBeatsCompleted(t *testing.T) {
	// "command" (accept) and "done" (completed) both match; accept is
	// checked first because the dispatch logic acts on it first.
	if got := Classify("command done"); got != Accept {
		t.Errorf("Classify(%q) = %v, want %v", "command done", got, Accept)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	if got := Classify("RUN COMMAND"); got != Accept {
		t.Errorf("Classify(%q) = %v, want %v", "RUN COMMAND", got, Accept)
	}
	if got := Classify("SUCCESS"); got != Completed {
		t.Errorf("Classify(%q) = %v, want %v", "SUCCESS", got, Completed)
	}
}

func TestClassify_KnownBroadMatchMisfire(t *testing.T) {
	// Documented behavior: the broad accept list matches any text
	// containing "command", even prose.
	if got := Classify("type a command to continue"); got != Accept {
		t.Errorf("Classify(%q) = %v, want %v (broad-list behavior)", "type a command to continue", got, Accept)
	}
}

func TestCategory_String(t *testing.T) {
	tests := []struct {
		c    Category
		want string
	}{
		{Accept, "accept"},
		{Completed, "completed"},
		{Busy, "busy"},
		{Dismiss, "dismiss"},
		{Unknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}
