package task

import (
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    Number
		wantErr bool
	}{
		{"1.1", Number{1, 1}, false},
		{"2.3", Number{2, 3}, false},
		{" 10.12 ", Number{10, 12}, false},
		{"1", Number{}, true},
		{"1.2.3", Number{}, true},
		{"a.b", Number{}, true},
		{"-1.2", Number{}, true},
		{"", Number{}, true},
	}

	for _, tt := range tests {
		got, err := ParseNumber(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseNumber(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseNumber(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNumberLess(t *testing.T) {
	// Numeric order, not string order: 1.3 comes before 2.1, and
	// 1.10 comes after 1.9.
	if !(Number{1, 3}).Less(Number{2, 1}) {
		t.Error("1.3 should sort before 2.1")
	}
	if !(Number{1, 9}).Less(Number{1, 10}) {
		t.Error("1.9 should sort before 1.10")
	}
	if (Number{2, 1}).Less(Number{1, 3}) {
		t.Error("2.1 should not sort before 1.3")
	}
	if (Number{1, 1}).Less(Number{1, 1}) {
		t.Error("a number should not sort before itself")
	}
}

func TestNumberListRoundTrip(t *testing.T) {
	nums, err := ParseNumberList("1.1,2.3, 4.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nums) != 3 {
		t.Fatalf("expected 3 numbers, got %d", len(nums))
	}
	if got := FormatNumberList(nums); got != "1.1,2.3,4.5" {
		t.Errorf("FormatNumberList = %q", got)
	}

	empty, err := ParseNumberList("")
	if err != nil || empty != nil {
		t.Errorf("empty list should parse to nil, got %v, %v", empty, err)
	}
}

func TestPhaseSequence(t *testing.T) {
	order := []Phase{
		PhasePending,
		PhaseInProgress,
		PhaseTestsWritten,
		PhaseImplementationWritten,
		PhaseRefactored,
		PhaseDone,
	}

	for i := 0; i < len(order)-1; i++ {
		next, ok := order[i].Next()
		if !ok {
			t.Fatalf("%s should have a next phase", order[i])
		}
		if next != order[i+1] {
			t.Errorf("next of %s = %s, want %s", order[i], next, order[i+1])
		}
	}

	if _, ok := PhaseDone.Next(); ok {
		t.Error("done is terminal and must have no next phase")
	}
	if !PhaseDone.Terminal() {
		t.Error("done must be terminal")
	}
}

func TestPhaseStatusProjection(t *testing.T) {
	tests := []struct {
		phase Phase
		want  Status
	}{
		{PhasePending, StatusPending},
		{PhaseInProgress, StatusInProgress},
		{PhaseTestsWritten, StatusInProgress},
		{PhaseImplementationWritten, StatusInProgress},
		{PhaseRefactored, StatusInProgress},
		{PhaseDone, StatusDone},
	}
	for _, tt := range tests {
		if got := tt.phase.Status(); got != tt.want {
			t.Errorf("%s.Status() = %s, want %s", tt.phase, got, tt.want)
		}
	}
}

func TestPhaseRoundTrip(t *testing.T) {
	for p := PhasePending; p <= PhaseDone; p++ {
		parsed, err := ParsePhase(p.String())
		if err != nil {
			t.Fatalf("ParsePhase(%q): %v", p.String(), err)
		}
		if parsed != p {
			t.Errorf("ParsePhase(%q) = %v, want %v", p.String(), parsed, p)
		}
	}

	if _, err := ParsePhase("half-done"); err == nil {
		t.Error("expected error for unknown phase")
	}
}

func TestBlockedMarker(t *testing.T) {
	tk := Task{Number: Number{1, 1}, Title: "parser", Notes: "tricky edge cases"}

	tk.SetBlocked("waiting for schema")
	reason, ok := tk.Blocked()
	if !ok || reason != "waiting for schema" {
		t.Fatalf("Blocked() = %q, %v", reason, ok)
	}

	// Replacing the marker keeps the original note text.
	tk.SetBlocked("suite unavailable")
	reason, _ = tk.Blocked()
	if reason != "suite unavailable" {
		t.Errorf("Blocked() = %q after replace", reason)
	}

	tk.ClearBlocked()
	if _, ok := tk.Blocked(); ok {
		t.Error("marker should be cleared")
	}
	if tk.Notes != "tricky edge cases" {
		t.Errorf("original notes lost: %q", tk.Notes)
	}
}

func TestCloneIsDeep(t *testing.T) {
	tk := Task{
		Number:       Number{2, 1},
		Dependencies: []Number{{1, 1}, {1, 2}},
	}
	c := tk.Clone()
	c.Dependencies[0] = Number{9, 9}
	if tk.Dependencies[0] != (Number{1, 1}) {
		t.Error("Clone must copy the dependency slice")
	}
}
