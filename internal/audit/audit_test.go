package audit

import (
	"reflect"
	"testing"

	"github.com/michiganelections/ballot-scraper/internal/notifier"
)

func TestFindRepeated(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string // spans
	}{
		{"empty", "", nil},
		{"no repetition", "Millage renewal for road repair", nil},
		{"consecutive word", "the the plan", []string{"the"}},
		{"non consecutive word", "the plan for the city", nil},
		{"consecutive phrase", "vote yes vote yes on this", []string{"vote yes"}},
		{"triple word", "the the the", []string{"the"}},
		{"punctuation ignored", "Proposal 1: Proposal 1 - Road Millage", []string{"Proposal 1"}},
		{
			name: "phrase across line break",
			text: "Shall the township levy\nShall the township levy a millage",
			want: []string{"Shall the township levy"},
		},
		{"partial overlap is not a repetition", "a b c a b d", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, f := range FindRepeated(tt.text) {
				got = append(got, f.Span())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindRepeated(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFindRepeated_Start(t *testing.T) {
	findings := FindRepeated("Road millage millage renewal")
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if findings[0].Start != 1 {
		t.Errorf("Start = %d, want 1", findings[0].Start)
	}
}

func TestCheck_Notifies(t *testing.T) {
	rec := notifier.NewRecorder()

	Check("the the plan", rec)
	Check("the plan for the city", rec)

	events := rec.Events()
	if len(events) != 1 {
		t.Fatalf("got %d notifications, want 1", len(events))
	}
	if events[0].Event != notifier.EventRepeatedText {
		t.Errorf("Event = %q", events[0].Event)
	}
	if events[0].Fields["span"] != "the" {
		t.Errorf("span = %v, want %q", events[0].Fields["span"], "the")
	}
}
