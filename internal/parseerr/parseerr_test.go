package parseerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := New("term", ErrUnrecognizedShape, "Partisan Office")
	got := err.Error()
	want := `term: unrecognized fragment shape: "Partisan Office"`
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	withURL := WithURL(err, "https://example.test/ballot/1/2/")
	if !strings.HasSuffix(withURL.Error(), "(https://example.test/ballot/1/2/)") {
		t.Errorf("URL missing from %q", withURL.Error())
	}
	if err.URL != "" {
		t.Error("WithURL mutated the original error")
	}
}

func TestIsSchemaDrift(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"missing context", New("office", ErrMissingContext, "Governor"), true},
		{"wrapped shape", fmt.Errorf("parsing ballot: %w", New("term", ErrUnrecognizedShape, "x")), true},
		{"no match", WithURL(New("precinct", ErrNoMatch, ""), "u"), true},
		{"plain wrap", WithURL(ErrMissingElement, "u"), true},
		{"io failure", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSchemaDrift(tt.err); got != tt.want {
				t.Errorf("IsSchemaDrift() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithURL_Nil(t *testing.T) {
	if WithURL(nil, "u") != nil {
		t.Error("WithURL(nil) should be nil")
	}
}
