// Package parseerr defines the structural failures raised when MVIC markup no
// longer matches what the parsers expect.
//
// These errors abort the parse of a single document. They signal that the
// scraped schema has drifted and should be triaged by a human, so callers can
// alert on them separately from transport or I/O failures with IsSchemaDrift.
package parseerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingContext means a fragment arrived without the section,
	// division, office, candidate or proposal it depends on.
	ErrMissingContext = errors.New("missing parent context")

	// ErrUnrecognizedShape means fragment text matched none of the known shapes.
	ErrUnrecognizedShape = errors.New("unrecognized fragment shape")

	// ErrDuplicateSection means a section label repeated where duplicates are forbidden.
	ErrDuplicateSection = errors.New("duplicate section")

	// ErrNoMatch means every pattern in an ordered alternative list failed.
	ErrNoMatch = errors.New("no pattern matched")

	// ErrMissingElement means a fixed anchor element is absent from the page.
	ErrMissingElement = errors.New("missing anchor element")
)

// Error describes which assumption about the source markup broke.
type Error struct {
	Op   string // parser step, e.g. "term" or "precinct"
	Text string // offending fragment text, if any
	URL  string // source URL, if known
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Text != "" {
		fmt.Fprintf(&b, ": %q", e.Text)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " (%s)", e.URL)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an *Error for op wrapping sentinel.
func New(op string, sentinel error, text string) *Error {
	return &Error{Op: op, Text: text, Err: sentinel}
}

// WithURL attaches the source URL to err. A bare *Error is copied with its
// URL set; anything else is wrapped.
func WithURL(err error, url string) error {
	if err == nil || url == "" {
		return err
	}
	if pe, ok := err.(*Error); ok {
		cp := *pe
		cp.URL = url
		return &cp
	}
	return fmt.Errorf("%w (%s)", err, url)
}

// IsSchemaDrift reports whether err is one of the structural failure kinds.
func IsSchemaDrift(err error) bool {
	return errors.Is(err, ErrMissingContext) ||
		errors.Is(err, ErrUnrecognizedShape) ||
		errors.Is(err, ErrDuplicateSection) ||
		errors.Is(err, ErrNoMatch) ||
		errors.Is(err, ErrMissingElement)
}
