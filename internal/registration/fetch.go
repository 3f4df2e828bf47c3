package registration

import (
	"context"
	"fmt"
)

// Fetcher submits the voter lookup form and returns the response markup.
type Fetcher interface {
	FetchRegistrationPage(ctx context.Context, voter Voter) (string, error)
}

// FetchStatus looks voter up with f and parses the result. When the first
// response is unresolved the lookup is submitted again on each re-check.
func FetchStatus(ctx context.Context, f Fetcher, voter Voter, opts Options) (Status, error) {
	page := &lookupPage{fetcher: f, voter: voter}
	status, err := Parse(ctx, page, opts)
	if err != nil {
		return Status{}, fmt.Errorf("registration lookup for %s: %w", voter, err)
	}
	return status, nil
}

// lookupPage re-submits the lookup every time it is read.
type lookupPage struct {
	fetcher Fetcher
	voter   Voter
}

func (p *lookupPage) Content(ctx context.Context) (string, error) {
	return p.fetcher.FetchRegistrationPage(ctx, p.voter)
}
