package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/michiganelections/ballot-scraper/internal/ballot"
	"github.com/michiganelections/ballot-scraper/internal/election"
	"github.com/michiganelections/ballot-scraper/internal/logger"
	"github.com/michiganelections/ballot-scraper/internal/parseerr"
	"github.com/michiganelections/ballot-scraper/internal/storage"
)

// parseDocument runs the election, precinct and ballot parsers over one page.
func (a *app) parseDocument(doc ballot.Document) (*storage.Record, error) {
	start := time.Now()

	info, err := election.ParseElection(doc.HTML)
	if err != nil {
		return nil, parseerr.WithURL(err, doc.SourceURL)
	}

	precinct, err := election.ParsePrecinct(doc.HTML, doc.SourceURL)
	if err != nil {
		return nil, err
	}

	b, count, err := doc.Parse(
		ballot.WithLogger(a.log),
		ballot.WithMetrics(logger.DefaultMetrics()),
		ballot.WithNotifier(a.notifier),
	)
	if err != nil {
		return nil, err
	}

	a.log.Info("Parsed ballot", logger.Fields{
		"election_id": doc.ElectionID,
		"precinct_id": doc.PrecinctID,
		"election":    info.Name,
		"precinct":    precinct.Jurisdiction,
		"items":       count,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &storage.Record{
		ElectionID: doc.ElectionID,
		PrecinctID: doc.PrecinctID,
		SourceURL:  doc.SourceURL,
		Election:   info,
		Precinct:   precinct,
		Ballot:     b,
		ItemCount:  count,
	}, nil
}

// fetchDocument downloads the ballot for one precinct of one election.
func (a *app) fetchDocument(ctx context.Context, electionID, precinctID int) (ballot.Document, error) {
	url, err := election.BallotURL(a.scraper.BaseURL(), electionID, precinctID)
	if err != nil {
		return ballot.Document{}, err
	}

	html, err := a.scraper.FetchBallot(ctx, url)
	if err != nil {
		return ballot.Document{}, err
	}

	return ballot.Document{
		ElectionID: electionID,
		PrecinctID: precinctID,
		SourceURL:  url,
		HTML:       html,
	}, nil
}

func (a *app) openStorage() (*storage.Storage, error) {
	store, err := storage.New(a.cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}
