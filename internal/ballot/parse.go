package ballot

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/michiganelections/ballot-scraper/internal/logger"
	"github.com/michiganelections/ballot-scraper/internal/parseerr"
)

// RootID is the id of the element wrapping the whole ballot preview.
const RootID = "PreviewMvicBallot"

// Document is a fetched ballot page and the identifiers used to fetch it.
type Document struct {
	ElectionID int
	PrecinctID int
	SourceURL  string
	HTML       string
}

// ParseBallot parses the primary, general and proposal regions of a ballot
// page into one Ballot. The returned count is the number of informative
// fragments, a coarse completeness signal. Regions missing from the page are
// skipped.
func ParseBallot(page string, opts ...Option) (*Ballot, int, error) {
	o := newOptions(opts)
	start := time.Now()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, 0, fmt.Errorf("parsing HTML: %w", err)
	}

	root := doc.Find("#" + RootID)
	if root.Length() == 0 {
		return nil, 0, parseerr.New("ballot", parseerr.ErrMissingElement, "#"+RootID)
	}

	ballot := &Ballot{}
	total := 0
	for _, region := range Regions {
		container := root.Find("#" + region.ContainerID)
		if container.Length() == 0 {
			continue
		}

		b := NewBuilder(ballot, region, opts...)
		if err := b.Build(Classify(container.First(), region.Kinds)); err != nil {
			return nil, 0, fmt.Errorf("%s region: %w", region.Name, err)
		}

		total += b.Count()
		if o.metrics != nil {
			o.metrics.AddCounter("ballot.fragments."+region.Name, int64(b.Count()))
		}
	}

	if o.metrics != nil {
		o.metrics.IncrCounter("ballot.parsed")
		o.metrics.RecordTiming("ballot.parse", time.Since(start))
	}
	o.log.Debug("Parsed ballot", logger.Fields{
		"sections":  len(ballot.Sections),
		"offices":   len(ballot.Offices()),
		"proposals": len(ballot.Proposals()),
		"count":     total,
	})

	return ballot, total, nil
}

// Parse parses d and attaches its source URL to structural errors.
func (d Document) Parse(opts ...Option) (*Ballot, int, error) {
	ballot, count, err := ParseBallot(d.HTML, opts...)
	if err != nil {
		return nil, 0, parseerr.WithURL(err, d.SourceURL)
	}
	return ballot, count, nil
}
