package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/michiganelections/ballot-scraper/internal/audit"
	"github.com/michiganelections/ballot-scraper/internal/ballot"
	"github.com/michiganelections/ballot-scraper/internal/registration"
	"github.com/michiganelections/ballot-scraper/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Precinct outcomes of a scrape.
const (
	StatusSaved   = "saved"
	StatusSkipped = "skipped"
	StatusEmpty   = "empty"
	StatusFailed  = "failed"
)

// PrecinctResult is the outcome of scraping one precinct.
type PrecinctResult struct {
	PrecinctID   int    `json:"precinct_id"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	ItemCount    int    `json:"item_count"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// ScrapeResult summarizes a scrape run.
type ScrapeResult struct {
	ElectionID int              `json:"election_id"`
	ScrapedAt  time.Time        `json:"scraped_at"`
	Precincts  []PrecinctResult `json:"precincts"`
	Saved      int              `json:"saved"`
	Skipped    int              `json:"skipped"`
	Empty      int              `json:"empty"`
	Failed     int              `json:"failed"`
}

func (r *ScrapeResult) add(p PrecinctResult) {
	r.Precincts = append(r.Precincts, p)
	switch p.Status {
	case StatusSaved:
		r.Saved++
	case StatusSkipped:
		r.Skipped++
	case StatusEmpty:
		r.Empty++
	case StatusFailed:
		r.Failed++
	}
}

// TextCheckResult is the output of check-text.
type TextCheckResult struct {
	Text     string          `json:"text"`
	Findings []audit.Finding `json:"findings"`
}

// DistrictResult is the output of district.
type DistrictResult struct {
	Category string `json:"category"`
	District string `json:"district"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result any, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result any, verbose bool) error {
	switch r := result.(type) {
	case *storage.Record:
		writeRecord(w, r, verbose)
	case *ScrapeResult:
		writeScrape(w, r, verbose)
	case *registration.Status:
		writeStatus(w, r)
	case *TextCheckResult:
		writeTextCheck(w, r)
	case *DistrictResult:
		fmt.Fprintf(w, "%s: %s\n", r.Category, r.District)
	default:
		return fmt.Errorf("no text output for %T", result)
	}
	return nil
}

func writeRecord(w io.Writer, rec *storage.Record, verbose bool) {
	fmt.Fprintf(w, "%s (%s)\n", rec.Election.Name, rec.Election.Date.Format("2006-01-02"))

	place := []string{rec.Precinct.County + " County", rec.Precinct.Jurisdiction}
	if rec.Precinct.Ward != "" {
		place = append(place, "Ward "+rec.Precinct.Ward)
	}
	if rec.Precinct.Precinct != "" {
		place = append(place, "Precinct "+rec.Precinct.Precinct)
	}
	fmt.Fprintln(w, strings.Join(place, ", "))
	if verbose && rec.SourceURL != "" {
		fmt.Fprintf(w, "Source: %s\n", rec.SourceURL)
	}

	for _, section := range rec.Ballot.Sections {
		fmt.Fprintf(w, "\n%s\n", strings.ToUpper(section.Label))
		for _, division := range section.Divisions {
			fmt.Fprintf(w, "  %s\n", division.Label)
			for _, item := range division.Items {
				switch v := item.(type) {
				case *ballot.Office:
					writeOffice(w, v, verbose)
				case *ballot.Proposal:
					fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(v.Title, "\n", " / "))
					if verbose && v.Text != "" {
						fmt.Fprintf(w, "       %s\n", v.Text)
					}
				}
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d items\n", rec.ItemCount)
}

func writeOffice(w io.Writer, o *ballot.Office, verbose bool) {
	name := o.Name
	if o.District != "" {
		name += ", " + o.District
	}
	if o.Seats > 1 {
		name += fmt.Sprintf(" (vote for %d)", o.Seats)
	}
	fmt.Fprintf(w, "    %s\n", name)

	if verbose {
		for _, detail := range []string{o.Term, o.Type, o.Incumbency} {
			if detail != "" {
				fmt.Fprintf(w, "       %s\n", detail)
			}
		}
	}

	if len(o.Candidates) == 0 {
		fmt.Fprintln(w, "      (no candidates)")
		return
	}
	for _, c := range o.Candidates {
		line := c.Name
		if c.Party != "" {
			line += " (" + c.Party + ")"
		}
		fmt.Fprintf(w, "      - %s\n", line)
		if verbose && c.FinanceLink != "" {
			fmt.Fprintf(w, "        Finance: %s\n", c.FinanceLink)
		}
	}
}

func writeScrape(w io.Writer, r *ScrapeResult, verbose bool) {
	for _, p := range r.Precincts {
		if p.Status == StatusSkipped && !verbose {
			continue
		}
		line := fmt.Sprintf("%6d  %-8s", p.PrecinctID, p.Status)
		if p.Jurisdiction != "" {
			line += fmt.Sprintf("  %s (%d items)", p.Jurisdiction, p.ItemCount)
		}
		if p.Error != "" {
			line += "  " + p.Error
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\nElection %d: %d saved, %d skipped, %d empty, %d failed\n",
		r.ElectionID, r.Saved, r.Skipped, r.Empty, r.Failed)
}

func writeStatus(w io.Writer, s *registration.Status) {
	switch {
	case s.Registered == nil:
		fmt.Fprintln(w, "Registered: unknown")
	case *s.Registered:
		fmt.Fprintln(w, "Registered: yes")
	default:
		fmt.Fprintln(w, "Registered: no")
	}
	if s.RecentlyMoved {
		fmt.Fprintln(w, "Recently moved: yes")
	}
	fmt.Fprintf(w, "Permanent absentee: %t\n", s.Absentee)

	for _, key := range []string{registration.ApplicationReceived, registration.BallotSent, registration.BallotReceived} {
		if d := s.AbsenteeDates[key]; d != nil {
			fmt.Fprintf(w, "  %s: %s\n", key, d.Format("2006-01-02"))
		}
	}

	if len(s.Districts) > 0 {
		fmt.Fprintln(w, "Districts:")
		keys := make([]string, 0, len(s.Districts))
		for k := range s.Districts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, s.Districts[k])
		}
	}

	if s.PollingLocation != nil {
		fmt.Fprintf(w, "Polling location: %s, %s, %s\n",
			s.PollingLocation[registration.PollingLocation],
			s.PollingLocation[registration.PollAddress],
			s.PollingLocation[registration.PollCityStateZip])
	}
}

func writeTextCheck(w io.Writer, r *TextCheckResult) {
	if len(r.Findings) == 0 {
		fmt.Fprintln(w, "No repeated text found.")
		return
	}
	for _, f := range r.Findings {
		fmt.Fprintf(w, "Repeated at word %d: %q\n", f.Start, f.Span())
	}
}
