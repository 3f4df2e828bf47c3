package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/michiganelections/ballot-scraper/internal/audit"
	"github.com/michiganelections/ballot-scraper/internal/ballot"
	"github.com/michiganelections/ballot-scraper/internal/election"
	"github.com/michiganelections/ballot-scraper/internal/logger"
	"github.com/michiganelections/ballot-scraper/internal/parseerr"
	"github.com/michiganelections/ballot-scraper/internal/registration"
	"github.com/michiganelections/ballot-scraper/internal/scraper"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func parseCmd(a *app) *cobra.Command {
	var (
		electionID int
		precinctID int
		sourceURL  string
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file.html>",
		Short: "Parse a saved ballot page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading ballot page: %w", err)
			}

			rec, err := a.parseDocument(ballot.Document{
				ElectionID: electionID,
				PrecinctID: precinctID,
				SourceURL:  sourceURL,
				HTML:       string(data),
			})
			if err != nil {
				return err
			}

			if save {
				store, err := a.openStorage()
				if err != nil {
					return err
				}
				if err := store.SaveBallot(rec); err != nil {
					return fmt.Errorf("saving ballot: %w", err)
				}
			}

			return a.write(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().IntVar(&electionID, "election-id", 0, "MVIC election id of the page")
	cmd.Flags().IntVar(&precinctID, "precinct-id", 0, "MVIC precinct id of the page")
	cmd.Flags().StringVar(&sourceURL, "source-url", "", "URL the page was fetched from")
	cmd.Flags().BoolVar(&save, "save", false, "Save the parsed ballot (requires ids)")

	return cmd
}

func fetchCmd(a *app) *cobra.Command {
	var (
		electionID int
		precinctID int
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and parse one precinct's ballot",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.fetchDocument(cmd.Context(), electionID, precinctID)
			if err != nil {
				return err
			}

			rec, err := a.parseDocument(doc)
			if err != nil {
				return err
			}

			if save {
				store, err := a.openStorage()
				if err != nil {
					return err
				}
				if err := store.SaveBallot(rec); err != nil {
					return fmt.Errorf("saving ballot: %w", err)
				}
			}

			return a.write(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().IntVar(&electionID, "election-id", 0, "MVIC election id (required)")
	cmd.Flags().IntVar(&precinctID, "precinct-id", 0, "MVIC precinct id (required)")
	cmd.Flags().BoolVar(&save, "save", true, "Save the parsed ballot")
	cmd.MarkFlagRequired("election-id")
	cmd.MarkFlagRequired("precinct-id")

	return cmd
}

func scrapeCmd(a *app) *cobra.Command {
	var (
		electionID   int
		first, last  int
		concurrency  int
		skipExisting bool
		sortOrder    string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch, parse and save ballots for a range of precincts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if first <= 0 || last < first {
				return fmt.Errorf("invalid precinct range %d-%d", first, last)
			}
			order := SortOrder(strings.ToLower(sortOrder))
			if !order.valid() {
				return fmt.Errorf("invalid sort: %s (must be 'precinct', 'items' or 'jurisdiction')", sortOrder)
			}
			if concurrency <= 0 {
				concurrency = a.cfg.Scrape.Concurrency
			}

			store, err := a.openStorage()
			if err != nil {
				return err
			}

			result := &ScrapeResult{ElectionID: electionID, ScrapedAt: time.Now().UTC()}
			var (
				mu    sync.Mutex
				drift error
			)
			record := func(r PrecinctResult, err error) {
				mu.Lock()
				defer mu.Unlock()
				result.add(r)
				if drift == nil && parseerr.IsSchemaDrift(err) {
					drift = err
				}
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)

			for id := first; id <= last; id++ {
				precinctID := id
				g.Go(func() error {
					r := PrecinctResult{PrecinctID: precinctID}

					if skipExisting && store.HasBallot(electionID, precinctID) {
						r.Status = StatusSkipped
						record(r, nil)
						return nil
					}

					doc, err := a.fetchDocument(ctx, electionID, precinctID)
					if err != nil {
						if errors.Is(err, scraper.ErrServiceUnavailable) || ctx.Err() != nil {
							return err
						}
						r.Status, r.Error = StatusFailed, err.Error()
						record(r, err)
						return nil
					}

					rec, err := a.parseDocument(doc)
					switch {
					case errors.Is(err, parseerr.ErrMissingElement):
						// MVIC serves an empty page for precincts that do not exist.
						r.Status = StatusEmpty
						record(r, nil)
						return nil
					case err != nil:
						a.log.Error("Ballot parse failed", logger.Fields{"precinct_id": precinctID}, err)
						r.Status, r.Error = StatusFailed, err.Error()
						record(r, err)
						return nil
					}

					r.Jurisdiction = rec.Precinct.Jurisdiction
					r.ItemCount = rec.ItemCount
					if rec.ItemCount == 0 {
						r.Status = StatusEmpty
						record(r, nil)
						return nil
					}
					if err := store.SaveBallot(rec); err != nil {
						return fmt.Errorf("saving ballot: %w", err)
					}
					r.Status = StatusSaved
					record(r, nil)
					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			sortResults(result.Precincts, order)
			logger.SetGauge("scrape.precincts", float64(len(result.Precincts)))
			a.log.Debug("Scrape metrics", logger.Fields(logger.GetMetricsSnapshot()))

			if err := a.write(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if drift != nil {
				return fmt.Errorf("%d precincts failed, first: %w", result.Failed, drift)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&electionID, "election-id", 0, "MVIC election id (required)")
	cmd.Flags().IntVar(&first, "from", 1, "First precinct id")
	cmd.Flags().IntVar(&last, "to", 0, "Last precinct id (required)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel fetches (default from config)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip precincts already saved")
	cmd.Flags().StringVar(&sortOrder, "sort", string(SortByPrecinct), "Sort results: precinct, items or jurisdiction")
	cmd.MarkFlagRequired("election-id")
	cmd.MarkFlagRequired("to")

	return cmd
}

func registrationCmd(a *app) *cobra.Command {
	var (
		voter     registration.Voter
		birthDate string
	)

	cmd := &cobra.Command{
		Use:   "registration",
		Short: "Look up a voter's registration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			birth, err := time.Parse("2006-01", birthDate)
			if err != nil {
				return fmt.Errorf("invalid --birth %q (want YYYY-MM): %w", birthDate, err)
			}
			voter.Birth = birth

			opts := registration.Options{
				RecheckDelay:    a.cfg.Registration.RecheckDelay,
				RecheckAttempts: a.cfg.Registration.RecheckAttempts,
				Logger:          a.log,
				Notifier:        a.notifier,
			}
			status, err := registration.FetchStatus(cmd.Context(), a.scraper, voter, opts)
			if err != nil {
				return err
			}
			return a.write(cmd.OutOrStdout(), &status)
		},
	}

	cmd.Flags().StringVar(&voter.FirstName, "first", "", "First name (required)")
	cmd.Flags().StringVar(&voter.LastName, "last", "", "Last name (required)")
	cmd.Flags().StringVar(&birthDate, "birth", "", "Birth month as YYYY-MM (required)")
	cmd.Flags().StringVar(&voter.ZipCode, "zip", "", "ZIP code (required)")
	for _, name := range []string{"first", "last", "birth", "zip"} {
		cmd.MarkFlagRequired(name)
	}

	return cmd
}

func checkTextCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-text [text]",
		Short: "Report phrases that are immediately repeated",
		Long: `Report phrases that are immediately repeated, as happens in some MVIC
proposal titles. Reads standard input when no text is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				text = string(data)
			}

			findings := audit.Check(text, a.notifier)
			return a.write(cmd.OutOrStdout(), &TextCheckResult{Text: text, Findings: findings})
		},
	}
	return cmd
}

func districtCmd(a *app) *cobra.Command {
	var (
		category  string
		sourceURL string
	)

	cmd := &cobra.Command{
		Use:   "district <proposal text>",
		Short: "Find the district a local proposal applies to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := election.ParseDistrictFromProposal(category, args[0], sourceURL)
			if err != nil {
				return err
			}
			return a.write(cmd.OutOrStdout(), &DistrictResult{Category: category, District: name})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "District category, e.g. \"Public Schools\" (required)")
	cmd.Flags().StringVar(&sourceURL, "source-url", "", "Ballot URL, for error messages")
	cmd.MarkFlagRequired("category")

	return cmd
}
