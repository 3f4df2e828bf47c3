package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/michiganelections/ballot-scraper/internal/config"
	"github.com/michiganelections/ballot-scraper/internal/logger"
	"github.com/michiganelections/ballot-scraper/internal/notifier"
	"github.com/michiganelections/ballot-scraper/internal/parseerr"
	"github.com/michiganelections/ballot-scraper/internal/scraper"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitSchemaDrift = 2
)

const notifierFlushTimeout = 10 * time.Second

var (
	flagConfig  string
	flagDataDir string
	flagBaseURL string
	flagFormat  string
	flagVerbose bool
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	notifier notifier.Notifier
	webhook  *notifier.WebhookNotifier
	scraper  *scraper.Scraper
	format   OutputFormat
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mi-ballots",
		Short: "Scrape Michigan ballots and voter registration from MVIC",
		Long: `A CLI tool to fetch and parse sample ballots published by the Michigan
Voter Information Center, and to look up voter registration status.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default $CONFIG_PATH or ./config.yaml)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for saved ballots (overrides config)")
	cmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "MVIC base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(parseCmd(a))
	cmd.AddCommand(fetchCmd(a))
	cmd.AddCommand(scrapeCmd(a))
	cmd.AddCommand(registrationCmd(a))
	cmd.AddCommand(checkTextCmd(a))
	cmd.AddCommand(districtCmd(a))

	return cmd
}

// setup loads configuration and builds the shared collaborators.
func (a *app) setup(cmd *cobra.Command) error {
	a.format = OutputFormat(strings.ToLower(flagFormat))
	if a.format != FormatText && a.format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := config.LoadFile(flagConfig)
	if err != nil {
		return err
	}
	if flagDataDir != "" {
		cfg.Storage.DataDir = flagDataDir
	}
	if flagBaseURL != "" {
		cfg.Scraper.BaseURL = flagBaseURL
	}
	a.cfg = cfg

	level := logger.ParseLevel(cfg.Log.Level)
	if flagVerbose {
		level = logger.LevelDebug
	}
	a.log = logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(a.log)

	sinks := notifier.Multi{notifier.NewLogNotifier(a.log, logger.DefaultMetrics())}
	if cfg.Telemetry.WebhookURL != "" {
		a.webhook = notifier.NewWebhookNotifier(cfg.Telemetry.WebhookURL,
			notifier.WithBuffer(cfg.Telemetry.Buffer),
			notifier.WithMetrics(logger.DefaultMetrics()),
		)
		sinks = append(sinks, a.webhook)
	}
	a.notifier = sinks
	a.scraper = scraper.New(cfg.Scraper)

	a.log.Debug("Configured", logger.Fields{
		"base_url": cfg.Scraper.BaseURL,
		"data_dir": cfg.Storage.DataDir,
		"webhook":  cfg.Telemetry.WebhookURL != "",
	})
	return nil
}

// close flushes queued webhook notifications.
func (a *app) close() {
	if a.webhook == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifierFlushTimeout)
	defer cancel()
	if err := a.webhook.Close(ctx); err != nil {
		a.log.Warn("Notifications not flushed", logger.Fields{"error": err.Error()})
	}
}

func (a *app) write(w io.Writer, result any) error {
	if err := WriteOutput(w, result, a.format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case parseerr.IsSchemaDrift(err):
		return ExitSchemaDrift
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, scraper.ErrServiceUnavailable) {
			fmt.Fprintln(os.Stderr, "MVIC is temporarily unavailable, please try again later.")
		}
	}
	os.Exit(exitCode(err))
}
