package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var validLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate checks business rules that struct tags cannot express.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Scraper.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("scraper.base_url must be an absolute URL (got %q)", c.Scraper.BaseURL)
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper.timeout must be > 0 (got %s)", c.Scraper.Timeout)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required")
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level must be one of %v (got %q)", validLevels, c.Log.Level)
	}
	if c.Telemetry.WebhookURL != "" {
		if u, err := url.Parse(c.Telemetry.WebhookURL); err != nil || u.Scheme == "" {
			return fmt.Errorf("telemetry.webhook_url must be an absolute URL (got %q)", c.Telemetry.WebhookURL)
		}
	}
	if c.Telemetry.Buffer < 1 {
		return fmt.Errorf("telemetry.buffer must be >= 1 (got %d)", c.Telemetry.Buffer)
	}
	if c.Registration.RecheckDelay < 0 {
		return fmt.Errorf("registration.recheck_delay must be >= 0 (got %s)", c.Registration.RecheckDelay)
	}
	if c.Scrape.Concurrency < 1 {
		return fmt.Errorf("scrape.concurrency must be >= 1 (got %d)", c.Scrape.Concurrency)
	}
	return nil
}
