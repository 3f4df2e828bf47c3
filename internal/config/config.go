// Package config loads scraper settings from a YAML file and the environment.
package config

import (
	"time"
)

// DefaultBaseURL is the Michigan Voter Information Center.
const DefaultBaseURL = "https://mvic.sos.state.mi.us"

// Config is the root configuration.
type Config struct {
	Scraper      ScraperConfig      `yaml:"scraper"`
	Storage      StorageConfig      `yaml:"storage"`
	Log          LogConfig          `yaml:"log"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Registration RegistrationConfig `yaml:"registration"`
	Scrape       ScrapeConfig       `yaml:"scrape"`
}

// ScraperConfig holds MVIC HTTP client settings.
type ScraperConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"MVIC_BASE_URL"   env-default:"https://mvic.sos.state.mi.us"`
	UserAgent string        `yaml:"user_agent" env:"MVIC_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 6.1; WOW64; rv:40.0) Gecko/20100101 Firefox/40.1"`
	Timeout   time.Duration `yaml:"timeout"    env:"MVIC_TIMEOUT"    env-default:"30s"`
}

// StorageConfig holds ballot snapshot settings.
type StorageConfig struct {
	DataDir string `yaml:"data_dir" env:"BALLOT_DATA_DIR" env-default:"data"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// TelemetryConfig holds diagnostic notification settings. An empty
// WebhookURL sends diagnostics to the log only.
type TelemetryConfig struct {
	WebhookURL string `yaml:"webhook_url" env:"TELEMETRY_WEBHOOK_URL"`
	Buffer     int    `yaml:"buffer"      env:"TELEMETRY_BUFFER"      env-default:"64"`
}

// RegistrationConfig holds voter lookup settings.
type RegistrationConfig struct {
	RecheckDelay    time.Duration `yaml:"recheck_delay"    env:"REGISTRATION_RECHECK_DELAY"    env-default:"1s"`
	RecheckAttempts uint64        `yaml:"recheck_attempts" env:"REGISTRATION_RECHECK_ATTEMPTS" env-default:"1"`
}

// ScrapeConfig holds batch scrape settings.
type ScrapeConfig struct {
	Concurrency int `yaml:"concurrency" env:"SCRAPE_CONCURRENCY" env-default:"4"`
}
