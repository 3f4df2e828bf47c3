package registration

import (
	"context"
	"time"

	"github.com/michiganelections/ballot-scraper/internal/logger"
	"github.com/michiganelections/ballot-scraper/internal/notifier"
)

// Absentee date keys.
const (
	ApplicationReceived = "Application Received"
	BallotSent          = "Ballot Sent"
	BallotReceived      = "Ballot Received"
)

// Polling location keys, named after the labels that carry them.
const (
	PollingLocation  = "PollingLocation"
	PollAddress      = "PollAddress"
	PollCityStateZip = "PollCityStateZip"
)

// District keys filled from the fixed district labels.
const (
	County       = "County"
	Jurisdiction = "Jurisdiction"
	Ward         = "Ward"
	Precinct     = "Precinct"
)

var (
	absenteeKeys = []string{ApplicationReceived, BallotSent, BallotReceived}
	pollingKeys  = []string{PollingLocation, PollAddress, PollCityStateZip}
)

// Status is what the lookup page says about one voter.
type Status struct {
	// Registered is nil when the page never resolved either way.
	Registered    *bool                 `json:"registered"`
	Absentee      bool                  `json:"absentee"`
	AbsenteeDates map[string]*time.Time `json:"absentee_dates"`
	Districts     map[string]string     `json:"districts"`

	// PollingLocation is nil unless every polling key was found.
	PollingLocation map[string]string `json:"polling_location"`
	RecentlyMoved   bool              `json:"recently_moved"`
}

// Voter identifies the person to look up.
type Voter struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Birth     time.Time `json:"birth_date"`
	ZipCode   string    `json:"zip_code"`
}

// BirthMonth returns the English month name the lookup form expects.
func (v Voter) BirthMonth() string {
	return v.Birth.Month().String()
}

func (v Voter) BirthYear() int {
	return v.Birth.Year()
}

func (v Voter) String() string {
	return v.FirstName + " " + v.LastName + " (" + v.ZipCode + ")"
}

// Page is a rendered lookup page. Content may return newer markup on each
// call while the page is still rendering.
type Page interface {
	Content(ctx context.Context) (string, error)
}

// StaticPage is a Page whose content never changes.
type StaticPage string

func (p StaticPage) Content(context.Context) (string, error) {
	return string(p), nil
}

// Options controls parsing. The zero value is usable.
type Options struct {
	// RecheckDelay is the wait before re-reading an unresolved page.
	RecheckDelay time.Duration
	// RecheckAttempts is how many times an unresolved page is re-read.
	RecheckAttempts uint64

	Logger   *logger.Logger
	Notifier notifier.Notifier
}

// DefaultOptions re-reads an unresolved page once after one second.
func DefaultOptions() Options {
	return Options{RecheckDelay: time.Second, RecheckAttempts: 1}
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Default()
	}
	if o.Notifier == nil {
		o.Notifier = notifier.Nop{}
	}
	return o
}
