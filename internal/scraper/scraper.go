package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/michiganelections/ballot-scraper/internal/config"
	"github.com/michiganelections/ballot-scraper/internal/logger"
	"github.com/michiganelections/ballot-scraper/internal/registration"
)

const (
	SearchByNamePath = "/Voter/SearchByName"
	Timeout          = 30 * time.Second
)

// ErrServiceUnavailable means MVIC is down or refused the request.
var ErrServiceUnavailable = errors.New("michigan voter information center is temporarily unavailable")

// movedLink is the continuation link shown to recently moved voters.
var movedLink = regexp.MustCompile(`<a href='(registeredvoter\.aspx\?vid=\d+)' class=VITlinks>Begin`)

// Scraper fetches pages from MVIC.
type Scraper struct {
	client    *http.Client
	baseURL   string
	userAgent string
	log       *logger.Logger
}

// New creates a Scraper from cfg. Zero fields fall back to the MVIC defaults.
func New(cfg config.ScraperConfig) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = Timeout
	}
	return &Scraper{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		log:       logger.Default(),
	}
}

// BaseURL returns the site root requests are sent to.
func (s *Scraper) BaseURL() string {
	return s.baseURL
}

// FetchBallot fetches a ballot preview page and returns its trimmed markup.
func (s *Scraper) FetchBallot(ctx context.Context, ballotURL string) (string, error) {
	s.log.Info("Fetching ballot", logger.Fields{"url": ballotURL})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ballotURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	body, err := s.do(req)
	if err != nil {
		return "", fmt.Errorf("fetching ballot %s: %w", ballotURL, err)
	}
	return strings.TrimSpace(body), nil
}

// FetchRegistrationPage submits the voter lookup form. A recently moved voter
// is sent to a continuation page, which is followed when present.
func (s *Scraper) FetchRegistrationPage(ctx context.Context, voter registration.Voter) (string, error) {
	form := url.Values{
		"FirstName":      {voter.FirstName},
		"LastName":       {voter.LastName},
		"NameBirthMonth": {voter.BirthMonth()},
		"NameBirthYear":  {strconv.Itoa(voter.BirthYear())},
		"ZipCode":        {voter.ZipCode},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+SearchByNamePath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := s.do(req)
	if err != nil {
		return "", fmt.Errorf("registration lookup: %w", err)
	}

	if !strings.Contains(body, "you have recently moved") {
		return body, nil
	}

	m := movedLink.FindStringSubmatch(body)
	if m == nil {
		s.log.Warn("Recently moved voter without continuation link", logger.Fields{"voter": voter.String()})
		return body, nil
	}

	next, err := s.resolve(m[1])
	if err != nil {
		return "", fmt.Errorf("building continuation URL: %w", err)
	}
	s.log.Warn("Following recently moved voter", logger.Fields{"voter": voter.String(), "url": next})

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	body, err = s.do(req)
	if err != nil {
		return "", fmt.Errorf("registration continuation: %w", err)
	}
	return body, nil
}

// resolve turns a site-relative link into an absolute URL.
func (s *Scraper) resolve(ref string) (string, error) {
	base, err := url.Parse(s.baseURL + "/")
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(r).String(), nil
}

// do sends req and returns the body after the availability check.
func (s *Scraper) do(req *http.Request) (string, error) {
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	logger.RecordTiming("scraper.request", time.Since(start))
	logger.IncrCounter("scraper.requests")
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	body := string(data)

	if err := s.checkAvailability(resp.StatusCode, body); err != nil {
		logger.IncrCounter("scraper.unavailable")
		return "", err
	}
	return body, nil
}

// checkAvailability rejects error statuses and pages showing the outage banner.
func (s *Scraper) checkAvailability(status int, body string) error {
	if status >= http.StatusBadRequest {
		s.log.Error("MVIC error status", logger.Fields{"status": status}, nil)
		return fmt.Errorf("%w: unexpected status code: %d", ErrServiceUnavailable, status)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}
	banner := doc.Find("#pollingLocationError")
	if banner.Length() == 0 {
		return nil
	}
	if style, _ := banner.Attr("style"); style != "display:none;" {
		return fmt.Errorf("%w: outage banner shown", ErrServiceUnavailable)
	}
	return nil
}
