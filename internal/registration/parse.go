package registration

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/michiganelections/ballot-scraper/internal/logger"
	"github.com/michiganelections/ballot-scraper/internal/notifier"
	"github.com/michiganelections/ballot-scraper/internal/text"
	"golang.org/x/net/html"
)

const (
	registeredPhrase   = "Yes! You Are Registered"
	unregisteredPhrase = "No voter record matched your search criteria"
	movedPhrase        = "you have recently moved"
	absenteePhrase     = "You are on the permanent absentee voter list"

	absenteeContainer = "#lblAbsenteeVoterInformation"
	absenteePadding   = 4
	absenteeLayout    = "1/2/2006"
)

var districtLabels = []struct {
	key       string
	selector  string
	normalize func(string) string
}{
	{County, "#lblCountyName", text.Titleize},
	{Jurisdiction, "#lblJurisdName", text.NormalizeJurisdiction},
	{Ward, "#lblWardNumber", strings.TrimSpace},
	{Precinct, "#lblPrecinctNumber", strings.TrimSpace},
}

// labeledDistrict matches "Category: ... >Name<" pairs in the district table.
var labeledDistrict = regexp.MustCompile(`>([\w ]+):[\s\S]*?">([\w ]*)<`)

var errUnresolved = errors.New("registration status not on page")

// Parse reads a Status from page. Only a failure to read the page is an error.
func Parse(ctx context.Context, page Page, opts Options) (Status, error) {
	opts = opts.withDefaults()

	content, registered, err := resolve(ctx, page, opts)
	if err != nil {
		return Status{}, err
	}
	if registered == nil {
		opts.Logger.Warn("Unable to determine registration status", nil)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return Status{}, fmt.Errorf("parsing HTML: %w", err)
	}

	status := Status{
		Registered:      registered,
		Absentee:        strings.Contains(content, absenteePhrase),
		AbsenteeDates:   absenteeDates(doc, opts.Logger),
		Districts:       districts(doc, content),
		PollingLocation: pollingLocation(content, opts.Logger),
		RecentlyMoved:   strings.Contains(content, movedPhrase),
	}

	if status.RecentlyMoved {
		opts.Logger.Warn("Handling recently moved voter", nil)
		opts.Notifier.Notify(notifier.EventRecentlyMoved, logger.Fields{
			"registered": registered != nil && *registered,
			"districts":  status.Districts,
		})
	}

	return status, nil
}

// resolve reads page until one of the registration phrases shows up or the
// re-check budget is spent.
func resolve(ctx context.Context, page Page, opts Options) (string, *bool, error) {
	var (
		content    string
		registered *bool
	)

	check := func() error {
		c, err := page.Content(ctx)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("reading page: %w", err))
		}
		content = c
		switch {
		case strings.Contains(c, registeredPhrase):
			registered = boolPtr(true)
		case strings.Contains(c, unregisteredPhrase):
			registered = boolPtr(false)
		default:
			return errUnresolved
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.RecheckDelay), opts.RecheckAttempts),
		ctx,
	)
	err := backoff.Retry(check, policy)
	if err != nil && !errors.Is(err, errUnresolved) {
		return "", nil, err
	}
	return content, registered, nil
}

func absenteeDates(doc *goquery.Document, log *logger.Logger) map[string]*time.Time {
	dates := make(map[string]*time.Time, len(absenteeKeys))
	for _, key := range absenteeKeys {
		dates[key] = nil
	}

	container := doc.Find(absenteeContainer)
	if container.Length() == 0 {
		log.Warn("No absentee information", logger.Fields{"selector": absenteeContainer})
		return dates
	}

	nodes := textNodes(container.Get(0))
	if len(nodes) < absenteePadding {
		return dates
	}
	nodes = nodes[absenteePadding:]

	for i := 0; i+1 < len(nodes); i += 2 {
		key := strings.TrimSuffix(nodes[i], ":")
		if _, ok := dates[key]; !ok {
			continue
		}
		date, err := time.Parse(absenteeLayout, nodes[i+1])
		if err != nil {
			log.Warn("Unreadable absentee date", logger.Fields{"key": key, "value": nodes[i+1]})
			continue
		}
		dates[key] = &date
	}
	return dates
}

// textNodes returns the trimmed, non-empty text nodes under n in order.
func textNodes(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out = append(out, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func districts(doc *goquery.Document, content string) map[string]string {
	out := make(map[string]string)

	for _, m := range labeledDistrict.FindAllStringSubmatch(content, -1) {
		category := text.CleanDistrictCategory(m[1])
		if category == "" || category == "Phone" {
			continue
		}
		out[category] = text.CleanDistrictName(m[2])
	}

	for _, label := range districtLabels {
		sel := doc.Find(label.selector)
		if sel.Length() == 0 {
			continue
		}
		if v := label.normalize(sel.First().Text()); v != "" {
			out[label.key] = v
		}
	}
	return out
}

// pollingLocation slices each field out of the raw markup. The value starts
// two characters past the label id (skipping `">`) and runs to the next tag.
func pollingLocation(content string, log *logger.Logger) map[string]string {
	location := make(map[string]string, len(pollingKeys))
	for _, key := range pollingKeys {
		marker := "lbl" + key
		i := strings.Index(content, marker)
		if i < 0 {
			log.Warn("Unable to read polling location", logger.Fields{"missing": key})
			return nil
		}
		start := i + len(marker) + 2
		if start > len(content) {
			log.Warn("Unable to read polling location", logger.Fields{"missing": key})
			return nil
		}
		end := strings.IndexByte(content[start:], '<')
		if end < 0 {
			log.Warn("Unable to read polling location", logger.Fields{"missing": key})
			return nil
		}
		location[key] = strings.TrimSpace(content[start : start+end])
	}
	return location
}

func boolPtr(b bool) *bool {
	return &b
}
