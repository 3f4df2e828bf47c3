package election

import (
	"regexp"

	"github.com/michiganelections/ballot-scraper/internal/parseerr"
	"github.com/michiganelections/ballot-scraper/internal/text"
)

// Precinct locates a ballot within the state. Ward and Precinct are empty
// when the header does not carry them.
type Precinct struct {
	County       string `json:"county"`
	Jurisdiction string `json:"jurisdiction"`
	Ward         string `json:"ward"`
	Precinct     string `json:"precinct"`
}

var countyPattern = regexp.MustCompile(`(?i)(?P<county>[^>]+) County, Michigan`)

// precinctPatterns are tried in order; the first match wins. The double space
// before "Precinct" is how MVIC prints precincts without a ward.
var precinctPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?P<jurisdiction>[^>]+), Ward (?P<ward>\d+) Precinct (?P<precinct>\d+)`),
	regexp.MustCompile(`(?P<jurisdiction>[^>]+),  Precinct (?P<precinct>\d+[A-Z]?)`),
	regexp.MustCompile(`(?P<jurisdiction>[^>]+), Ward (?P<ward>\d+)`),
}

// ParsePrecinct extracts the county, jurisdiction, ward and precinct from the
// raw ballot page. sourceURL is only used in errors.
func ParsePrecinct(page, sourceURL string) (Precinct, error) {
	m := countyPattern.FindStringSubmatch(page)
	if m == nil {
		return Precinct{}, &parseerr.Error{Op: "county", URL: sourceURL, Err: parseerr.ErrNoMatch}
	}
	p := Precinct{County: text.Titleize(m[countyPattern.SubexpIndex("county")])}

	for _, pattern := range precinctPatterns {
		m := pattern.FindStringSubmatch(page)
		if m == nil {
			continue
		}
		p.Jurisdiction = text.NormalizeJurisdiction(group(pattern, m, "jurisdiction"))
		p.Ward = group(pattern, m, "ward")
		p.Precinct = group(pattern, m, "precinct")
		return p, nil
	}

	return Precinct{}, &parseerr.Error{Op: "precinct", URL: sourceURL, Err: parseerr.ErrNoMatch}
}

// group returns the named submatch, or "" when pattern has no such group.
func group(pattern *regexp.Regexp, m []string, name string) string {
	if i := pattern.SubexpIndex(name); i >= 0 {
		return m[i]
	}
	return ""
}
