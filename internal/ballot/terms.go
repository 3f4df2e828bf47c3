package ballot

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/michiganelections/ballot-scraper/internal/parseerr"
	"github.com/michiganelections/ballot-scraper/internal/text"
)

// termRule applies one recognized shape of "term" text to an office.
type termRule struct {
	name  string
	match func(string) bool
	apply func(*Office, string) error
}

var trailingNumber = regexp.MustCompile(`(\d+)\s*$`)

// termRules is evaluated top to bottom; the first match wins. The exact
// incumbency labels come first because "Incumbent Position" would otherwise
// be taken by the broader "Incumbent" rule.
var termRules = []termRule{
	{
		name: "incumbency",
		match: func(s string) bool {
			return s == "Incumbent Position" || s == "New Judgeship"
		},
		apply: func(o *Office, s string) error {
			o.Incumbency = s
			return nil
		},
	},
	{
		name:  "type",
		match: containsAny("Incumbent"),
		apply: func(o *Office, s string) error {
			o.Type = s
			return nil
		},
	},
	{
		name:  "term",
		match: containsAny("Term"),
		apply: func(o *Office, s string) error {
			o.Term = s
			return nil
		},
	},
	{
		name:  "seats",
		match: containsAny("Vote for"),
		apply: func(o *Office, s string) error {
			m := trailingNumber.FindStringSubmatch(s)
			if m == nil {
				return parseerr.New("term", parseerr.ErrUnrecognizedShape, s)
			}
			seats, err := strconv.Atoi(m[1])
			if err != nil {
				return parseerr.New("term", parseerr.ErrUnrecognizedShape, s)
			}
			o.Seats = seats
			return nil
		},
	},
	{
		name:  "district",
		match: isDistrictShape,
		apply: func(o *Office, s string) error {
			o.District = text.Titleize(s)
			return nil
		},
	},
}

// districtShapes are the known forms of a district label under an office.
var districtShapes = []func(string) bool{
	containsAny("WARD", "DISTRICT", "COURT", "COLLEGE", "Village of "),
	hasAnySuffix("SCHOOL", "SCHOOLS", "ISD", "ESA", "COMMUNITY", "LIBRARY"),
}

func isDistrictShape(s string) bool {
	for _, shape := range districtShapes {
		if shape(s) {
			return true
		}
	}
	return false
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

func hasAnySuffix(suffixes ...string) func(string) bool {
	return func(s string) bool {
		for _, suffix := range suffixes {
			if strings.HasSuffix(s, suffix) {
				return true
			}
		}
		return false
	}
}

// applyTerm dispatches term text through termRules.
func applyTerm(o *Office, s string) error {
	for _, rule := range termRules {
		if rule.match(s) {
			return rule.apply(o, s)
		}
	}
	return parseerr.New("term", parseerr.ErrUnrecognizedShape, s)
}
