package election

import (
	"fmt"
	"regexp"

	"github.com/michiganelections/ballot-scraper/internal/logger"
	"github.com/michiganelections/ballot-scraper/internal/parseerr"
)

// maxDistrictLen rejects matches that ran across a whole sentence.
const maxDistrictLen = 100

// capitalizedRun is one or more capitalized words, each followed by spaces.
const capitalizedRun = `(?:[A-Z][\w.'-]*[ \t]+)+?`

// districtShapes builds the ordered district name shapes for category. Each
// is a run of capitalized words ending in the category, anchored either
// mid-sentence after a lower-case letter and a space or at the start of a line.
func districtShapes(category string) []*regexp.Regexp {
	name := `(` + capitalizedRun + regexp.QuoteMeta(category) + `)`
	return []*regexp.Regexp{
		regexp.MustCompile(`[a-z] ` + name),
		regexp.MustCompile(`(?m)^` + name),
	}
}

// ParseDistrictFromProposal finds the name of the district a proposal applies
// to, such as "Forest Hills Public Schools" for category "Public Schools".
// The first match shorter than maxDistrictLen wins.
func ParseDistrictFromProposal(category, proposal, sourceURL string) (string, error) {
	for _, shape := range districtShapes(category) {
		for _, m := range shape.FindAllStringSubmatch(proposal, -1) {
			logger.Debug("Matched district in proposal", logger.Fields{"category": category, "match": m[1]})
			if len(m[1]) < maxDistrictLen {
				return m[1], nil
			}
		}
	}

	return "", &parseerr.Error{
		Op:   "proposal district",
		Text: proposal,
		URL:  sourceURL,
		Err:  fmt.Errorf("%w for %s", parseerr.ErrNoMatch, category),
	}
}
