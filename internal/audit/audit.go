// Package audit detects accidental duplicated phrasing in scraped text.
//
// MVIC proposal titles that span several lines sometimes repeat a phrase
// ("Shall the Shall the ..."), an artifact of the source markup. The check is
// diagnostic only: findings are reported to a notifier and never change the
// parsed value.
package audit

import (
	"strings"

	"github.com/michiganelections/ballot-scraper/internal/logger"
	"github.com/michiganelections/ballot-scraper/internal/notifier"
)

const punctuation = `!()-[]{};:'"\,<>./?@#$%^&*_~`

// Finding is a run of words immediately followed by its own repetition.
type Finding struct {
	Start int      `json:"start"` // index of the first repeated word
	Words []string `json:"words"`
}

// Span returns the duplicated words joined by spaces.
func (f Finding) Span() string {
	return strings.Join(f.Words, " ")
}

type recurrence struct {
	first, next int
}

// FindRepeated returns every consecutive duplicated run in text.
//
// Each word is paired with its next occurrence. Pairs whose indices both
// advance by one form a run; the run is a finding when the repetition begins
// before the run would end, i.e. the phrase is followed directly by itself.
func FindRepeated(text string) []Finding {
	words := strings.Fields(strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, text))

	var pairs []recurrence
	for i, w := range words {
		for j := i + 1; j < len(words); j++ {
			if words[j] == w {
				pairs = append(pairs, recurrence{first: i, next: j})
				break
			}
		}
	}

	var findings []Finding
	for start := 0; start < len(pairs); {
		end := start + 1
		for end < len(pairs) &&
			pairs[end].first == pairs[end-1].first+1 &&
			pairs[end].next == pairs[end-1].next+1 {
			end++
		}

		head := pairs[start]
		if head.next-head.first <= end-start {
			findings = append(findings, Finding{
				Start: head.first,
				Words: append([]string(nil), words[head.first:head.next]...),
			})
		}
		start = end
	}

	return findings
}

// Check runs FindRepeated and reports each finding to n.
func Check(text string, n notifier.Notifier) []Finding {
	findings := FindRepeated(text)
	for _, f := range findings {
		n.Notify(notifier.EventRepeatedText, logger.Fields{
			"text":  text,
			"span":  f.Span(),
			"start": f.Start,
		})
	}
	return findings
}
