package text

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// connectors stay lower case unless they start the text.
var connectors = map[string]string{
	"Of":  "of",
	"To":  "to",
	"And": "and",
	"In":  "in",
	"By":  "by",
	"At":  "at",
}

// casingFixes repairs artifacts of word-level capitalization.
var casingFixes = strings.NewReplacer(
	"U.s.", "U.S.",
	"Ii.", "II.",
	"(d", "(D",
	"(l", "(L",
	"(r", "(R",
)

// jurisdictionKinds is checked in order.
var jurisdictionKinds = []string{"City", "Township", "Village"}

// Titleize capitalizes each whitespace-separated word, keeps connector words
// lower case after the first word and repairs known casing artifacts.
func Titleize(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		w = capitalize(w)
		if i > 0 {
			if lower, ok := connectors[w]; ok {
				w = lower
			}
		}
		words[i] = w
	}
	return casingFixes.Replace(strings.Join(words, " "))
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(w string) string {
	if w == "" {
		return w
	}
	_, size := utf8.DecodeRuneInString(w)
	upper := cases.Upper(language.English)
	lower := cases.Lower(language.English)
	return upper.String(w[:size]) + lower.String(w[size:])
}

// NormalizeJurisdiction title-cases a jurisdiction and rewrites suffix forms
// such as "Springfield Charter Township" into "Township of Springfield".
// Names that already lead with their kind only lose a "Charter" qualifier.
func NormalizeJurisdiction(name string) string {
	name = Titleize(name)

	stripped := strings.TrimPrefix(name, "Charter ")
	for _, kind := range jurisdictionKinds {
		if strings.HasPrefix(stripped, kind) {
			return stripped
		}
	}

	for _, kind := range jurisdictionKinds {
		if base, ok := strings.CutSuffix(name, " "+kind); ok {
			base = strings.TrimSuffix(base, " Charter")
			return kind + " of " + base
		}
	}

	return name
}

// CleanDistrictCategory removes a "Judge of " prefix and any trailing
// "District" words: "Circuit Court District District" becomes "Circuit Court".
func CleanDistrictCategory(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "Judge of ", ""))
	for len(words) > 0 && words[len(words)-1] == "District" {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// CleanDistrictName collapses a doubled "District District" in one pass.
func CleanDistrictName(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "District District", "District"))
}

// NormalizeCandidate parses and capitalizes a candidate label. A label with a
// line break is a ticket: both names are normalized and joined with " & ".
func NormalizeCandidate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "\n") {
		return normalizePerson(s)
	}

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) != 2 {
		return "", &NameError{Input: s, Reason: "ticket must have exactly two names"}
	}

	names := make([]string, len(lines))
	for i, line := range lines {
		name, err := normalizePerson(line)
		if err != nil {
			return "", err
		}
		names[i] = name
	}
	return strings.Join(names, " & "), nil
}

func normalizePerson(s string) (string, error) {
	name, err := ParseName(s)
	if err != nil {
		return "", err
	}
	name.Capitalize()
	return name.String(), nil
}
