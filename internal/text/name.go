package text

import (
	"fmt"
	"regexp"
	"strings"
)

// Name is a person name split into its parts.
type Name struct {
	Title    string
	First    string
	Middle   string
	Last     string
	Suffix   string
	Nickname string
}

// NameError reports a candidate label that cannot be read as a person name.
type NameError struct {
	Input  string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("parsing name %q: %s", e.Input, e.Reason)
}

var (
	nicknamePattern = regexp.MustCompile(`\s*(?:"([^"]+)"|\(([^)]+)\))\s*`)

	nameTitles = map[string]bool{
		"mr": true, "mrs": true, "ms": true, "miss": true, "dr": true,
		"hon": true, "rev": true, "judge": true, "justice": true,
		"sen": true, "rep": true, "gov": true, "prof": true, "sir": true,
	}
	nameSuffixes = map[string]bool{
		"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "v": true,
		"phd": true, "md": true, "esq": true, "cpa": true, "dds": true,
	}
	romanSuffixes = map[string]bool{"ii": true, "iii": true, "iv": true, "v": true}
	lastPrefixes  = map[string]bool{
		"van": true, "von": true, "de": true, "la": true, "der": true,
		"del": true, "di": true, "du": true, "da": true, "le": true, "st": true,
	}
)

func bareWord(w string) string {
	return strings.ToLower(strings.Trim(w, ".,"))
}

// ParseName splits a name written either as "First Middle Last Suffix" or as
// "Last, First Middle". Titles, generational suffixes and a quoted or
// parenthesized nickname are recognized.
func ParseName(s string) (Name, error) {
	input := s
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return Name{}, &NameError{Input: input, Reason: "empty name"}
	}

	var n Name
	if m := nicknamePattern.FindStringSubmatch(s); m != nil {
		n.Nickname = m[1] + m[2]
		s = strings.TrimSpace(nicknamePattern.ReplaceAllString(s, " "))
	}

	var tokens []string
	parts := strings.Split(s, ",")
	switch {
	case len(parts) == 1:
		tokens = strings.Fields(s)
	case allSuffixes(parts[1:]):
		// "First Last, Jr."
		tokens = strings.Fields(parts[0])
		for _, p := range parts[1:] {
			tokens = append(tokens, strings.Fields(p)...)
		}
	default:
		// "Last, First Middle[ Suffix][, Suffix]"
		given := strings.Fields(parts[1])
		var trailing []string
		for len(given) > 1 && nameSuffixes[bareWord(given[len(given)-1])] {
			trailing = append([]string{given[len(given)-1]}, trailing...)
			given = given[:len(given)-1]
		}
		tokens = append(given, strings.Fields(parts[0])...)
		tokens = append(tokens, trailing...)
		for _, p := range parts[2:] {
			tokens = append(tokens, strings.Fields(p)...)
		}
	}

	var titles []string
	for len(tokens) > 1 && nameTitles[bareWord(tokens[0])] {
		titles = append(titles, tokens[0])
		tokens = tokens[1:]
	}
	var suffixes []string
	for len(tokens) > 1 && nameSuffixes[bareWord(tokens[len(tokens)-1])] {
		suffixes = append([]string{tokens[len(tokens)-1]}, suffixes...)
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 || (len(tokens) == 1 && strings.Trim(tokens[0], ".,") == "") {
		return Name{}, &NameError{Input: input, Reason: "no name parts"}
	}

	n.Title = strings.Join(titles, " ")
	n.Suffix = strings.Join(suffixes, " ")
	n.First = tokens[0]
	if len(tokens) == 1 {
		return n, nil
	}

	lastStart := len(tokens) - 1
	for lastStart > 1 && lastPrefixes[bareWord(tokens[lastStart-1])] {
		lastStart--
	}
	n.Middle = strings.Join(tokens[1:lastStart], " ")
	n.Last = strings.Join(tokens[lastStart:], " ")
	return n, nil
}

func allSuffixes(parts []string) bool {
	for _, p := range parts {
		words := strings.Fields(p)
		if len(words) == 0 {
			return false
		}
		for _, w := range words {
			if !nameSuffixes[bareWord(w)] {
				return false
			}
		}
	}
	return true
}

// String formats the name as "Title First Middle Last Suffix (Nickname)",
// skipping empty parts.
func (n Name) String() string {
	var parts []string
	for _, p := range []string{n.Title, n.First, n.Middle, n.Last, n.Suffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if n.Nickname != "" {
		parts = append(parts, "("+n.Nickname+")")
	}
	return strings.Join(parts, " ")
}

// Capitalize fixes the casing of a name written entirely in upper or lower
// case. Mixed-case input is assumed to be intentional and left alone.
func (n *Name) Capitalize() {
	full := n.String()
	if full != strings.ToUpper(full) && full != strings.ToLower(full) {
		return
	}

	n.Title = capitalizeName(n.Title, false)
	n.First = capitalizeName(n.First, false)
	n.Middle = capitalizeName(n.Middle, true)
	n.Last = capitalizeName(n.Last, true)
	n.Nickname = capitalizeName(n.Nickname, false)

	suffixes := strings.Fields(n.Suffix)
	for i, s := range suffixes {
		if romanSuffixes[bareWord(s)] {
			suffixes[i] = strings.ToUpper(s)
		} else {
			suffixes[i] = capitalize(s)
		}
	}
	n.Suffix = strings.Join(suffixes, " ")
}

func capitalizeName(s string, allowParticles bool) string {
	words := strings.Fields(s)
	for i, w := range words {
		lw := strings.ToLower(w)
		if allowParticles && i < len(words)-1 && lastPrefixes[bareWord(lw)] {
			words[i] = lw
			continue
		}
		pieces := strings.Split(lw, "-")
		for j, p := range pieces {
			pieces[j] = capitalizeNamePiece(p)
		}
		words[i] = strings.Join(pieces, "-")
	}
	return strings.Join(words, " ")
}

func capitalizeNamePiece(p string) string {
	switch {
	case len(p) > 3 && strings.HasPrefix(p, "mc"):
		return "Mc" + capitalize(p[2:])
	case len(p) > 2 && (strings.HasPrefix(p, "o'") || strings.HasPrefix(p, "d'")):
		return strings.ToUpper(p[:1]) + "'" + capitalize(p[2:])
	default:
		return capitalize(p)
	}
}
