package ballot

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Kind identifies which parse rule applies to a fragment.
type Kind int

const (
	KindSection Kind = iota
	KindDivision
	KindOffice
	KindTerm
	KindCandidate
	KindFinanceLink
	KindParty
	KindProposalTitle
	KindProposalText
)

// kindClasses maps each kind to the markup class that carries it.
var kindClasses = [...]string{
	KindSection:       "section",
	KindDivision:      "division",
	KindOffice:        "office",
	KindTerm:          "term",
	KindCandidate:     "candidate",
	KindFinanceLink:   "financeLink",
	KindParty:         "party",
	KindProposalTitle: "proposalTitle",
	KindProposalText:  "proposalText",
}

// String returns the markup class of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindClasses) {
		return "unknown"
	}
	return kindClasses[k]
}

var (
	// OfficeKinds are the fragments of the primary and general office regions.
	OfficeKinds = []Kind{KindSection, KindDivision, KindOffice, KindTerm, KindCandidate, KindFinanceLink, KindParty}

	// ProposalKinds are the fragments of the proposal region.
	ProposalKinds = []Kind{KindSection, KindDivision, KindProposalTitle, KindProposalText}
)

// Fragment is one classified unit of markup in presentation order.
type Fragment struct {
	Kind Kind
	Text string

	// Link is the first anchor href inside the fragment.
	Link string

	// Fallback is a proposal description recovered from sibling markup when a
	// title is not followed by a proposalText div. Best effort only.
	Fallback string
}

// Classify returns every div under region whose class is one of kinds, in
// document order. When a div carries several classes the first kind in kinds
// wins.
func Classify(region *goquery.Selection, kinds []Kind) []Fragment {
	var fragments []Fragment

	region.Find("div").Each(func(_ int, sel *goquery.Selection) {
		for _, kind := range kinds {
			if !sel.HasClass(kind.String()) {
				continue
			}

			f := Fragment{Kind: kind, Text: sel.Text()}
			if href, ok := sel.Find("a").First().Attr("href"); ok {
				f.Link = strings.TrimSpace(href)
			}
			if kind == KindProposalTitle && !sel.Next().HasClass(KindProposalText.String()) {
				f.Fallback = siblingText(sel)
			}

			fragments = append(fragments, f)
			return
		}
	})

	return fragments
}

// siblingText returns the first non-empty text following sel among its
// siblings, stopping at the next structural fragment.
func siblingText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	for n := sel.Get(0).NextSibling; n != nil; n = n.NextSibling {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				return t
			}
		case html.ElementNode:
			if isBoundary(n) {
				return ""
			}
			if t := strings.TrimSpace(nodeText(n)); t != "" {
				return t
			}
		}
	}
	return ""
}

func isBoundary(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(attr.Val) {
			switch class {
			case KindSection.String(), KindDivision.String(), KindProposalTitle.String():
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
