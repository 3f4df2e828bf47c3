package ballot

import (
	"encoding/json"
	"fmt"
)

// Ballot is the nested section → division → item structure of one ballot.
// Sections and divisions keep their presentation order.
type Ballot struct {
	Sections []*Section `json:"sections"`
}

// Section looks up a section by its lowercase label.
func (b *Ballot) Section(label string) *Section {
	for _, s := range b.Sections {
		if s.Label == label {
			return s
		}
	}
	return nil
}

func (b *Ballot) addSection(label string) *Section {
	s := &Section{Label: label}
	b.Sections = append(b.Sections, s)
	return s
}

// Offices returns every office on the ballot in presentation order.
func (b *Ballot) Offices() []*Office {
	var out []*Office
	for _, s := range b.Sections {
		for _, d := range s.Divisions {
			for _, item := range d.Items {
				if o, ok := item.(*Office); ok {
					out = append(out, o)
				}
			}
		}
	}
	return out
}

// Proposals returns every proposal on the ballot in presentation order.
func (b *Ballot) Proposals() []*Proposal {
	var out []*Proposal
	for _, s := range b.Sections {
		for _, d := range s.Divisions {
			for _, item := range d.Items {
				if p, ok := item.(*Proposal); ok {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// Section groups divisions under a ballot heading such as "general election".
type Section struct {
	Label     string      `json:"label"`
	Divisions []*Division `json:"divisions"`
}

// Division looks up a division by its normalized label.
func (s *Section) Division(label string) *Division {
	for _, d := range s.Divisions {
		if d.Label == label {
			return d
		}
	}
	return nil
}

func (s *Section) addDivision(label string) *Division {
	d := &Division{Label: label}
	s.Divisions = append(s.Divisions, d)
	return d
}

// Division is an ordered list of offices or proposals.
type Division struct {
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// Item is an entry of a division: *Office or *Proposal.
type Item interface {
	ItemKind() string
}

// Office is an elected position and its candidates.
type Office struct {
	Name       string       `json:"name"`
	District   string       `json:"district,omitempty"`
	Type       string       `json:"type,omitempty"`
	Term       string       `json:"term,omitempty"`
	Seats      int          `json:"seats,omitempty"`
	Incumbency string       `json:"incumbency,omitempty"`
	Candidates []*Candidate `json:"candidates"`
}

// ItemKind implements Item.
func (*Office) ItemKind() string { return "office" }

// Candidate is a person (or ticket joined by " & ") running for an office.
type Candidate struct {
	Name        string `json:"name"`
	FinanceLink string `json:"finance_link,omitempty"`
	Party       string `json:"party,omitempty"`
}

// Proposal is a ballot question.
type Proposal struct {
	Title string `json:"title"`
	Text  string `json:"text,omitempty"`
}

// ItemKind implements Item.
func (*Proposal) ItemKind() string { return "proposal" }

type itemJSON struct {
	Kind string `json:"kind"`
	*Office
	*Proposal
}

// MarshalJSON tags each item with its kind so the division can be decoded again.
func (d *Division) MarshalJSON() ([]byte, error) {
	items := make([]itemJSON, len(d.Items))
	for i, item := range d.Items {
		switch v := item.(type) {
		case *Office:
			items[i] = itemJSON{Kind: v.ItemKind(), Office: v}
		case *Proposal:
			items[i] = itemJSON{Kind: v.ItemKind(), Proposal: v}
		default:
			return nil, fmt.Errorf("unknown ballot item %T", item)
		}
	}
	return json.Marshal(struct {
		Label string     `json:"label"`
		Items []itemJSON `json:"items"`
	}{d.Label, items})
}

// UnmarshalJSON restores items encoded by MarshalJSON.
func (d *Division) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label string     `json:"label"`
		Items []itemJSON `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Label = raw.Label
	d.Items = make([]Item, 0, len(raw.Items))
	for _, item := range raw.Items {
		switch {
		case item.Kind == "office" && item.Office != nil:
			d.Items = append(d.Items, item.Office)
		case item.Kind == "proposal" && item.Proposal != nil:
			d.Items = append(d.Items, item.Proposal)
		default:
			return fmt.Errorf("division %q: unknown item kind %q", raw.Label, item.Kind)
		}
	}
	return nil
}
