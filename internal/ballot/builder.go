package ballot

import (
	"fmt"
	"strings"

	"github.com/michiganelections/ballot-scraper/internal/audit"
	"github.com/michiganelections/ballot-scraper/internal/logger"
	"github.com/michiganelections/ballot-scraper/internal/notifier"
	"github.com/michiganelections/ballot-scraper/internal/parseerr"
	"github.com/michiganelections/ballot-scraper/internal/text"
)

// NoCandidates is the placeholder MVIC prints for an office nobody filed for.
const NoCandidates = "No candidates on ballot"

// DuplicatePolicy decides what happens when a section label repeats.
type DuplicatePolicy int

const (
	// DuplicateFail aborts the parse.
	DuplicateFail DuplicatePolicy = iota
	// DuplicateWarn merges into the existing section and logs a warning.
	DuplicateWarn
	// DuplicateMerge merges silently.
	DuplicateMerge
)

// Region is one independently parsed area of the ballot page.
type Region struct {
	Name        string
	ContainerID string
	Kinds       []Kind
	Duplicates  DuplicatePolicy

	// ImplicitSection is opened when a division shows up before any section.
	// Empty means such a division is a structural error.
	ImplicitSection string

	// Proposals selects proposal division labels and fragment rules.
	Proposals bool
}

var (
	PrimaryOffices = Region{
		Name:        "primary",
		ContainerID: "primaryOffices",
		Kinds:       OfficeKinds,
		Duplicates:  DuplicateFail,
	}
	GeneralOffices = Region{
		Name:            "general",
		ContainerID:     "generalElectionOffices",
		Kinds:           OfficeKinds,
		Duplicates:      DuplicateWarn,
		ImplicitSection: "nonpartisan section",
	}
	ProposalItems = Region{
		Name:        "proposals",
		ContainerID: "proposals",
		Kinds:       ProposalKinds,
		Duplicates:  DuplicateMerge,
		Proposals:   true,
	}

	// Regions are parsed in this order into one shared Ballot.
	Regions = []Region{PrimaryOffices, GeneralOffices, ProposalItems}
)

// Option configures parsing.
type Option func(*options)

type options struct {
	log      *logger.Logger
	metrics  *logger.Metrics
	notifier notifier.Notifier
}

func newOptions(opts []Option) options {
	o := options{notifier: notifier.Nop{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Default()
	}
	return o
}

// WithLogger sets the logger for warnings and fragment tracing.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records per-region informative counts and parse timings.
func WithMetrics(m *logger.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithNotifier sets the sink for repeated-text diagnostics.
func WithNotifier(n notifier.Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// Builder folds the fragments of one region into a Ballot. The zero value is
// not usable; create one with NewBuilder.
type Builder struct {
	ballot *Ballot
	region Region
	opts   options

	section   *Section
	division  *Division
	office    *Office
	proposal  *Proposal
	candidate *Candidate

	count int
}

// NewBuilder returns a builder adding region fragments to b.
func NewBuilder(b *Ballot, region Region, opts ...Option) *Builder {
	return &Builder{ballot: b, region: region, opts: newOptions(opts)}
}

// Count returns the number of informative fragments seen: accepted terms,
// real candidates and proposal texts.
func (b *Builder) Count() int {
	return b.count
}

// Build steps through every fragment and stops at the first error.
func (b *Builder) Build(fragments []Fragment) error {
	for i, f := range fragments {
		b.opts.log.Debug("Parsing fragment", logger.Fields{
			"region": b.region.Name,
			"index":  i + 1,
			"kind":   f.Kind.String(),
			"text":   strings.TrimSpace(f.Text),
		})
		if err := b.Step(f); err != nil {
			return err
		}
	}
	return nil
}

// Step applies one fragment to the builder state.
func (b *Builder) Step(f Fragment) error {
	label := strings.TrimSpace(f.Text)

	switch f.Kind {
	case KindSection:
		return b.openSection(strings.ToLower(label))

	case KindDivision:
		return b.openDivision(label)

	case KindOffice:
		if b.division == nil {
			return parseerr.New("office", parseerr.ErrMissingContext, label)
		}
		b.office = &Office{Name: text.Titleize(label)}
		b.division.Items = append(b.division.Items, b.office)
		b.candidate = nil

	case KindTerm:
		if b.office == nil {
			return parseerr.New("term", parseerr.ErrMissingContext, label)
		}
		if err := applyTerm(b.office, label); err != nil {
			return err
		}
		b.count++

	case KindCandidate:
		if b.office == nil {
			return parseerr.New("candidate", parseerr.ErrMissingContext, label)
		}
		if label == NoCandidates {
			b.candidate = nil
			return nil
		}
		name, err := text.NormalizeCandidate(label)
		if err != nil {
			return fmt.Errorf("candidate for %s: %w", b.office.Name, err)
		}
		b.candidate = &Candidate{Name: name}
		b.office.Candidates = append(b.office.Candidates, b.candidate)
		b.count++

	case KindFinanceLink:
		if f.Link == "" {
			return nil
		}
		if b.candidate == nil {
			return parseerr.New("financeLink", parseerr.ErrMissingContext, f.Link)
		}
		b.candidate.FinanceLink = f.Link

	case KindParty:
		if b.candidate == nil {
			return parseerr.New("party", parseerr.ErrMissingContext, label)
		}
		b.candidate.Party = text.Titleize(label)

	case KindProposalTitle:
		return b.openProposal(f, label)

	case KindProposalText:
		if b.proposal == nil {
			return parseerr.New("proposalText", parseerr.ErrMissingContext, label)
		}
		b.proposal.Text = label
		b.count++

	default:
		return parseerr.New("fragment", parseerr.ErrUnrecognizedShape, f.Kind.String())
	}

	return nil
}

func (b *Builder) resetItems() {
	b.office = nil
	b.proposal = nil
	b.candidate = nil
}

func (b *Builder) openSection(label string) error {
	b.division = nil
	b.resetItems()

	existing := b.ballot.Section(label)
	if existing == nil {
		b.section = b.ballot.addSection(label)
		return nil
	}

	switch b.region.Duplicates {
	case DuplicateFail:
		return parseerr.New("section", parseerr.ErrDuplicateSection, label)
	case DuplicateWarn:
		b.opts.log.Warn("Duplicate section merged", logger.Fields{
			"region":  b.region.Name,
			"section": label,
		})
	}
	b.section = existing
	return nil
}

func (b *Builder) openDivision(raw string) error {
	if b.section == nil {
		if b.region.ImplicitSection == "" {
			return parseerr.New("division", parseerr.ErrMissingContext, raw)
		}
		b.opts.log.Warn("Division without section", logger.Fields{
			"region":   b.region.Name,
			"division": raw,
			"section":  b.region.ImplicitSection,
		})
		if b.section = b.ballot.Section(b.region.ImplicitSection); b.section == nil {
			b.section = b.ballot.addSection(b.region.ImplicitSection)
		}
	}

	label := divisionLabel(raw, b.region.Proposals)
	if label == "" {
		return parseerr.New("division", parseerr.ErrUnrecognizedShape, raw)
	}

	if b.division = b.section.Division(label); b.division == nil {
		b.division = b.section.addDivision(label)
	}
	b.resetItems()
	return nil
}

// divisionLabel normalizes a division heading: "Judicial - Continued" and
// "Judicial District" both become "Judicial".
func divisionLabel(raw string, proposals bool) string {
	label := text.Titleize(raw)
	label = strings.ReplaceAll(label, " - Continued", "")
	if proposals {
		label = strings.ReplaceAll(label, " Proposals", "")
	}
	label = strings.TrimSuffix(label, " District")
	return strings.TrimSpace(label)
}

func (b *Builder) openProposal(f Fragment, label string) error {
	allCaps := label == strings.ToUpper(label) && label != strings.ToLower(label)
	lines := strings.Split(label, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if allCaps {
			line = text.Titleize(line)
		}
		lines[i] = line
	}
	label = strings.Join(lines, "\n")

	if len(lines) > 1 {
		audit.Check(label, b.opts.notifier)
		b.opts.log.Warn("Newlines in proposal title", logger.Fields{"title": label})

		if len(lines) == 2 {
			label = strings.Join(lines, ": ")
		}
	}

	if b.division == nil {
		return parseerr.New("proposalTitle", parseerr.ErrMissingContext, label)
	}

	b.proposal = &Proposal{Title: label, Text: f.Fallback}
	b.division.Items = append(b.division.Items, b.proposal)
	b.office = nil
	b.candidate = nil
	return nil
}
