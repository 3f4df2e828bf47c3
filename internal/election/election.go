package election

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/michiganelections/ballot-scraper/internal/parseerr"
	"github.com/michiganelections/ballot-scraper/internal/text"
)

// DateLayout is the format of the second header line, e.g.
// "Tuesday, November 3, 2020".
const DateLayout = "Monday, January 2, 2006"

// headerDepth is how many nested divs below the ballot root hold the header.
const headerDepth = 3

// Info is the election a ballot belongs to.
type Info struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// ParseElection reads the election name and date from the ballot header. The
// first header line is the name, the second the date; later lines are ignored.
func ParseElection(page string) (Info, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Info{}, fmt.Errorf("parsing HTML: %w", err)
	}

	header := doc.Find("#PreviewMvicBallot")
	if header.Length() == 0 {
		return Info{}, parseerr.New("election", parseerr.ErrMissingElement, "#PreviewMvicBallot")
	}
	for i := 0; i < headerDepth; i++ {
		header = header.Find("div").First()
		if header.Length() == 0 {
			return Info{}, parseerr.New("election", parseerr.ErrMissingElement, "header")
		}
	}

	lines := strings.Split(strings.TrimSpace(header.Text()), "\n")
	if len(lines) < 2 {
		return Info{}, parseerr.New("election", parseerr.ErrUnrecognizedShape, header.Text())
	}

	dateText := strings.TrimSpace(lines[1])
	date, err := time.Parse(DateLayout, dateText)
	if err != nil {
		return Info{}, &parseerr.Error{Op: "election date", Text: dateText, Err: fmt.Errorf("%w: %v", parseerr.ErrUnrecognizedShape, err)}
	}

	return Info{
		Name: text.Titleize(lines[0]),
		Date: date,
	}, nil
}

// BallotURL returns the ballot preview URL for one precinct of one election.
func BallotURL(base string, electionID, precinctID int) (string, error) {
	if electionID <= 0 || precinctID <= 0 {
		return "", fmt.Errorf("invalid ballot ids: election %d, precinct %d", electionID, precinctID)
	}
	return fmt.Sprintf("%s/Voter/GetMvicBallot/%d/%d/", strings.TrimRight(base, "/"), precinctID, electionID), nil
}
