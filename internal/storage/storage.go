package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/michiganelections/ballot-scraper/internal/ballot"
	"github.com/michiganelections/ballot-scraper/internal/election"
)

// ErrNotFound is returned when no ballot was saved for an election and precinct.
var ErrNotFound = errors.New("ballot not found")

// Record is one parsed ballot with the metadata needed to publish it.
type Record struct {
	ElectionID int               `json:"election_id"`
	PrecinctID int               `json:"precinct_id"`
	SourceURL  string            `json:"source_url"`
	Election   election.Info     `json:"election"`
	Precinct   election.Precinct `json:"precinct"`
	Ballot     *ballot.Ballot    `json:"ballot"`
	ItemCount  int               `json:"item_count"`
	ParsedAt   string            `json:"parsed_at"`
}

// Storage handles persistence of ballot records
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) electionDir(electionID int) string {
	return filepath.Join(s.dataDir, "ballots", strconv.Itoa(electionID))
}

func (s *Storage) recordPath(electionID, precinctID int) string {
	return filepath.Join(s.electionDir(electionID), strconv.Itoa(precinctID)+".json")
}

// SaveBallot writes rec, replacing any earlier copy. ParsedAt is set when empty.
func (s *Storage) SaveBallot(rec *Record) error {
	if rec.ElectionID <= 0 || rec.PrecinctID <= 0 {
		return fmt.Errorf("invalid record ids: election %d, precinct %d", rec.ElectionID, rec.PrecinctID)
	}
	if rec.ParsedAt == "" {
		rec.ParsedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := os.MkdirAll(s.electionDir(rec.ElectionID), 0755); err != nil {
		return fmt.Errorf("creating election directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ballot: %w", err)
	}

	path := s.recordPath(rec.ElectionID, rec.PrecinctID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing ballot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing ballot: %w", err)
	}
	return nil
}

// LoadBallot reads the record for one election and precinct.
func (s *Storage) LoadBallot(electionID, precinctID int) (*Record, error) {
	data, err := os.ReadFile(s.recordPath(electionID, precinctID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("election %d precinct %d: %w", electionID, precinctID, ErrNotFound)
		}
		return nil, fmt.Errorf("reading ballot: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing ballot: %w", err)
	}
	if rec.Ballot == nil {
		rec.Ballot = &ballot.Ballot{}
	}
	return &rec, nil
}

// Precincts lists the precinct ids saved for an election in ascending order.
func (s *Storage) Precincts(electionID int) ([]int, error) {
	entries, err := os.ReadDir(s.electionDir(electionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing ballots: %w", err)
	}

	var ids []int
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		id, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// HasBallot reports whether a record exists for the election and precinct.
func (s *Storage) HasBallot(electionID, precinctID int) bool {
	_, err := os.Stat(s.recordPath(electionID, precinctID))
	return err == nil
}
