// Package storage provides JSON-based persistence for parsed ballots.
//
// Each ballot is one file, ballots/<election id>/<precinct id>.json under the
// data directory, holding the election and precinct metadata next to the
// ballot structure so a scrape can be reviewed or re-published without
// fetching MVIC again.
package storage
