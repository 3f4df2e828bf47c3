// Package cli implements the command-line interface for mi-ballots.
//
// The cli package provides the Cobra-based CLI for parsing saved ballot pages,
// fetching single ballots, scraping a range of precincts in parallel and
// looking up voter registration. Two helper commands expose the repeated-text
// audit and the proposal district parser. Results are written as text or JSON.
package cli
