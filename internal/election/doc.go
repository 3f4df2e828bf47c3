// Package election extracts election and precinct metadata from the header of
// an MVIC ballot preview.
//
// The header is free text. Precinct details are recovered by trying a short,
// ordered list of regular expressions against the raw page, so a page whose
// header matches none of them fails with parseerr.ErrNoMatch and the source URL
// rather than producing partial metadata.
package election
