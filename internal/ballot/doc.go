// Package ballot rebuilds the structure of an MVIC ballot preview from its
// loosely nested markup.
//
// The page has no stable schema: sections, divisions, offices and candidates
// are sibling divs distinguished only by class. Classify turns a region of the
// page into an ordered list of tagged fragments, and a Builder folds those
// fragments into a Ballot, tracking the current section, division, office or
// proposal, and candidate so trailing fragments (terms, finance links,
// parties) attach to the right parent.
//
// A fragment that arrives without its parent, or a term whose text matches no
// known shape, aborts the parse with a parseerr structural error.
package ballot
