// Package text normalizes scraped strings into the canonical forms used by the
// ballot model.
//
// The functions here are pure: title-casing with connector-word exceptions,
// person-name parsing and capitalization for candidates, jurisdiction
// restructuring ("Springfield Township" becomes "Township of Springfield") and
// cleanup of the district categories reported by the registration lookup.
package text
