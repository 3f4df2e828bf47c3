// Package scraper fetches ballot previews and voter lookups from the Michigan
// Voter Information Center.
//
// The site reports outages in two ways: an HTTP error status, or a normal page
// whose polling location error banner is visible. Both surface as
// ErrServiceUnavailable so callers can retry later instead of treating the
// page as a parse failure.
package scraper
