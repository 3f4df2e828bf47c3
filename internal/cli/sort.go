package cli

import (
	"sort"
	"strings"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByPrecinct     SortOrder = "precinct"
	SortByItems        SortOrder = "items"
	SortByJurisdiction SortOrder = "jurisdiction"
)

func (o SortOrder) valid() bool {
	switch o {
	case SortByPrecinct, SortByItems, SortByJurisdiction:
		return true
	}
	return false
}

// sortResults orders scrape results, which arrive in completion order.
func sortResults(results []PrecinctResult, order SortOrder) {
	switch order {
	case SortByPrecinct:
		sort.Slice(results, func(i, j int) bool {
			return results[i].PrecinctID < results[j].PrecinctID
		})
	case SortByItems:
		sort.Slice(results, func(i, j int) bool {
			if results[i].ItemCount != results[j].ItemCount {
				return results[i].ItemCount > results[j].ItemCount
			}
			return results[i].PrecinctID < results[j].PrecinctID
		})
	case SortByJurisdiction:
		sort.Slice(results, func(i, j int) bool {
			ji, jj := strings.ToLower(results[i].Jurisdiction), strings.ToLower(results[j].Jurisdiction)
			if ji != jj {
				// Precincts without a jurisdiction go last
				if ji == "" || jj == "" {
					return jj == ""
				}
				return ji < jj
			}
			return results[i].PrecinctID < results[j].PrecinctID
		})
	}
}
