// Package registration reads a voter's registration status from the MVIC
// voter lookup page.
//
// Every field is optional. A page that never states whether the voter is
// registered leaves Registered nil, a missing absentee block leaves the dates
// unset and a polling location that cannot be fully read is dropped. Each of
// these is logged as a warning rather than returned as an error.
package registration
