// Package notifier delivers parser diagnostics to a telemetry sink.
//
// Diagnostics are non-fatal: a voter who recently moved, a proposal title with
// duplicated phrasing. Parsers call Notify and continue; implementations must
// never block the caller and must tolerate concurrent use.
package notifier
