package notifier

import (
	"github.com/michiganelections/ballot-scraper/internal/logger"
)

// LogNotifier writes diagnostics as WARN log lines and counts them per event.
type LogNotifier struct {
	log     *logger.Logger
	metrics *logger.Metrics
}

// NewLogNotifier creates a notifier backed by log and metrics. Nil arguments
// fall back to the package defaults.
func NewLogNotifier(log *logger.Logger, metrics *logger.Metrics) *LogNotifier {
	return &LogNotifier{log: log, metrics: metrics}
}

// Notify logs the diagnostic and bumps the "notify.<event>" counter.
func (n *LogNotifier) Notify(event string, fields logger.Fields) {
	entry := logger.Fields{"event": event}
	for k, v := range fields {
		entry[k] = v
	}

	if n.log != nil {
		n.log.Warn("Diagnostic", entry)
	} else {
		logger.Warn("Diagnostic", entry)
	}

	if n.metrics != nil {
		n.metrics.IncrCounter("notify." + event)
	} else {
		logger.IncrCounter("notify." + event)
	}
}
