// Package logx annotates loggers with the run and tab an event belongs to.
package logx

import (
	"pkt.systems/pslog"

	"github.com/roach88/livestyle/internal/session"
)

// WithRun annotates the logger with a run id if present.
func WithRun(log pslog.Logger, runID string) pslog.Logger {
	if runID != "" {
		log = log.With("run", runID)
	}
	return log
}

// WithTab annotates the logger with the tab an event is addressed to.
func WithTab(log pslog.Logger, tab session.TabID, ok bool) pslog.Logger {
	if ok {
		log = log.With("tab", int(tab))
	}
	return log
}
