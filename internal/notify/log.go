package notify

import (
	"log/slog"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// LogSink writes user-facing notifications to a logger.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink returns a sink writing to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{log: logger.With("component", "notifications")}
}

func (s *LogSink) OnTickResult(o core.ScanOutcome) {
	if o.Skipped {
		s.log.Debug("Tick skipped", "tick", o.Tick, "reason", o.SkipReason)
		return
	}
	for _, msg := range o.Messages() {
		s.log.Info(msg, "tick", o.Tick)
	}
	if o.Aborted {
		s.log.Warn("Tick aborted", "tick", o.Tick, "errors", len(o.Errors))
	}
}

func (s *LogSink) OnLoginCompleted(r core.LoginResult) {
	if r.Status == core.LoginSuccess {
		s.log.Info(r.Message)
		return
	}
	s.log.Warn(r.Message, "status", r.Status)
}

func (s *LogSink) OnLocationChanged(pos core.Position) {
	s.log.Debug("Location changed", "lat", pos.Latitude, "lon", pos.Longitude)
}
