package storage

import (
	"log/slog"

	"github.com/wayfarer-go/wayfarer/internal/cache"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Sink journals tick outcomes. Creatures are recorded once, on first sight.
type Sink struct {
	backend Backend
	log     *slog.Logger
	seen    *cache.Tracked[string]
}

// NewSink returns an observer writing to backend.
func NewSink(backend Backend, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		backend: backend,
		log:     logger.With("component", "journal"),
		seen:    cache.NewTracked(func(id string) string { return id }),
	}
}

func (s *Sink) OnTickResult(o core.ScanOutcome) {
	if o.Skipped {
		return
	}
	records := Records(o)
	for _, c := range o.Nearby {
		if s.seen.Merge(c.ID) == 1 {
			records = append(records, SightingRecord(o.Tick, o.StartedAt, c))
		}
	}
	if len(records) == 0 {
		return
	}
	if err := s.backend.Record(records...); err != nil {
		s.log.Error("Failed to journal tick", "tick", o.Tick, "records", len(records), "error", err)
	}
}

func (s *Sink) OnLoginCompleted(core.LoginResult) {}

func (s *Sink) OnLocationChanged(core.Position) {}
