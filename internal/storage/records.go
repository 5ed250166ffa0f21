package storage

import (
	"time"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Records converts the loot and capture results of a tick into journal records.
func Records(o core.ScanOutcome) []core.JournalRecord {
	at := o.StartedAt
	var out []core.JournalRecord
	for _, l := range o.Loot {
		out = append(out, LootRecord(o.Tick, at, l))
	}
	if o.Capture != nil {
		out = append(out, CaptureRecord(o.Tick, at, *o.Capture))
	}
	return out
}

// LootRecord builds the journal record of a loot outcome.
func LootRecord(tick uint64, at time.Time, l core.LootOutcome) core.JournalRecord {
	r := core.JournalRecord{
		Time:       at,
		Tick:       tick,
		Kind:       core.JournalLoot,
		SubjectID:  l.WaypointID,
		Status:     string(l.Status),
		Experience: l.Experience,
		Position:   l.Position,
	}
	details := map[string]any{}
	if l.ItemsAwarded > 0 {
		details["itemsAwarded"] = l.ItemsAwarded
	}
	if l.RawStatus != "" && l.RawStatus != string(l.Status) {
		details["rawStatus"] = l.RawStatus
	}
	if len(details) > 0 {
		r.Details = details
	}
	return r
}

// CaptureRecord builds the journal record of a capture outcome.
func CaptureRecord(tick uint64, at time.Time, c core.CaptureOutcome) core.JournalRecord {
	return core.JournalRecord{
		Time:      at,
		Tick:      tick,
		Kind:      core.JournalCapture,
		SubjectID: c.CreatureID,
		Species:   c.Species,
		Rarity:    c.Rarity.String(),
		Status:    string(c.Status),
		Position:  c.Position,
		Details: map[string]any{
			"maxBallAttempts": c.Policy.MaxBallAttempts,
			"maxBaitItems":    c.Policy.MaxBaitItems,
			"useBait":         c.Policy.UseBait,
		},
	}
}

// SightingRecord builds the journal record of a first sighting.
func SightingRecord(tick uint64, at time.Time, s core.CreatureSighting) core.JournalRecord {
	return core.JournalRecord{
		Time:      at,
		Tick:      tick,
		Kind:      core.JournalSighting,
		SubjectID: s.ID,
		Species:   s.Species,
		Rarity:    s.Rarity.String(),
		Status:    "SEEN",
		Position:  s.Position,
	}
}
