// Package convert maps activity journal records to and from GORM models.
package convert

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/wayfarer-go/wayfarer/internal/model"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// RecordToEntry converts a journal record into its table row.
func RecordToEntry(r core.JournalRecord) (model.JournalEntry, error) {
	entry := model.JournalEntry{
		Time:       r.Time,
		Tick:       r.Tick,
		Kind:       string(r.Kind),
		SubjectID:  r.SubjectID,
		Species:    string(r.Species),
		Rarity:     r.Rarity,
		Status:     r.Status,
		Experience: r.Experience,
		Latitude:   r.Position.Latitude,
		Longitude:  r.Position.Longitude,
	}
	if len(r.Details) > 0 {
		raw, err := json.Marshal(r.Details)
		if err != nil {
			return model.JournalEntry{}, fmt.Errorf("marshal details of %s %s: %w", r.Kind, r.SubjectID, err)
		}
		entry.Details = datatypes.JSON(raw)
	}
	return entry, nil
}

// EntryToRecord converts a table row back into a journal record.
// Undecodable details are dropped.
func EntryToRecord(e model.JournalEntry) core.JournalRecord {
	r := core.JournalRecord{
		Time:       e.Time,
		Tick:       e.Tick,
		Kind:       core.JournalKind(e.Kind),
		SubjectID:  e.SubjectID,
		Species:    core.Species(e.Species),
		Rarity:     e.Rarity,
		Status:     e.Status,
		Experience: e.Experience,
		Position:   core.Position{Latitude: e.Latitude, Longitude: e.Longitude},
	}
	if len(e.Details) > 0 {
		var details map[string]any
		if err := json.Unmarshal(e.Details, &details); err == nil {
			r.Details = details
		}
	}
	return r
}
