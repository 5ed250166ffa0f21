package core

import "time"

// JournalKind classifies an activity journal record.
type JournalKind string

const (
	JournalLoot     JournalKind = "loot"
	JournalCapture  JournalKind = "capture"
	JournalSighting JournalKind = "sighting"
)

// JournalRecord is one persisted loot, capture or sighting.
type JournalRecord struct {
	Time       time.Time      `json:"time"`
	Tick       uint64         `json:"tick"`
	Kind       JournalKind    `json:"kind"`
	SubjectID  string         `json:"subjectId"`
	Species    Species        `json:"species,omitempty"`
	Rarity     string         `json:"rarity,omitempty"`
	Status     string         `json:"status"`
	Experience int            `json:"experience,omitempty"`
	Position   Position       `json:"position"`
	Details    map[string]any `json:"details,omitempty"`
}
