package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Credential{},
	&JournalEntry{},
	&StatusSnapshot{},
}

// Journal entry kinds.
const (
	KindLoot     = "loot"
	KindCapture  = "capture"
	KindSighting = "sighting"
)

// Credential is a single key/value pair of the credential store.
type Credential struct {
	Name      string    `json:"name" gorm:"primaryKey;size:64"`
	Value     string    `json:"value" gorm:"size:255"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (*Credential) TableName() string {
	return "credentials"
}

// JournalEntry records one loot, capture or sighting.
type JournalEntry struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time       time.Time      `json:"time" gorm:"index:idx_journal_time"`
	Tick       uint64         `json:"tick"`
	Kind       string         `json:"kind" gorm:"size:16;index:idx_journal_kind"`
	SubjectID  string         `json:"subjectId" gorm:"size:64"`
	Species    string         `json:"species" gorm:"size:64"`
	Rarity     string         `json:"rarity" gorm:"size:16"`
	Status     string         `json:"status" gorm:"size:32"`
	Experience int            `json:"experience"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	Details    datatypes.JSON `json:"details"`
}

func (*JournalEntry) TableName() string {
	return "journal_entries"
}

// StatusSnapshot is a periodic sample of the client's health.
type StatusSnapshot struct {
	ID               uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time             time.Time `json:"time" gorm:"index:idx_status_time"`
	SessionState     string    `json:"sessionState" gorm:"size:24"`
	Ticks            int       `json:"ticks"`
	LastTickMs       float32   `json:"lastTickMs"`
	TrackedWaypoints int       `json:"trackedWaypoints"`
	TrackedCreatures int       `json:"trackedCreatures"`
	TrackedGyms      int       `json:"trackedGyms"`
	JournalQueue     int       `json:"journalQueue"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
}

func (*StatusSnapshot) TableName() string {
	return "status_snapshots"
}
