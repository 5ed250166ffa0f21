package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/wayfarer-go/wayfarer/internal/model"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

func TestRecordToEntry(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry, err := RecordToEntry(core.JournalRecord{
		Time:      at,
		Tick:      9,
		Kind:      core.JournalCapture,
		SubjectID: "c1",
		Species:   core.SpeciesZubat,
		Rarity:    "COMMON",
		Status:    "SUCCESS",
		Position:  core.Position{Latitude: 52.5, Longitude: 13.4, Altitude: 30},
		Details:   map[string]any{"maxBallAttempts": 5},
	})
	require.NoError(t, err)

	assert.Equal(t, at, entry.Time)
	assert.Equal(t, uint64(9), entry.Tick)
	assert.Equal(t, model.KindCapture, entry.Kind)
	assert.Equal(t, "ZUBAT", entry.Species)
	assert.Equal(t, 52.5, entry.Latitude)
	assert.JSONEq(t, `{"maxBallAttempts":5}`, string(entry.Details))
}

func TestRecordToEntry_NoDetails(t *testing.T) {
	entry, err := RecordToEntry(core.JournalRecord{Kind: core.JournalLoot, SubjectID: "w1"})
	require.NoError(t, err)
	assert.Nil(t, entry.Details)
}

func TestRecordToEntry_UnencodableDetails(t *testing.T) {
	_, err := RecordToEntry(core.JournalRecord{Details: map[string]any{"bad": make(chan int)}})
	assert.Error(t, err)
}

func TestEntryToRecord(t *testing.T) {
	r := EntryToRecord(model.JournalEntry{
		Kind:       model.KindLoot,
		SubjectID:  "w1",
		Status:     "SUCCESS",
		Experience: 50,
		Latitude:   1,
		Longitude:  2,
		Details:    datatypes.JSON(`{"itemsAwarded":3}`),
	})

	assert.Equal(t, core.JournalLoot, r.Kind)
	assert.Equal(t, 50, r.Experience)
	assert.Equal(t, core.Position{Latitude: 1, Longitude: 2}, r.Position)
	assert.Equal(t, float64(3), r.Details["itemsAwarded"])
}

func TestEntryToRecord_BadDetails(t *testing.T) {
	r := EntryToRecord(model.JournalEntry{Details: datatypes.JSON(`{nope`)})
	assert.Nil(t, r.Details)
}
