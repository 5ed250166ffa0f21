package storage

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-go/wayfarer/internal/config"
	"github.com/wayfarer-go/wayfarer/internal/database"
	gormstorage "github.com/wayfarer-go/wayfarer/internal/storage/gorm"
	"github.com/wayfarer-go/wayfarer/internal/storage/memory"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Compile-time interface checks.
var (
	_ Backend = (*memory.Backend)(nil)
	_ Backend = (*gormstorage.Backend)(nil)
)

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(config.StorageConfig{Type: "memory"}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	_, err = NewBackend(config.StorageConfig{Type: "database"}, nil, zerolog.Nop())
	assert.Error(t, err)

	db, err := database.OpenSQLite("")
	require.NoError(t, err)
	b, err = NewBackend(config.StorageConfig{Type: "database"}, db, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &gormstorage.Backend{}, b)

	_, err = NewBackend(config.StorageConfig{Type: "csv"}, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestRecords(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o := core.ScanOutcome{
		Tick:      4,
		StartedAt: at,
		Loot: []core.LootOutcome{
			{WaypointID: "w1", Status: core.LootSuccess, RawStatus: "SUCCESS", Experience: 50, ItemsAwarded: 3},
			{WaypointID: "w2", Status: core.LootError, RawStatus: "BANNED"},
		},
		Capture: &core.CaptureOutcome{
			CreatureID: "c1",
			Species:    core.SpeciesPidgey,
			Rarity:     core.RarityVeryCommon,
			Status:     core.CaptureFlee,
			Policy:     core.CatchPolicy{MaxBallAttempts: 2, MaxBaitItems: 2, UseBait: true},
		},
	}

	records := Records(o)
	require.Len(t, records, 3)

	assert.Equal(t, core.JournalLoot, records[0].Kind)
	assert.Equal(t, at, records[0].Time)
	assert.Equal(t, uint64(4), records[0].Tick)
	assert.Equal(t, 3, records[0].Details["itemsAwarded"])
	assert.NotContains(t, records[0].Details, "rawStatus")
	assert.Equal(t, "BANNED", records[1].Details["rawStatus"])

	assert.Equal(t, core.JournalCapture, records[2].Kind)
	assert.Equal(t, "FLEE", records[2].Status)
	assert.Equal(t, "VERY_COMMON", records[2].Rarity)
	assert.Equal(t, 2, records[2].Details["maxBallAttempts"])
}

func TestSink_RecordsFirstSightingsOnly(t *testing.T) {
	backend := memory.New(config.MemoryConfig{})
	sink := NewSink(backend, nil)

	nearby := []core.CreatureSighting{
		{ID: "c1", Species: core.SpeciesZubat},
		{ID: "c2", Species: core.SpeciesWeedle},
	}
	sink.OnTickResult(core.ScanOutcome{Tick: 1, Nearby: nearby})
	sink.OnTickResult(core.ScanOutcome{Tick: 2, Nearby: nearby})
	sink.OnTickResult(core.ScanOutcome{Tick: 3, Skipped: true, Nearby: []core.CreatureSighting{{ID: "c3"}}})
	sink.OnLoginCompleted(core.LoginResult{})
	sink.OnLocationChanged(core.Position{})

	got, err := backend.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, core.JournalSighting, r.Kind)
		assert.Equal(t, uint64(1), r.Tick)
	}
}
