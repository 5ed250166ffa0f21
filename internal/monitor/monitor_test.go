package monitor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-go/wayfarer/internal/database"
	"github.com/wayfarer-go/wayfarer/internal/model"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

func newService(t *testing.T, deps Dependencies) *Service {
	t.Helper()
	deps.State = func() string { return "AUTHENTICATED" }
	deps.Tracked = func() (int, int, int) { return 3, 2, 1 }
	deps.Ticks = func() int { return 9 }
	deps.Pending = func() int { return 4 }
	return NewService(deps)
}

func TestStatus(t *testing.T) {
	s := newService(t, Dependencies{})
	s.OnTickResult(core.ScanOutcome{Duration: 1500 * time.Microsecond})
	s.OnLocationChanged(core.Position{Latitude: 52.5, Longitude: 13.4})
	s.OnLoginCompleted(core.LoginResult{})

	snap := s.Status()
	assert.Equal(t, "AUTHENTICATED", snap.SessionState)
	assert.Equal(t, 9, snap.Ticks)
	assert.Equal(t, 4, snap.JournalQueue)
	assert.Equal(t, 3, snap.TrackedWaypoints)
	assert.Equal(t, 2, snap.TrackedCreatures)
	assert.Equal(t, 1, snap.TrackedGyms)
	assert.InDelta(t, 1.5, snap.LastTickMs, 0.001)
	assert.Equal(t, 52.5, snap.Latitude)
	assert.False(t, snap.Time.IsZero())
}

func TestStatus_NoSources(t *testing.T) {
	snap := NewService(Dependencies{}).Status()
	assert.Empty(t, snap.SessionState)
	assert.Zero(t, snap.Ticks)
}

func TestWriteStatus_FileAndDatabase(t *testing.T) {
	db, err := database.OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	path := filepath.Join(t.TempDir(), "nested", "status.json")
	s := newService(t, Dependencies{DB: db, StatusFile: path})

	written, err := s.WriteStatus()
	require.NoError(t, err)

	read, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, written.SessionState, read.SessionState)
	assert.Equal(t, written.Ticks, read.Ticks)

	var count int64
	require.NoError(t, db.Model(&model.StatusSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s := newService(t, Dependencies{StatusFile: path, Interval: 10 * time.Millisecond})

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool {
		_, err := ReadFile(path)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
	assert.False(t, s.IsRunning())
}
