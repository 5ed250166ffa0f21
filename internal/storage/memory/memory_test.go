package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-go/wayfarer/internal/config"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

func rec(id string) core.JournalRecord {
	return core.JournalRecord{Kind: core.JournalLoot, SubjectID: id}
}

func TestRecordAndRecent(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.Record(rec("a"), rec("b")))
	require.NoError(t, b.Record(rec("c")))

	got, err := b.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].SubjectID)
	assert.Equal(t, "b", got[1].SubjectID)

	all, err := b.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 0, b.Pending())
}

func TestMaxEntries(t *testing.T) {
	b := New(config.MemoryConfig{MaxEntries: 2})

	require.NoError(t, b.Record(rec("a"), rec("b"), rec("c")))
	require.NoError(t, b.Record(rec("d")))

	got, err := b.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].SubjectID)
	assert.Equal(t, "c", got[1].SubjectID)
	assert.Equal(t, 4, b.Total())
}

func TestRecent_CancelledContext(t *testing.T) {
	b := New(config.MemoryConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Recent(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
