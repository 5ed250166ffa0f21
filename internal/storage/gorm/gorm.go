// Package gormstorage persists the activity journal through GORM. Records are
// queued and written in batches by a flush goroutine.
package gormstorage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/wayfarer-go/wayfarer/internal/model"
	"github.com/wayfarer-go/wayfarer/internal/model/convert"
	"github.com/wayfarer-go/wayfarer/internal/queue"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

const (
	defaultFlushInterval = 5 * time.Second
	batchSize            = 500
	defaultMaxQueued     = 50_000
)

// Dependencies holds all dependencies for the GORM journal
type Dependencies struct {
	DB            *gorm.DB
	FlushInterval time.Duration
	// MaxQueued bounds the entries held while the database is unreachable.
	MaxQueued int
	Logger    zerolog.Logger
}

// Backend writes journal entries to the database.
type Backend struct {
	deps    Dependencies
	queue   *queue.Queue[model.JournalEntry]
	flushMu sync.Mutex

	stopChan chan struct{}
	done     chan struct{}
	started  bool
	mu       sync.Mutex

	lastWrite time.Duration
}

// New creates a GORM journal backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	if deps.MaxQueued <= 0 {
		deps.MaxQueued = defaultMaxQueued
	}
	return &Backend{
		deps:  deps,
		queue: queue.New[model.JournalEntry](deps.MaxQueued),
	}
}

// Init starts the flush goroutine.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	b.started = true
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.flushLoop()
	return nil
}

// Close stops the flush goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	b.mu.Lock()
	started := b.started
	b.started = false
	b.mu.Unlock()

	if started {
		close(b.stopChan)
		<-b.done
	}
	return b.Flush()
}

// Record converts and queues records for the next flush.
func (b *Backend) Record(records ...core.JournalRecord) error {
	entries := make([]model.JournalEntry, 0, len(records))
	for _, r := range records {
		e, err := convert.RecordToEntry(r)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	b.queue.Push(entries...)
	return nil
}

// Pending returns the number of queued entries.
func (b *Backend) Pending() int {
	return b.queue.Len()
}

// LastWriteDuration returns how long the most recent flush took.
func (b *Backend) LastWriteDuration() time.Duration {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()
	return b.lastWrite
}

// Flush writes every queued entry. Entries are requeued when the insert fails.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	if b.queue.Empty() || b.deps.DB == nil {
		return nil
	}
	if n := b.queue.TakeDropped(); n > 0 {
		b.deps.Logger.Warn().Int("dropped", n).Msg("Journal queue full, oldest entries dropped")
	}
	entries := b.queue.Drain()

	start := time.Now()
	if err := b.deps.DB.CreateInBatches(&entries, batchSize).Error; err != nil {
		b.queue.Requeue(entries...)
		return fmt.Errorf("write %d journal entries: %w", len(entries), err)
	}
	b.lastWrite = time.Since(start)
	b.deps.Logger.Debug().
		Int("entries", len(entries)).
		Dur("duration", b.lastWrite).
		Msg("Journal flushed")
	return nil
}

// Recent returns up to limit persisted records, newest first.
func (b *Backend) Recent(ctx context.Context, limit int) ([]core.JournalRecord, error) {
	if b.deps.DB == nil {
		return nil, nil
	}
	var entries []model.JournalEntry
	q := b.deps.DB.WithContext(ctx).Order("time desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	out := make([]core.JournalRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, convert.EntryToRecord(e))
	}
	return out, nil
}

func (b *Backend) flushLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.Logger.Error().Err(err).Msg("Journal flush failed")
			}
		}
	}
}
