// internal/storage/memory/memory.go
package memory

import (
	"context"
	"sync"

	"github.com/wayfarer-go/wayfarer/internal/config"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Backend keeps the journal in memory, dropping the oldest records beyond
// the configured limit.
type Backend struct {
	cfg     config.MemoryConfig
	records []core.JournalRecord
	total   int
	mu      sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// Record appends records synchronously.
func (b *Backend) Record(records ...core.JournalRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = append(b.records, records...)
	b.total += len(records)
	if limit := b.cfg.MaxEntries; limit > 0 && len(b.records) > limit {
		b.records = append([]core.JournalRecord(nil), b.records[len(b.records)-limit:]...)
	}
	return nil
}

// Recent returns up to limit records, newest first. A limit of zero or less
// returns everything held.
func (b *Backend) Recent(ctx context.Context, limit int) ([]core.JournalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]core.JournalRecord, 0, n)
	for i := len(b.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, b.records[i])
	}
	return out, nil
}

// Pending is always zero; records are held as soon as they arrive.
func (b *Backend) Pending() int {
	return 0
}

// Total returns how many records were ever accepted.
func (b *Backend) Total() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}
