// Package storage keeps the activity journal: every loot, capture and newly
// sighted creature reported by the scan loop.
package storage

import (
	"context"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Backend is the interface all journal implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Record appends records; implementations may persist them asynchronously.
	Record(records ...core.JournalRecord) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]core.JournalRecord, error)
	// Pending returns the number of records accepted but not yet persisted.
	Pending() int
}
