// Package location fans out position updates from a Source to observers.
package location

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Observer receives every accepted position update. It is called on the
// delivery goroutine and must return quickly.
type Observer interface {
	OnLocationChanged(pos core.Position)
}

// Request is the update cadence asked from a Source.
type Request struct {
	// Interval is the desired time between updates.
	Interval time.Duration
	// FastestInterval is the minimum spacing; faster updates are dropped.
	FastestInterval time.Duration
}

// DefaultRequest matches the cadence of the scan loop.
var DefaultRequest = Request{Interval: 10 * time.Second, FastestInterval: 5 * time.Second}

// Source produces positions once connected.
type Source interface {
	Connect(ctx context.Context, req Request, deliver func(core.Position)) error
	Disconnect()
}

// Broadcaster caches the latest position and notifies observers in
// registration order.
type Broadcaster struct {
	src Source
	req Request
	log *slog.Logger

	mu        sync.Mutex
	observers []Observer
	latest    *core.Position
	accepted  time.Time
	running   bool
	now       func() time.Time
}

// NewBroadcaster creates a stopped broadcaster over src.
func NewBroadcaster(src Source, req Request, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		src: src,
		req: req,
		log: logger.With("component", "location"),
		now: time.Now,
	}
}

// Register adds o unless it is already registered.
func (b *Broadcaster) Register(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.observers {
		if existing == o {
			return
		}
	}
	b.observers = append(b.observers, o)
}

// Unregister removes o; unknown observers are ignored.
func (b *Broadcaster) Unregister(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.observers {
		if existing == o {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

// Observers returns the number of registered observers.
func (b *Broadcaster) Observers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}

// Latest returns the last accepted position.
func (b *Broadcaster) Latest() (core.Position, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latest == nil {
		return core.Position{}, false
	}
	return *b.latest, true
}

// Running reports whether the source is connected.
func (b *Broadcaster) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Start connects the source. Starting a running broadcaster is a no-op.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = true
	b.mu.Unlock()

	if err := b.src.Connect(ctx, b.req, b.deliver); err != nil {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		return err
	}
	b.log.Debug("Location updates started", "interval", b.req.Interval, "fastest", b.req.FastestInterval)
	return nil
}

// Stop disconnects the source. Observers stay registered.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	b.mu.Unlock()

	b.src.Disconnect()
	b.log.Debug("Location updates stopped")
}

func (b *Broadcaster) deliver(pos core.Position) {
	now := b.now()
	if pos.Timestamp.IsZero() {
		pos.Timestamp = now
	}

	b.mu.Lock()
	if b.latest != nil && b.req.FastestInterval > 0 && now.Sub(b.accepted) < b.req.FastestInterval {
		b.mu.Unlock()
		return
	}
	p := pos
	b.latest = &p
	b.accepted = now
	observers := make([]Observer, len(b.observers))
	copy(observers, b.observers)
	b.mu.Unlock()

	for _, o := range observers {
		o.OnLocationChanged(pos)
	}
}
