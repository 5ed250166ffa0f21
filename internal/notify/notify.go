// Package notify fans scan loop, login and location events out to sinks
// through the dispatcher, so slow sinks never hold up the scan goroutine.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wayfarer-go/wayfarer/internal/dispatcher"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// Topics registered on the dispatcher.
const (
	TopicTick     = "tick"
	TopicLogin    = "login"
	TopicLocation = "location"
)

// DefaultBufferSize is the queue length per topic.
const DefaultBufferSize = 256

// Observer is the callback surface exposed to user-facing layers.
type Observer interface {
	OnTickResult(outcome core.ScanOutcome)
	OnLoginCompleted(result core.LoginResult)
	OnLocationChanged(pos core.Position)
}

// Hub is an Observer that forwards each callback to every sink, in
// registration order, on a per-topic worker goroutine.
type Hub struct {
	d   *dispatcher.Dispatcher
	log *slog.Logger

	mu    sync.RWMutex
	sinks []Observer
}

// NewHub registers the hub topics on d. Location updates are frequent and are
// dropped when their queue is full; tick and login results are never dropped.
func NewHub(d *dispatcher.Dispatcher, logger *slog.Logger, bufferSize int) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	h := &Hub{d: d, log: logger.With("component", "notify")}

	d.Register(TopicTick, h.handle, dispatcher.Buffered(bufferSize), dispatcher.Blocking())
	d.Register(TopicLogin, h.handle, dispatcher.Buffered(bufferSize), dispatcher.Blocking())
	d.Register(TopicLocation, h.handle, dispatcher.Buffered(bufferSize))
	return h
}

// Add appends a sink.
func (h *Hub) Add(sink Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, sink)
}

// OnTickResult implements Observer.
func (h *Hub) OnTickResult(outcome core.ScanOutcome) {
	h.publish(TopicTick, outcome)
}

// OnLoginCompleted implements Observer.
func (h *Hub) OnLoginCompleted(result core.LoginResult) {
	h.publish(TopicLogin, result)
}

// OnLocationChanged implements Observer.
func (h *Hub) OnLocationChanged(pos core.Position) {
	h.publish(TopicLocation, pos)
}

func (h *Hub) publish(topic string, payload any) {
	if _, err := h.d.Dispatch(dispatcher.Event{Topic: topic, Payload: payload}); err != nil {
		h.log.Debug("Notification not delivered", "topic", topic, "error", err)
	}
}

func (h *Hub) handle(e dispatcher.Event) (any, error) {
	h.mu.RLock()
	sinks := make([]Observer, len(h.sinks))
	copy(sinks, h.sinks)
	h.mu.RUnlock()

	var errs []error
	for _, sink := range sinks {
		if err := deliver(sink, e); err != nil {
			errs = append(errs, err)
		}
	}
	return nil, errors.Join(errs...)
}

func deliver(sink Observer, e dispatcher.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked on %s: %v", e.Topic, r)
		}
	}()

	switch p := e.Payload.(type) {
	case core.ScanOutcome:
		sink.OnTickResult(p)
	case core.LoginResult:
		sink.OnLoginCompleted(p)
	case core.Position:
		sink.OnLocationChanged(p)
	default:
		return fmt.Errorf("unexpected payload %T on %s", e.Payload, e.Topic)
	}
	return nil
}
