// Package scanloop drives the periodic world scan: every tick pushes the
// latest position to the game session, loots, captures and recycles, then
// reports the outcome to observers.
package scanloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wayfarer-go/wayfarer/internal/cache"
	"github.com/wayfarer-go/wayfarer/internal/gameclient"
	"github.com/wayfarer-go/wayfarer/internal/session"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// DefaultInterval is the time between tick starts.
const DefaultInterval = 10 * time.Second

// Skip reasons reported on ScanOutcome.
const (
	SkipNoPosition = "no position"
	SkipNoSession  = "no session"
)

// Notices reported to observers.
const (
	NoticeNoSupplies    = "Not enough balls to catch creature"
	NoticeServerBusy    = session.MessageServerBusy
	NoticeSessionExpiry = "Session expired. Logging in again"
)

// Session is the part of the session manager a tick drives.
type Session interface {
	HasSession() bool
	SetLocation(ctx context.Context, pos core.Position)
	LootReachableWaypoints(ctx context.Context) ([]core.LootOutcome, error)
	ListNearbyCreatures(ctx context.Context) ([]core.CreatureSighting, error)
	AttemptCapture(ctx context.Context) (*core.CaptureOutcome, error)
	ReduceLowValueInventory(ctx context.Context) (core.SweepReport, error)
	ListDiscoveredGyms(ctx context.Context) ([]gameclient.Gym, error)
	Relogin(ctx context.Context) (<-chan core.LoginResult, error)
}

// PositionSource supplies the latest known position.
type PositionSource interface {
	Latest() (core.Position, bool)
}

// Observer receives tick and re-login results.
type Observer interface {
	OnTickResult(outcome core.ScanOutcome)
	OnLoginCompleted(result core.LoginResult)
}

// Dependencies holds all dependencies for the scan loop
type Dependencies struct {
	Session   Session
	Positions PositionSource
	Observer  Observer
	Logger    *slog.Logger
	Interval  time.Duration
}

// Loop runs ticks on a single goroutine. A tick never overlaps the next one.
type Loop struct {
	deps Dependencies
	log  *slog.Logger
	now  func() time.Time

	ticks cache.SafeCounter

	mu            sync.Mutex
	pending       <-chan core.LoginResult
	reloginWanted bool
	running       bool

	tickCount    metric.Int64Counter
	tickDuration metric.Float64Histogram
	failures     metric.Int64Counter
}

// New creates a scan loop. Metric instruments are taken from the global
// meter provider.
func New(deps Dependencies) (*Loop, error) {
	if deps.Session == nil || deps.Positions == nil {
		return nil, errors.New("scan loop needs a session and a position source")
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	l := &Loop{
		deps: deps,
		log:  deps.Logger.With("component", "scanloop"),
		now:  time.Now,
	}

	m := meter()
	var err error
	l.tickCount, err = m.Int64Counter(
		"scanloop.ticks",
		metric.WithDescription("Ticks run, by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("create tick counter: %w", err)
	}
	l.tickDuration, err = m.Float64Histogram(
		"scanloop.tick.duration",
		metric.WithDescription("Tick duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create tick histogram: %w", err)
	}
	l.failures, err = m.Int64Counter(
		"scanloop.failures",
		metric.WithDescription("Tick steps that failed, by failure class"),
	)
	if err != nil {
		return nil, fmt.Errorf("create failure counter: %w", err)
	}
	return l, nil
}

// Ticks returns how many ticks have started.
func (l *Loop) Ticks() int {
	return l.ticks.Value()
}

// Await hands a login result channel to the loop. The result is consumed
// between ticks and forwarded to the observer.
func (l *Loop) Await(results <-chan core.LoginResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = results
}

// Run ticks until ctx is done. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return errors.New("scan loop already running")
	}
	l.running = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	l.log.Info("Scan loop started", "interval", l.deps.Interval)
	for {
		start := l.now()
		l.Tick(ctx)
		if err := l.wait(ctx, l.deps.Interval-l.now().Sub(start)); err != nil {
			l.log.Info("Scan loop stopped", "ticks", l.Ticks())
			return err
		}
	}
}

// wait sleeps for d, forwarding a pending login result if one arrives.
func (l *Loop) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(max(d, 0))
	defer timer.Stop()

	for {
		l.mu.Lock()
		pending := l.pending
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case res, ok := <-pending:
			l.mu.Lock()
			if l.pending == pending {
				l.pending = nil
			}
			l.mu.Unlock()
			if ok {
				l.loginCompleted(res)
			}
		}
	}
}

func (l *Loop) loginCompleted(res core.LoginResult) {
	l.log.Info("Login completed", "status", res.Status)
	if res.Status != core.LoginServerBusy {
		l.mu.Lock()
		l.reloginWanted = false
		l.mu.Unlock()
	}
	if l.deps.Observer != nil {
		l.deps.Observer.OnLoginCompleted(res)
	}
}

// Tick runs one scan. Panics and errors are contained in the outcome.
func (l *Loop) Tick(ctx context.Context) (out core.ScanOutcome) {
	out.Tick = uint64(l.ticks.Inc())
	out.StartedAt = l.now()

	defer func() {
		if r := recover(); r != nil {
			out.Aborted = true
			out.Errors = append(out.Errors, fmt.Errorf("tick panicked: %v", r))
			l.log.Error("Tick panicked", "tick", out.Tick, "panic", r)
		}
		out.Duration = l.now().Sub(out.StartedAt)
		l.finish(ctx, out)
	}()

	pos, ok := l.deps.Positions.Latest()
	if !ok {
		out.Skipped = true
		out.SkipReason = SkipNoPosition
		return out
	}
	out.Position = pos

	if !l.deps.Session.HasSession() {
		out.Skipped = true
		out.SkipReason = SkipNoSession
		l.retryRelogin(ctx)
		return out
	}

	l.deps.Session.SetLocation(ctx, pos)

	loot, err := l.deps.Session.LootReachableWaypoints(ctx)
	out.Loot = loot
	if l.failed(ctx, &out, "loot", err) {
		return out
	}

	nearby, err := l.deps.Session.ListNearbyCreatures(ctx)
	out.Nearby = nearby
	if l.failed(ctx, &out, "nearby", err) {
		return out
	}

	capture, err := l.deps.Session.AttemptCapture(ctx)
	out.Capture = capture
	if l.failed(ctx, &out, "capture", err) {
		return out
	}

	report, err := l.deps.Session.ReduceLowValueInventory(ctx)
	out.Sweep = report
	if l.failed(ctx, &out, "sweep", err) {
		return out
	}

	_, err = l.deps.Session.ListDiscoveredGyms(ctx)
	l.failed(ctx, &out, "gyms", err)
	return out
}

// failed records err on the outcome and reports whether the tick must stop.
func (l *Loop) failed(ctx context.Context, out *core.ScanOutcome, step string, err error) bool {
	if err == nil {
		return false
	}
	class := classOf(err)
	l.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("class", class),
	))

	switch class {
	case "supplies":
		out.Notices = append(out.Notices, NoticeNoSupplies)
		l.log.Info("Capture skipped", "tick", out.Tick, "error", err)
		return false
	case "expired":
		out.Aborted = true
		out.Errors = append(out.Errors, err)
		out.Notices = append(out.Notices, NoticeSessionExpiry)
		l.log.Warn("Session expired, tick aborted", "tick", out.Tick, "step", step, "error", err)
		l.mu.Lock()
		l.reloginWanted = true
		l.mu.Unlock()
		l.relogin(ctx)
		return true
	case "unavailable":
		out.Aborted = true
		out.Errors = append(out.Errors, err)
		out.Notices = append(out.Notices, NoticeServerBusy)
		l.log.Warn("Remote unavailable, tick aborted", "tick", out.Tick, "step", step, "error", err)
		return true
	case "canceled":
		out.Aborted = true
		out.Errors = append(out.Errors, err)
		l.log.Debug("Tick aborted", "tick", out.Tick, "step", step, "error", err)
		return true
	default:
		out.Errors = append(out.Errors, err)
		l.log.Error("Tick step failed", "tick", out.Tick, "step", step, "error", err)
		return false
	}
}

func classOf(err error) string {
	switch {
	case errors.Is(err, session.ErrInsufficientSupplies):
		return "supplies"
	case errors.Is(err, session.ErrSessionExpired), errors.Is(err, session.ErrNoSession):
		// The tick started with a session, so a missing handle means it was
		// dropped by an earlier step of this tick.
		return "expired"
	case errors.Is(err, session.ErrRemoteUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}

// retryRelogin reissues a re-login after an expiry whose previous attempt
// found the servers busy.
func (l *Loop) retryRelogin(ctx context.Context) {
	l.mu.Lock()
	retry := l.reloginWanted && l.pending == nil
	l.mu.Unlock()
	if retry {
		l.relogin(ctx)
	}
}

func (l *Loop) relogin(ctx context.Context) {
	l.mu.Lock()
	inFlight := l.pending != nil
	l.mu.Unlock()
	if inFlight {
		return
	}

	results, err := l.deps.Session.Relogin(ctx)
	switch {
	case errors.Is(err, session.ErrNoCachedCredentials):
		l.mu.Lock()
		l.reloginWanted = false
		l.mu.Unlock()
		l.log.Warn("No cached credentials, staying signed out")
		return
	case err != nil:
		l.log.Warn("Re-login not started", "error", err)
		return
	}
	l.Await(results)
}

func (l *Loop) finish(ctx context.Context, out core.ScanOutcome) {
	result := "completed"
	switch {
	case out.Skipped:
		result = "skipped"
	case out.Aborted:
		result = "aborted"
	}
	attrs := metric.WithAttributes(attribute.String("result", result))
	l.tickCount.Add(ctx, 1, attrs)
	l.tickDuration.Record(ctx, float64(out.Duration.Microseconds())/1000, attrs)

	if out.Skipped {
		l.log.Debug("Tick skipped", "tick", out.Tick, "reason", out.SkipReason)
	} else {
		l.log.Debug("Tick finished",
			"tick", out.Tick,
			"result", result,
			"looted", len(out.Loot),
			"nearby", len(out.Nearby),
			"captured", out.Capture != nil,
			"evolved", out.Sweep.Evolved,
			"transferred", out.Sweep.Transferred,
			"duration", out.Duration,
		)
	}
	if l.deps.Observer != nil {
		l.deps.Observer.OnTickResult(out)
	}
}
