package location

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wayfarer-go/wayfarer/internal/geo"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

type recorder struct {
	name  string
	order *[]string
	mu    sync.Mutex
	got   []core.Position
}

func (r *recorder) OnLocationChanged(pos core.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, pos)
	if r.order != nil {
		*r.order = append(*r.order, r.name)
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

// manualSource hands the deliver callback to the test.
type manualSource struct {
	deliver     func(core.Position)
	connects    int
	disconnects int
	err         error
}

func (s *manualSource) Connect(_ context.Context, _ Request, deliver func(core.Position)) error {
	if s.err != nil {
		return s.err
	}
	s.connects++
	s.deliver = deliver
	return nil
}

func (s *manualSource) Disconnect() { s.disconnects++ }

func newTestBroadcaster(src Source, req Request) (*Broadcaster, *time.Time) {
	b := NewBroadcaster(src, req, nil)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }
	return b, &clock
}

func TestBroadcaster_RegisterIsIdempotent(t *testing.T) {
	src := &manualSource{}
	b, _ := newTestBroadcaster(src, Request{})
	r := &recorder{}

	b.Register(r)
	b.Register(r)
	assert.Equal(t, 1, b.Observers())

	require.NoError(t, b.Start(context.Background()))
	src.deliver(core.Position{Latitude: 1, Longitude: 2})
	assert.Equal(t, 1, r.count())

	b.Unregister(r)
	b.Unregister(r)
	assert.Equal(t, 0, b.Observers())
	src.deliver(core.Position{Latitude: 3, Longitude: 4})
	assert.Equal(t, 1, r.count())
}

func TestBroadcaster_RegistrationOrder(t *testing.T) {
	src := &manualSource{}
	b, _ := newTestBroadcaster(src, Request{})
	var order []string
	first := &recorder{name: "first", order: &order}
	second := &recorder{name: "second", order: &order}
	b.Register(first)
	b.Register(second)

	require.NoError(t, b.Start(context.Background()))
	src.deliver(core.Position{Latitude: 1})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBroadcaster_LatestAndTimestamp(t *testing.T) {
	src := &manualSource{}
	b, clock := newTestBroadcaster(src, Request{})

	_, ok := b.Latest()
	assert.False(t, ok)

	require.NoError(t, b.Start(context.Background()))
	src.deliver(core.Position{Latitude: 10, Longitude: 20})

	pos, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, 10.0, pos.Latitude)
	assert.Equal(t, *clock, pos.Timestamp)

	stamped := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	src.deliver(core.Position{Latitude: 11, Timestamp: stamped})
	pos, _ = b.Latest()
	assert.Equal(t, stamped, pos.Timestamp)
}

func TestBroadcaster_DropsFastUpdates(t *testing.T) {
	src := &manualSource{}
	b, clock := newTestBroadcaster(src, Request{Interval: 10 * time.Second, FastestInterval: 5 * time.Second})
	r := &recorder{}
	b.Register(r)
	require.NoError(t, b.Start(context.Background()))

	src.deliver(core.Position{Latitude: 1})
	*clock = clock.Add(2 * time.Second)
	src.deliver(core.Position{Latitude: 2})
	assert.Equal(t, 1, r.count())

	*clock = clock.Add(4 * time.Second)
	src.deliver(core.Position{Latitude: 3})
	assert.Equal(t, 2, r.count())

	pos, _ := b.Latest()
	assert.Equal(t, 3.0, pos.Latitude)
}

func TestBroadcaster_StartStop(t *testing.T) {
	src := &manualSource{}
	b, _ := newTestBroadcaster(src, Request{})
	r := &recorder{}
	b.Register(r)

	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	assert.Equal(t, 1, src.connects)
	assert.True(t, b.Running())

	b.Stop()
	b.Stop()
	assert.Equal(t, 1, src.disconnects)
	assert.False(t, b.Running())

	require.NoError(t, b.Start(context.Background()))
	src.deliver(core.Position{Latitude: 1})
	assert.Equal(t, 1, r.count())
	assert.Equal(t, 1, b.Observers())
}

func TestBroadcaster_StartError(t *testing.T) {
	src := &manualSource{err: assert.AnError}
	b, _ := newTestBroadcaster(src, Request{})

	assert.ErrorIs(t, b.Start(context.Background()), assert.AnError)
	assert.False(t, b.Running())
}

func TestStaticSource(t *testing.T) {
	pos := core.Position{Latitude: 48.85, Longitude: 2.35}
	b := NewBroadcaster(NewStaticSource(pos), Request{Interval: 10 * time.Millisecond}, nil)
	r := &recorder{}
	b.Register(r)

	require.NoError(t, b.Start(context.Background()))
	assert.Eventually(t, func() bool { return r.count() >= 2 }, time.Second, 5*time.Millisecond)
	b.Stop()

	latest, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, 48.85, latest.Latitude)
	assert.False(t, latest.Timestamp.IsZero())

	n := r.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, r.count())
}

func TestTrackSource_StopsAtEnd(t *testing.T) {
	points := []core.Position{{Latitude: 1}, {Latitude: 2}, {Latitude: 3}}
	src, err := NewTrackSource(points, false)
	require.NoError(t, err)

	b := NewBroadcaster(src, Request{Interval: 5 * time.Millisecond}, nil)
	r := &recorder{}
	b.Register(r)
	require.NoError(t, b.Start(context.Background()))
	defer b.Stop()

	assert.Eventually(t, func() bool { return r.count() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, r.count())

	latest, _ := b.Latest()
	assert.Equal(t, 3.0, latest.Latitude)
}

func TestTrackSource_Loops(t *testing.T) {
	src, err := NewTrackSource([]core.Position{{Latitude: 1}, {Latitude: 2}}, true)
	require.NoError(t, err)

	b := NewBroadcaster(src, Request{Interval: 5 * time.Millisecond}, nil)
	r := &recorder{}
	b.Register(r)
	require.NoError(t, b.Start(context.Background()))
	defer b.Stop()

	assert.Eventually(t, func() bool { return r.count() >= 4 }, time.Second, 5*time.Millisecond)
}

func TestNewTrackSource_Empty(t *testing.T) {
	_, err := NewTrackSource(nil, true)
	assert.ErrorIs(t, err, ErrEmptyTrack)
}

func TestParseTrack(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		points, err := ParseTrack([]byte(`[[13.4, 52.5], [13.5, 52.6, 40]]`))
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, 52.6, points[1].Latitude)
		assert.Equal(t, 40.0, points[1].Altitude)
	})

	t.Run("text", func(t *testing.T) {
		points, err := ParseTrack([]byte("# morning walk\n13.4,52.5\n\n 13.5, 52.6, 40\n"))
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, 13.5, points[1].Longitude)
	})

	t.Run("bad line", func(t *testing.T) {
		_, err := ParseTrack([]byte("13.4,52.5\nnorth,east\n"))
		assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseTrack([]byte("  \n# nothing\n"))
		assert.ErrorIs(t, err, ErrEmptyTrack)
		_, err = ParseTrack(nil)
		assert.ErrorIs(t, err, ErrEmptyTrack)
	})
}

func TestLoadTrack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.txt")
	require.NoError(t, os.WriteFile(path, []byte("2.35,48.85\n2.36,48.86\n"), 0o644))

	points, err := LoadTrack(path)
	require.NoError(t, err)
	assert.Len(t, points, 2)

	_, err = LoadTrack(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
