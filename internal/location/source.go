package location

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wayfarer-go/wayfarer/internal/geo"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// ErrEmptyTrack is returned when a track has no points.
var ErrEmptyTrack = errors.New("track has no points")

// emitter runs a ticking goroutine between Connect and Disconnect.
type emitter struct {
	mu       sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

func (e *emitter) start(ctx context.Context, interval time.Duration, tick func() bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopChan != nil {
		return
	}
	if interval <= 0 {
		interval = DefaultRequest.Interval
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	e.stopChan, e.done = stop, done

	go func() {
		defer close(done)
		if !tick() {
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !tick() {
					return
				}
			}
		}
	}()
}

func (e *emitter) stop() {
	e.mu.Lock()
	stop, done := e.stopChan, e.done
	e.stopChan, e.done = nil, nil
	e.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// StaticSource reports the same position on every interval.
type StaticSource struct {
	pos core.Position
	emitter
}

// NewStaticSource returns a source pinned to pos.
func NewStaticSource(pos core.Position) *StaticSource {
	return &StaticSource{pos: pos}
}

func (s *StaticSource) Connect(ctx context.Context, req Request, deliver func(core.Position)) error {
	s.start(ctx, req.Interval, func() bool {
		p := s.pos
		p.Timestamp = time.Time{}
		deliver(p)
		return true
	})
	return nil
}

func (s *StaticSource) Disconnect() { s.stop() }

// TrackSource replays a recorded track, one point per interval.
type TrackSource struct {
	points []core.Position
	loop   bool

	mu   sync.Mutex
	next int
	emitter
}

// NewTrackSource replays points in order. With loop set it restarts at the
// first point after the last one; otherwise it stops on the last point.
func NewTrackSource(points []core.Position, loop bool) (*TrackSource, error) {
	if len(points) == 0 {
		return nil, ErrEmptyTrack
	}
	return &TrackSource{points: points, loop: loop}, nil
}

func (s *TrackSource) Connect(ctx context.Context, req Request, deliver func(core.Position)) error {
	s.start(ctx, req.Interval, func() bool {
		s.mu.Lock()
		p := s.points[s.next]
		s.next++
		more := true
		if s.next == len(s.points) {
			if s.loop {
				s.next = 0
			} else {
				s.next = len(s.points) - 1
				more = false
			}
		}
		s.mu.Unlock()

		p.Timestamp = time.Time{}
		deliver(p)
		return more
	})
	return nil
}

func (s *TrackSource) Disconnect() { s.stop() }

// LoadTrack reads a track file. A JSON array of [lon,lat(,elev)] pairs and
// plain text with one "lon,lat[,elev]" per line are both accepted; blank lines
// and lines starting with # are skipped in text files.
func LoadTrack(path string) ([]core.Position, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	return ParseTrack(data)
}

// ParseTrack parses the contents of a track file.
func ParseTrack(data []byte) ([]core.Position, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyTrack
	}
	if trimmed[0] == '[' {
		return geo.ParseTrack(trimmed)
	}

	var points []core.Position
	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		pos, err := geo.PositionFromString(text)
		if err != nil {
			return nil, fmt.Errorf("track line %d: %w", line, err)
		}
		points = append(points, pos)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan track: %w", err)
	}
	if len(points) == 0 {
		return nil, ErrEmptyTrack
	}
	return points, nil
}
