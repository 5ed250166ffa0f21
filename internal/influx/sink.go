package influx

import (
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// PointWriter is satisfied by Manager.
type PointWriter interface {
	WritePoint(bucket string, point *influxdb2_write.Point) error
}

// Sink turns observer callbacks into metric points.
type Sink struct {
	w      PointWriter
	bucket string
	onErr  func(error)
}

// NewSink writes points to bucket through w. onErr may be nil.
func NewSink(w PointWriter, bucket string, onErr func(error)) *Sink {
	if bucket == "" {
		bucket = BucketMetrics
	}
	return &Sink{w: w, bucket: bucket, onErr: onErr}
}

func (s *Sink) write(p *influxdb2_write.Point) {
	if err := s.w.WritePoint(s.bucket, p); err != nil && s.onErr != nil {
		s.onErr(err)
	}
}

// OnTickResult writes a scan_tick point.
func (s *Sink) OnTickResult(o core.ScanOutcome) {
	s.write(TickPoint(o))
}

// OnLoginCompleted writes a login point.
func (s *Sink) OnLoginCompleted(r core.LoginResult) {
	s.write(influxdb2_write.NewPoint(
		"login",
		map[string]string{"status": string(r.Status)},
		map[string]any{"count": 1},
		time.Now(),
	))
}

// OnLocationChanged writes a position point.
func (s *Sink) OnLocationChanged(pos core.Position) {
	at := pos.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	s.write(influxdb2_write.NewPoint(
		"position",
		nil,
		map[string]any{
			"lat": pos.Latitude,
			"lon": pos.Longitude,
			"alt": pos.Altitude,
		},
		at,
	))
}

// TickPoint summarises one tick as a point tagged by its result.
func TickPoint(o core.ScanOutcome) *influxdb2_write.Point {
	result := "completed"
	switch {
	case o.Skipped:
		result = "skipped"
	case o.Aborted:
		result = "aborted"
	}

	xp := 0
	for _, l := range o.Loot {
		xp += l.Experience
	}
	captured := 0
	if o.Capture != nil && o.Capture.Status == core.CaptureSuccess {
		captured = 1
	}

	at := o.StartedAt
	if at.IsZero() {
		at = time.Now()
	}
	return influxdb2_write.NewPoint(
		"scan_tick",
		map[string]string{"result": result},
		map[string]any{
			"tick":        int64(o.Tick),
			"duration_ms": float64(o.Duration.Microseconds()) / 1000,
			"looted":      len(o.Loot),
			"experience":  xp,
			"nearby":      len(o.Nearby),
			"captured":    captured,
			"evolved":     o.Sweep.Evolved,
			"transferred": o.Sweep.Transferred,
			"failed":      o.Sweep.Failed,
			"errors":      len(o.Errors),
		},
		at,
	)
}
