// Package monitor periodically samples the client's health into a status
// file and, when a database is connected, a status_snapshots row.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/wayfarer-go/wayfarer/internal/model"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// DefaultInterval is used when Dependencies.Interval is not set.
const DefaultInterval = 30 * time.Second

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	DB         *gorm.DB
	Logger     *slog.Logger
	State      func() string
	Tracked    func() (waypoints, creatures, gyms int)
	Ticks      func() int
	Pending    func() int
	StatusFile string
	Interval   time.Duration
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}

	lastTick time.Duration
	lastPos  core.Position
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// OnTickResult records the duration of the latest tick.
func (s *Service) OnTickResult(o core.ScanOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = o.Duration
}

func (s *Service) OnLoginCompleted(core.LoginResult) {}

// OnLocationChanged records the latest position.
func (s *Service) OnLocationChanged(pos core.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPos = pos
}

// Status samples the current health.
func (s *Service) Status() model.StatusSnapshot {
	snap := model.StatusSnapshot{Time: time.Now().UTC()}
	if s.deps.State != nil {
		snap.SessionState = s.deps.State()
	}
	if s.deps.Tracked != nil {
		snap.TrackedWaypoints, snap.TrackedCreatures, snap.TrackedGyms = s.deps.Tracked()
	}
	if s.deps.Ticks != nil {
		snap.Ticks = s.deps.Ticks()
	}
	if s.deps.Pending != nil {
		snap.JournalQueue = s.deps.Pending()
	}
	s.mu.RLock()
	snap.LastTickMs = float32(s.lastTick.Microseconds()) / 1000
	snap.Latitude, snap.Longitude = s.lastPos.Latitude, s.lastPos.Longitude
	s.mu.RUnlock()
	return snap
}

// WriteStatus writes one sample to the status file and the database.
func (s *Service) WriteStatus() (model.StatusSnapshot, error) {
	snap := s.Status()
	if s.deps.StatusFile != "" {
		if err := WriteFile(s.deps.StatusFile, snap); err != nil {
			return snap, err
		}
	}
	if s.deps.DB != nil {
		if err := s.deps.DB.Create(&snap).Error; err != nil {
			return snap, fmt.Errorf("write status snapshot: %w", err)
		}
	}
	return snap, nil
}

// WriteFile replaces path with the indented JSON of snap.
func WriteFile(path string, snap model.StatusSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create status dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write status file: %w", err)
	}
	return os.Rename(tmp, path)
}

// ReadFile loads a status file written by WriteFile.
func ReadFile(path string) (model.StatusSnapshot, error) {
	var snap model.StatusSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read status file: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode status file %s: %w", path, err)
	}
	return snap, nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		logger := s.deps.Logger.With("component", "monitor")
		logger.Debug("Starting status monitor", "interval", s.deps.Interval, "file", s.deps.StatusFile)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := s.WriteStatus(); err != nil {
					logger.Error("Error writing status", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for the goroutine to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
