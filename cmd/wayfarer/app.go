package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/wayfarer-go/wayfarer/internal/config"
	"github.com/wayfarer-go/wayfarer/internal/credstore"
	"github.com/wayfarer-go/wayfarer/internal/database"
	"github.com/wayfarer-go/wayfarer/internal/dispatcher"
	"github.com/wayfarer-go/wayfarer/internal/gameclient"
	"github.com/wayfarer-go/wayfarer/internal/gameclient/httpapi"
	"github.com/wayfarer-go/wayfarer/internal/gameclient/sim"
	"github.com/wayfarer-go/wayfarer/internal/influx"
	"github.com/wayfarer-go/wayfarer/internal/location"
	"github.com/wayfarer-go/wayfarer/internal/logging"
	"github.com/wayfarer-go/wayfarer/internal/monitor"
	"github.com/wayfarer-go/wayfarer/internal/notify"
	"github.com/wayfarer-go/wayfarer/internal/notify/websocket"
	intOtel "github.com/wayfarer-go/wayfarer/internal/otel"
	"github.com/wayfarer-go/wayfarer/internal/scanloop"
	"github.com/wayfarer-go/wayfarer/internal/session"
	"github.com/wayfarer-go/wayfarer/internal/storage"
	"github.com/wayfarer-go/wayfarer/pkg/core"
)

// app owns every long-lived component of one process run.
type app struct {
	startedAt time.Time

	logFile *os.File
	graylog io.Closer
	slogs   *logging.SlogManager
	log     *slog.Logger
	zlog    zerolog.Logger
	otel    *intOtel.Provider

	db      *database.Manager
	store   credstore.Store
	world   *sim.World
	client  gameclient.Client
	session *session.Manager

	positions  *location.Broadcaster
	dispatcher *dispatcher.Dispatcher
	hub        *notify.Hub
	journal    storage.Backend
	influx     *influx.Manager
	stream     *websocket.Sink
	monitor    *monitor.Service
	loop       *scanloop.Loop
}

// newApp sets up logging, the database when something needs it, and the
// credential store. console receives human-readable logs.
func newApp(console io.Writer) (*app, error) {
	a := &app{startedAt: time.Now()}
	if err := a.setupLogging(console); err != nil {
		return nil, err
	}
	if err := a.setupDatabase(); err != nil {
		a.close()
		return nil, err
	}
	if err := a.setupCredentials(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) setupLogging(console io.Writer) error {
	level := viper.GetString("logLevel")

	a.slogs = logging.NewSlogManager()
	a.slogs.Setup(logging.Options{Console: console, Level: level})
	a.log = a.slogs.Logger()

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	path := logging.LogFilePath(logsDir, AppName, a.startedAt)
	if _, err := os.Stat(path); err == nil {
		_ = os.Rename(path, path+".old")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	a.logFile = f

	var graylog io.Writer
	if viper.GetBool("graylog.enabled") {
		w, err := logging.NewGraylogWriter(viper.GetString("graylog.address"), viper.GetString("graylog.facility"))
		if err != nil {
			a.log.Warn("Graylog disabled", "error", err)
		} else {
			graylog, a.graylog = w, w
		}
	}

	otelCfg := config.GetOTelConfig()
	a.otel, err = intOtel.New(context.Background(), intOtel.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		ServiceVersion: BuildVersion,
		BatchTimeout:   otelCfg.BatchTimeout,
		LogWriter:      f,
		Endpoint:       otelCfg.Endpoint,
		Insecure:       otelCfg.Insecure,
	})
	if err != nil {
		a.log.Error("Failed to initialize OTel provider", "error", err)
		a.otel = nil
	}

	opts := logging.Options{
		Console: console,
		File:    f,
		Graylog: graylog,
		Level:   level,
		Context: func() []slog.Attr {
			if a.session == nil {
				return nil
			}
			return a.session.LogAttrs()
		},
	}
	if a.otel != nil && a.otel.Enabled() {
		opts.Provider = a.otel.LoggerProvider()
	}
	a.slogs.Setup(opts)
	a.log = a.slogs.Logger()
	a.zlog = logging.NewZerolog(level, console, f)

	a.log.Info("Logging to file", "path", path, "version", BuildVersion)
	return nil
}

func (a *app) needsDatabase() bool {
	return config.GetCredentialsConfig().Store == "database" ||
		config.GetStorageConfig().Type == "database"
}

func (a *app) setupDatabase() error {
	if !a.needsDatabase() {
		return nil
	}
	a.db = database.NewManager(a.zlog, database.Config(config.GetDatabaseConfig()))
	if err := a.db.Connect(); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := a.db.Setup(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func (a *app) setupCredentials() error {
	cfg := config.GetCredentialsConfig()
	switch cfg.Store {
	case "memory":
		a.store = credstore.NewMemory()
	case "file", "":
		a.store = credstore.NewFile(cfg.Dir)
	case "database":
		a.store = credstore.NewDatabase(a.db.DB)
	default:
		return fmt.Errorf("unknown credentials store: %s", cfg.Store)
	}
	return nil
}

// useClient picks the game backend. A nil world selects the configured adapter.
func (a *app) useClient(world *sim.World) error {
	game := config.GetGameConfig()
	switch {
	case world != nil:
		a.world, a.client = world, world
	case game.Adapter == "http":
		a.client = httpapi.New(game.BaseURL, game.APIKey, game.CallTimeout)
	case game.Adapter == "sim":
		loc := config.GetLocationConfig()
		w := sim.NewWorld()
		sim.Populate(w, core.Position{Latitude: loc.Latitude, Longitude: loc.Longitude}, rand.New(rand.NewPCG(uint64(a.startedAt.UnixNano()), 0)))
		a.world, a.client = w, w
	default:
		return fmt.Errorf("unknown game adapter: %s", game.Adapter)
	}

	a.session = session.NewManager(session.Dependencies{
		Client: a.client,
		Store:  a.store,
		Logger: a.log,
		Config: session.Config{
			CallTimeout:   game.CallTimeout,
			LoginTimeout:  game.LoginTimeout,
			LootRadius:    game.LootRadius,
			EncounterPace: game.EncounterPace,
			ActionPace:    game.ActionPace,
		},
	})
	return nil
}

// positionSource builds the configured location source.
func positionSource() (location.Source, error) {
	loc := config.GetLocationConfig()
	switch loc.Source {
	case "static", "":
		return location.NewStaticSource(core.Position{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Altitude:  loc.Altitude,
		}), nil
	case "track":
		points, err := location.LoadTrack(loc.Track)
		if err != nil {
			return nil, err
		}
		src, err := location.NewTrackSource(points, loc.Loop)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown location source: %s", loc.Source)
	}
}

// setupPipeline wires the observer hub, its sinks and the scan loop.
func (a *app) setupPipeline(ctx context.Context, src location.Source) error {
	loc := config.GetLocationConfig()
	a.positions = location.NewBroadcaster(src, location.Request{
		Interval:        loc.Interval,
		FastestInterval: loc.FastestInterval,
	}, a.log)

	var err error
	a.dispatcher, err = dispatcher.New(logging.NewComponentLogger(a.zlog, "dispatcher"))
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}
	a.hub = notify.NewHub(a.dispatcher, a.log, viper.GetInt("notify.bufferSize"))
	a.hub.Add(notify.NewLogSink(a.log))

	gormDB := a.gormDB()
	a.journal, err = storage.NewBackend(config.GetStorageConfig(), gormDB, a.zlog)
	if err != nil {
		return err
	}
	if err := a.journal.Init(); err != nil {
		return fmt.Errorf("init journal: %w", err)
	}
	a.hub.Add(storage.NewSink(a.journal, a.log))

	if viper.GetBool("influx.enabled") {
		m := influx.NewManager(a.zlog, viper.GetString("influx.backupFile"))
		if err := m.Connect(ctx); err != nil {
			a.log.Warn("InfluxDB disabled", "error", err)
		} else {
			a.influx = m
			a.hub.Add(influx.NewSink(m, m.Bucket(), func(err error) {
				a.log.Debug("Failed to write metric", "error", err)
			}))
		}
	}

	if stream := config.GetStreamConfig(); stream.Enabled {
		s := websocket.New(websocket.Config{
			URL:     stream.URL,
			Secret:  stream.Secret,
			Client:  AppName,
			Version: BuildVersion,
		}, a.log)
		if err := s.Open(); err != nil {
			a.log.Warn("Observer stream unavailable", "url", stream.URL, "error", err)
		} else {
			a.stream = s
			a.hub.Add(s)
		}
	}

	a.loop, err = scanloop.New(scanloop.Dependencies{
		Session:   a.session,
		Positions: a.positions,
		Observer:  a.hub,
		Logger:    a.log,
		Interval:  config.GetLoopConfig().Interval,
	})
	if err != nil {
		return err
	}

	if mon := config.GetMonitorConfig(); mon.Enabled {
		a.monitor = monitor.NewService(monitor.Dependencies{
			DB:     gormDB,
			Logger: a.log,
			State:  func() string { return a.session.State().String() },
			Tracked: func() (int, int, int) {
				return a.session.TrackedCounts()
			},
			Ticks:      a.loop.Ticks,
			Pending:    a.journal.Pending,
			StatusFile: mon.StatusFile,
			Interval:   mon.Interval,
		})
		a.hub.Add(a.monitor)
		if err := os.MkdirAll(filepath.Dir(mon.StatusFile), 0o755); err != nil {
			return fmt.Errorf("create status dir: %w", err)
		}
		if err := a.monitor.Start(); err != nil {
			return err
		}
	}

	a.positions.Register(a.hub)
	return a.positions.Start(ctx)
}

func (a *app) gormDB() *gorm.DB {
	if a.db == nil {
		return nil
	}
	return a.db.DB
}

// close releases everything in reverse order of construction. Buffered
// notifications are drained before the sinks they feed are closed.
func (a *app) close() {
	var errs []error
	if a.positions != nil {
		a.positions.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.monitor != nil {
		if _, err := a.monitor.WriteStatus(); err != nil {
			errs = append(errs, err)
		}
		a.monitor.Stop()
	}
	if a.stream != nil {
		errs = append(errs, a.stream.Close())
	}
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	if a.influx != nil {
		errs = append(errs, a.influx.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.slogs != nil {
		errs = append(errs, a.slogs.Flush(ctx))
	}
	if a.otel != nil {
		errs = append(errs, a.otel.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil && a.log != nil {
		a.log.Warn("Errors during shutdown", "error", err)
	}
	if a.graylog != nil {
		_ = a.graylog.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
