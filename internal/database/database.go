// Package database opens the gorm connection shared by the credential store,
// the activity journal and the status monitor.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wayfarer-go/wayfarer/internal/model"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and addresses the database.
type Config struct {
	Driver string
	// SQLitePath is also the fallback when Postgres is unreachable. Empty
	// means a private in-memory database.
	SQLitePath string
	Host       string
	Port       string
	Username   string
	Password   string
	Database   string
	// SlowQuery logs statements slower than this at warn level. Zero disables.
	SlowQuery time.Duration
}

func (c Config) postgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

// Manager owns the connection pool.
type Manager struct {
	DB *gorm.DB
	// Fallback is true when Postgres was requested but SQLite is in use.
	Fallback bool

	cfg   Config
	log   zerolog.Logger
	sqlDB *sql.DB
}

// NewManager creates a manager; nothing is opened until Connect.
func NewManager(log zerolog.Logger, cfg Config) *Manager {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	return &Manager{cfg: cfg, log: log.With().Str("component", "database").Logger()}
}

// Dialect returns the name of the connected driver, or "" before Connect.
func (m *Manager) Dialect() string {
	if m.DB == nil {
		return ""
	}
	return m.DB.Dialector.Name()
}

// Connect opens the configured database. An unreachable Postgres falls back
// to SQLite.
func (m *Manager) Connect() error {
	switch m.cfg.Driver {
	case DriverSQLite:
		return m.connectSQLite()
	case DriverPostgres:
		err := m.connectPostgres()
		if err == nil {
			return nil
		}
		m.log.Error().Err(err).Str("host", m.cfg.Host).Msg("Postgres unavailable, falling back to SQLite")
		m.Fallback = true
		return m.connectSQLite()
	default:
		return fmt.Errorf("unknown database driver: %s", m.cfg.Driver)
	}
}

func (m *Manager) connectPostgres() error {
	m.log.Debug().Str("host", m.cfg.Host).Str("database", m.cfg.Database).Msg("Connecting to Postgres")
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  m.cfg.postgresDSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 newGormLogger(m.log, m.cfg.SlowQuery),
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	m.DB, m.sqlDB = db, sqlDB
	m.log.Info().Msg("Connected to Postgres")
	return nil
}

func (m *Manager) connectSQLite() error {
	db, err := openSQLite(m.cfg.SQLitePath, newGormLogger(m.log, m.cfg.SlowQuery))
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("access sql interface: %w", err)
	}
	m.DB, m.sqlDB = db, sqlDB
	if m.cfg.SQLitePath == "" {
		m.log.Info().Msg("Using in-memory SQLite")
	} else {
		m.log.Info().Str("path", m.cfg.SQLitePath).Msg("Using SQLite")
	}
	return nil
}

// Setup migrates every table.
func (m *Manager) Setup() error {
	if m.DB == nil {
		return errors.New("database not connected")
	}
	return Migrate(m.DB)
}

// Close releases the pool. It is safe to call without Connect.
func (m *Manager) Close() error {
	if m.sqlDB == nil {
		return nil
	}
	err := m.sqlDB.Close()
	m.sqlDB, m.DB = nil, nil
	return err
}

// OpenSQLite opens a database at path, or a private in-memory one when path
// is empty, with query logging silenced.
func OpenSQLite(path string) (*gorm.DB, error) {
	return openSQLite(path, newGormLogger(zerolog.Nop(), 0))
}

func openSQLite(path string, lg *gormLogger) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
		Logger:                 lg,
	})
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA temp_store = MEMORY;",
		"PRAGMA busy_timeout = 5000;",
	}
	if path != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL;")
	} else {
		// each pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("access sql interface: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Migrate creates or updates every table in model.DatabaseModels.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
