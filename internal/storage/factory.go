package storage

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/wayfarer-go/wayfarer/internal/config"
	gormstorage "github.com/wayfarer-go/wayfarer/internal/storage/gorm"
	"github.com/wayfarer-go/wayfarer/internal/storage/memory"
)

// NewBackend creates a journal backend based on configuration. db is only
// used by the database backend.
func NewBackend(cfg config.StorageConfig, db *gorm.DB, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "database":
		if db == nil {
			return nil, fmt.Errorf("database journal requested but no database is connected")
		}
		return gormstorage.New(gormstorage.Dependencies{
			DB:            db,
			FlushInterval: cfg.FlushInterval,
			Logger:        log,
		}), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
