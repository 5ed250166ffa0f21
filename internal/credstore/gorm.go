package credstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wayfarer-go/wayfarer/internal/model"
)

// Database keeps credentials in the credentials table.
type Database struct {
	db *gorm.DB
}

var _ Store = (*Database)(nil)

// NewDatabase returns a store backed by db. The schema must already be migrated.
func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (s *Database) Get(ctx context.Context, key string) (string, error) {
	var cred model.Credential
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("database credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read credential %q: %w", key, err)
	}
	return cred.Value, nil
}

func (s *Database) Put(ctx context.Context, key string, value string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.Credential{Name: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("write credential %q: %w", key, err)
	}
	return nil
}

func (s *Database) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("name = ?", key).Delete(&model.Credential{}).Error
	if err != nil {
		return fmt.Errorf("delete credential %q: %w", key, err)
	}
	return nil
}
