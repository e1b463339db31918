package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/ports"
)

// OpenSQLite opens the SQLite database at path and migrates the tracker models.
func OpenSQLite(path string) (*gorm.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// SQLite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entities.Event{}, &entities.Task{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}
	return db, nil
}

// GormStore implements ports.Repository for any GORM model M.
type GormStore[M any, PM interface {
	*M
	ports.Entity
}] struct {
	db       *gorm.DB
	notFound error
}

// NewGormStore creates a store for model M
func NewGormStore[M any, PM interface {
	*M
	ports.Entity
}](db *gorm.DB, notFound error) *GormStore[M, PM] {
	return &GormStore[M, PM]{db: db, notFound: notFound}
}

// NewEventGormStore stores events in the events table
func NewEventGormStore(db *gorm.DB) *GormStore[entities.Event, *entities.Event] {
	return NewGormStore[entities.Event, *entities.Event](db, entities.ErrEventNotFound)
}

// NewTaskGormStore stores tasks in the tasks table
func NewTaskGormStore(db *gorm.DB) *GormStore[entities.Task, *entities.Task] {
	return NewGormStore[entities.Task, *entities.Task](db, entities.ErrTaskNotFound)
}

func (s *GormStore[M, PM]) List(ctx context.Context) ([]PM, error) {
	var items []M
	if err := s.db.WithContext(ctx).Order("rowid").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]PM, len(items))
	for i := range items {
		records[i] = PM(&items[i])
	}
	return records, nil
}

func (s *GormStore[M, PM]) Get(ctx context.Context, id string) (PM, error) {
	var item M
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.notFound
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}
	return PM(&item), nil
}

func (s *GormStore[M, PM]) Create(ctx context.Context, record PM) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// Update overwrites every column, zero values included
func (s *GormStore[M, PM]) Update(ctx context.Context, record PM) error {
	result := s.db.WithContext(ctx).Model(new(M)).Where("id = ?", record.Key()).Select("*").Updates(record)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if result.RowsAffected == 0 {
		return s.notFound
	}
	return nil
}

func (s *GormStore[M, PM]) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(new(M), "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if result.RowsAffected == 0 {
		return s.notFound
	}
	return nil
}

func (s *GormStore[M, PM]) DeleteAll(ctx context.Context) error {
	if err := deleteAllRows[M](s.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

func (s *GormStore[M, PM]) ReplaceAll(ctx context.Context, records []PM) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAllRows[M](tx); err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace records: %w", err)
	}
	return nil
}

func (s *GormStore[M, PM]) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func deleteAllRows[M any](db *gorm.DB) error {
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(M)).Error
}
