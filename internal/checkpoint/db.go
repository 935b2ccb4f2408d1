package checkpoint

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pratama/articleforge/internal/config"
	"github.com/pratama/articleforge/internal/domain"
)

// DBStore keeps checkpoint state in a relational database. Useful when
// several machines share one checkpoint, or when the output directory
// is not a stable place for a side file.
type DBStore struct {
	mu        sync.Mutex
	db        *gorm.DB
	processed map[string]struct{}
	failed    map[string]struct{}
}

// OpenDBStore connects to the configured database, migrates the
// checkpoint table and loads existing state into memory.
func OpenDBStore(cfg *config.CheckpointConfig) (*DBStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "checkpoint.db"
		}
		dialector = sqlite.Open(path)
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("checkpoint driver postgres requires a dsn")
		}
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown checkpoint driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect checkpoint database: %w", err)
	}

	if err := db.AutoMigrate(&domain.CheckpointRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate checkpoint table: %w", err)
	}

	s := &DBStore{
		db:        db,
		processed: make(map[string]struct{}),
		failed:    make(map[string]struct{}),
	}

	var records []domain.CheckpointRecord
	if err := db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load checkpoint records: %w", err)
	}
	for _, rec := range records {
		switch rec.State {
		case domain.CheckpointProcessed:
			s.processed[rec.Key] = struct{}{}
		case domain.CheckpointFailed:
			s.failed[rec.Key] = struct{}{}
		}
	}
	return s, nil
}

func (s *DBStore) IsDone(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processed[key]; ok {
		return true
	}
	_, ok := s.failed[key]
	return ok
}

func (s *DBStore) MarkProcessed(key string) {
	s.mu.Lock()
	s.processed[key] = struct{}{}
	delete(s.failed, key)
	s.mu.Unlock()
}

func (s *DBStore) MarkFailed(key string) {
	s.mu.Lock()
	s.failed[key] = struct{}{}
	s.mu.Unlock()
}

// Persist upserts every in-memory entry. The table always reflects the
// latest full snapshot after a successful call.
func (s *DBStore) Persist() error {
	s.mu.Lock()
	records := make([]domain.CheckpointRecord, 0, len(s.processed)+len(s.failed))
	now := time.Now().UTC()
	for k := range s.processed {
		records = append(records, domain.CheckpointRecord{Key: k, State: domain.CheckpointProcessed, UpdatedAt: now})
	}
	for k := range s.failed {
		records = append(records, domain.CheckpointRecord{Key: k, State: domain.CheckpointFailed, UpdatedAt: now})
	}
	s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			err := tx.Where("key = ?", rec.Key).
				Assign(domain.CheckpointRecord{State: rec.State, UpdatedAt: rec.UpdatedAt}).
				FirstOrCreate(&domain.CheckpointRecord{}, domain.CheckpointRecord{Key: rec.Key}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *DBStore) Processed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.processed)
}

func (s *DBStore) Failed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.failed)
}

func (s *DBStore) ClearFailed() error {
	s.mu.Lock()
	s.failed = make(map[string]struct{})
	s.mu.Unlock()
	return s.db.
		Where("state = ?", domain.CheckpointFailed).
		Delete(&domain.CheckpointRecord{}).Error
}

func (s *DBStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
