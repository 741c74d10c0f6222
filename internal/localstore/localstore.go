// Package localstore is the device-local key/value storage used by the
// reading settings, anonymous bookmarks and offline mirror stores.
//
// Every key is owned by exactly one store and always written whole.
package localstore

import (
	"fmt"
	"log"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nissaya/reader/internal/database/settings"
)

// Reserved keys.
const (
	KeyReadingSettings  = "nissaya-reading-settings"
	KeyBookmarks        = "nissaya-bookmarks"
	KeyOfflineTeachings = "nissaya-offline-teachings"

	// KeyLegacyBookmarks is read once as a fallback and never written.
	KeyLegacyBookmarks = "pali-dhamma-bookmarks"
)

// Storage is a synchronous string key/value store.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// SQLiteStorage persists values in a dedicated SQLite file through the
// settings repository.
type SQLiteStorage struct {
	db   *gorm.DB
	repo *settings.Repository
}

// OpenSQLite opens (creating if needed) the local storage file at path.
func OpenSQLite(path string) (*SQLiteStorage, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}
	if err := settings.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate local storage: %w", err)
	}

	log.Printf("Local storage initialized at %s", path)
	return NewSQLiteStorage(db), nil
}

// NewSQLiteStorage wraps an already migrated database.
func NewSQLiteStorage(db *gorm.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db, repo: settings.NewRepository(db)}
}

func (s *SQLiteStorage) Get(key string) (string, bool, error) {
	setting, err := s.repo.GetSetting(key)
	if err != nil {
		return "", false, err
	}
	if setting == nil {
		return "", false, nil
	}
	return setting.Value, true, nil
}

func (s *SQLiteStorage) Set(key, value string) error {
	return s.repo.SetSetting(key, value)
}

func (s *SQLiteStorage) Remove(key string) error {
	return s.repo.DeleteSetting(key)
}

// Close releases the underlying database.
func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MemoryStorage keeps values in a map. Useful for tests and embedding.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string

	// SetErr, when set, is returned from every Set without storing.
	SetErr error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
