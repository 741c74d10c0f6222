// Package settings provides key/value row operations backing device-local
// storage. Values are opaque strings written whole.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	setting, err := repo.GetSetting("nissaya-reading-settings")
package settings

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nissaya/reader/internal/entities"
)

// Repository handles key/value row operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the settings table on a standalone database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&entities.Setting{})
}

// GetSetting retrieves a row by key. A missing key returns (nil, nil).
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var settings []entities.Setting
	if err := r.db.Where("key = ?", key).Limit(1).Find(&settings).Error; err != nil {
		return nil, err
	}
	if len(settings) == 0 {
		return nil, nil
	}
	return &settings[0], nil
}

// SetSetting replaces the value stored under key.
func (r *Repository) SetSetting(key, value string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entities.Setting{Key: key, Value: value}).Error
}

// DeleteSetting removes a row by key. Removing a missing key is not an error.
func (r *Repository) DeleteSetting(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}
