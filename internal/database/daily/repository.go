// Package daily provides database operations for the daily featured teaching.
//
// Dates are calendar days stored as UTC midnight (see entities.CalendarDate).
package daily

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nissaya/reader/internal/entities"
)

// Repository handles daily featured database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new daily featured repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) withTeaching(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Teaching").Preload("Teaching.Category")
}

// FindByDate returns the entry featured on date, or nil.
func (r *Repository) FindByDate(ctx context.Context, date datatypes.Date) (*entities.DailyFeatured, error) {
	var entries []entities.DailyFeatured
	if err := r.withTeaching(ctx).Where("featured_date = ?", date).Limit(1).Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Latest returns the entry with the most recent featured date, or nil when
// nothing was ever featured.
func (r *Repository) Latest(ctx context.Context) (*entities.DailyFeatured, error) {
	var entries []entities.DailyFeatured
	err := r.withTeaching(ctx).Order("featured_date DESC").Limit(1).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Upsert features teachingID on date, replacing any entry already there.
func (r *Repository) Upsert(ctx context.Context, teachingID string, date datatypes.Date, excerpt *string) (*entities.DailyFeatured, error) {
	entry := entities.DailyFeatured{
		TeachingID:   teachingID,
		FeaturedDate: date,
		Excerpt:      excerpt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "featured_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"teaching_id", "excerpt"}),
	}).Create(&entry).Error
	if err != nil {
		return nil, err
	}
	return r.FindByDate(ctx, date)
}

// LastFeatured maps each teaching id to the most recent date it was featured.
func (r *Repository) LastFeatured(ctx context.Context) (map[string]time.Time, error) {
	var entries []entities.DailyFeatured
	err := r.db.WithContext(ctx).
		Select("teaching_id", "featured_date").
		Order("featured_date DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	last := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		if _, seen := last[e.TeachingID]; !seen {
			last[e.TeachingID] = time.Time(e.FeaturedDate)
		}
	}
	return last, nil
}
