// Package bookmarks provides database operations for server-side bookmarks.
//
// A row is keyed on (user_id, teaching_id); Add and Remove each issue one
// statement for that pair.
//
// # Usage
//
//	repo := bookmarks.NewRepository(db)
//	list, err := repo.ListForUser(ctx, userID)
//	err = repo.Add(ctx, userID, teachingID)
package bookmarks

import (
	"context"

	"gorm.io/gorm"

	"github.com/nissaya/reader/internal/entities"
)

// Repository handles bookmark database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new bookmarks repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForUser returns a user's bookmarks newest first, each joined with its
// teaching and the teaching's category.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]entities.Bookmark, error) {
	var bookmarks []entities.Bookmark
	err := r.db.WithContext(ctx).
		Preload("Teaching").
		Preload("Teaching.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&bookmarks).Error
	return bookmarks, err
}

// Find returns the bookmark for (userID, teachingID), or nil.
func (r *Repository) Find(ctx context.Context, userID, teachingID string) (*entities.Bookmark, error) {
	var bookmarks []entities.Bookmark
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND teaching_id = ?", userID, teachingID).
		Limit(1).
		Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}
	if len(bookmarks) == 0 {
		return nil, nil
	}
	return &bookmarks[0], nil
}

// Add inserts a bookmark. A duplicate (user, teaching) pair violates the
// unique index and the driver error is returned as is.
func (r *Repository) Add(ctx context.Context, userID, teachingID string) error {
	return r.db.WithContext(ctx).Create(&entities.Bookmark{
		UserID:     userID,
		TeachingID: teachingID,
	}).Error
}

// Remove deletes the bookmark for (userID, teachingID).
func (r *Repository) Remove(ctx context.Context, userID, teachingID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND teaching_id = ?", userID, teachingID).
		Delete(&entities.Bookmark{}).Error
}
