// Package categories provides database operations for teaching categories.
//
// # Usage
//
//	repo := categories.NewRepository(db)
//	list, err := repo.ListCategories(ctx)
package categories

import (
	"context"

	"gorm.io/gorm"

	"github.com/nissaya/reader/internal/entities"
)

// categoryOrder puts NULL sort orders last and breaks ties by creation time,
// then id, so a single listing is always deterministic.
const categoryOrder = "sort_order IS NULL ASC, sort_order ASC, created_at ASC, id ASC"

// Repository handles category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListCategories returns every category ordered by sort order.
func (r *Repository) ListCategories(ctx context.Context) ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.WithContext(ctx).Order(categoryOrder).Find(&categories).Error
	return categories, err
}

// CreateCategory inserts a category. Used by seeding and tests; category
// editing belongs to the admin tooling.
func (r *Repository) CreateCategory(ctx context.Context, category *entities.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}
