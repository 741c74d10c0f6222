// Package teachings provides database operations for teachings.
//
// Reader-facing reads (ListPublished, GetPublished, Search) return only
// published teachings; ListAll and GetTeaching include drafts for admins.
// Single-row reads return (nil, nil) when nothing matches.
//
// # Usage
//
//	repo := teachings.NewRepository(db)
//	list, err := repo.ListPublished(ctx, categoryID)
//	teaching, err := repo.GetPublished(ctx, id)
package teachings

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nissaya/reader/internal/entities"
)

const (
	newestFirst    = "created_at DESC, id DESC"
	paragraphOrder = "sort_order ASC, created_at ASC, id ASC"
)

// Patch holds the admin-editable teaching columns. Nil fields are left
// untouched; a pointer to "" clears a nullable column.
type Patch struct {
	Title           *string `json:"title,omitempty"`
	TitleEn         *string `json:"title_en,omitempty"`
	CategoryID      *string `json:"category_id,omitempty"`
	Source          *string `json:"source,omitempty"`
	PaliAudioURL    *string `json:"pali_audio_url,omitempty"`
	MyanmarAudioURL *string `json:"myanmar_audio_url,omitempty"`
	IsPublished     *bool   `json:"is_published,omitempty"`
	IsDailyDhamma   *bool   `json:"is_daily_dhamma,omitempty"`
}

func nullable(v *string) any {
	if *v == "" {
		return nil
	}
	return *v
}

func (p Patch) columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.TitleEn != nil {
		cols["title_en"] = nullable(p.TitleEn)
	}
	if p.CategoryID != nil {
		cols["category_id"] = nullable(p.CategoryID)
	}
	if p.Source != nil {
		cols["source"] = nullable(p.Source)
	}
	if p.PaliAudioURL != nil {
		cols["pali_audio_url"] = nullable(p.PaliAudioURL)
	}
	if p.MyanmarAudioURL != nil {
		cols["myanmar_audio_url"] = nullable(p.MyanmarAudioURL)
	}
	if p.IsPublished != nil {
		cols["is_published"] = *p.IsPublished
	}
	if p.IsDailyDhamma != nil {
		cols["is_daily_dhamma"] = *p.IsDailyDhamma
	}
	return cols
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p.columns()) == 0
}

// Repository handles teaching database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new teachings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListPublished returns published teachings newest first, each with its
// category. An empty categoryID lists every category.
func (r *Repository) ListPublished(ctx context.Context, categoryID string) ([]entities.Teaching, error) {
	var teachings []entities.Teaching
	query := r.db.WithContext(ctx).Preload("Category").
		Where("is_published = ?", true).
		Order(newestFirst)
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	err := query.Find(&teachings).Error
	return teachings, err
}

// ListAll returns every teaching including unpublished drafts, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]entities.Teaching, error) {
	var teachings []entities.Teaching
	err := r.db.WithContext(ctx).Preload("Category").Order(newestFirst).Find(&teachings).Error
	return teachings, err
}

// ListDailyPool returns published teachings flagged for daily featuring.
func (r *Repository) ListDailyPool(ctx context.Context) ([]entities.Teaching, error) {
	var teachings []entities.Teaching
	err := r.db.WithContext(ctx).
		Where("is_published = ? AND is_daily_dhamma = ?", true, true).
		Order("created_at ASC, id ASC").
		Find(&teachings).Error
	return teachings, err
}

// GetTeaching loads any teaching, drafts included, with its category and
// its paragraphs in display order.
func (r *Repository) GetTeaching(ctx context.Context, id string) (*entities.Teaching, error) {
	return r.get(r.db.WithContext(ctx).Where("id = ?", id))
}

// GetPublished is GetTeaching restricted to published teachings. A draft
// reads as missing.
func (r *Repository) GetPublished(ctx context.Context, id string) (*entities.Teaching, error) {
	return r.get(r.db.WithContext(ctx).Where("id = ? AND is_published = ?", id, true))
}

func (r *Repository) get(query *gorm.DB) (*entities.Teaching, error) {
	var found []entities.Teaching
	err := query.
		Preload("Category").
		Preload("Paragraphs", func(db *gorm.DB) *gorm.DB {
			return db.Order(paragraphOrder)
		}).
		Limit(1).
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	teaching := found[0]
	if teaching.Paragraphs == nil {
		teaching.Paragraphs = []entities.Paragraph{}
	}
	return &teaching, nil
}

// ViewCount reads the stored view counter. found is false when no teaching
// has that id.
func (r *Repository) ViewCount(ctx context.Context, id string) (count int, found bool, err error) {
	var counts []int
	err = r.db.WithContext(ctx).Model(&entities.Teaching{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("view_count", &counts).Error
	if err != nil || len(counts) == 0 {
		return 0, false, err
	}
	return counts[0], true, nil
}

// SetViewCount writes an absolute view count without touching updated_at.
func (r *Repository) SetViewCount(ctx context.Context, id string, count int) error {
	return r.db.WithContext(ctx).Model(&entities.Teaching{}).
		Where("id = ?", id).
		UpdateColumn("view_count", count).Error
}

// IncrementDownloadCount bumps the advisory download counter.
func (r *Repository) IncrementDownloadCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&entities.Teaching{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search matches published teachings whose title or source contains query,
// ignoring case across Pāḷi and Myanmar letters. Paragraph bodies are not
// searched. The connection must come from database.Dialector, which
// provides unicode_lower.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]entities.Teaching, error) {
	var teachings []entities.Teaching
	pattern := "%" + escapeLike(query) + "%"
	q := r.db.WithContext(ctx).Preload("Category").
		Where("is_published = ?", true).
		Where(`unicode_lower(title) LIKE unicode_lower(?) ESCAPE '\' OR unicode_lower(COALESCE(source, '')) LIKE unicode_lower(?) ESCAPE '\'`, pattern, pattern).
		Order(newestFirst)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&teachings).Error
	return teachings, err
}

// CreateTeaching inserts a teaching row. Associations are never written.
func (r *Repository) CreateTeaching(ctx context.Context, teaching *entities.Teaching) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(teaching).Error
}

// UpdateTeaching applies patch to the teaching and returns the stored row.
// It returns gorm.ErrRecordNotFound when no teaching has that id.
func (r *Repository) UpdateTeaching(ctx context.Context, id string, patch Patch) (*entities.Teaching, error) {
	db := r.db.WithContext(ctx)

	if cols := patch.columns(); len(cols) > 0 {
		result := db.Model(&entities.Teaching{}).Where("id = ?", id).Updates(cols)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	var teaching entities.Teaching
	if err := db.Where("id = ?", id).Take(&teaching).Error; err != nil {
		return nil, err
	}
	return &teaching, nil
}
