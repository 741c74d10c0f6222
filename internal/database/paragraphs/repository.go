// Package paragraphs provides database operations for teaching paragraphs.
package paragraphs

import (
	"context"

	"gorm.io/gorm"

	"github.com/nissaya/reader/internal/entities"
)

// Patch holds the editable paragraph columns. Nil fields are left
// untouched; a pointer to "" clears a nullable column.
type Patch struct {
	SortOrder          *int    `json:"sort_order,omitempty"`
	PaliText           *string `json:"pali_text,omitempty"`
	PaliRomanized      *string `json:"pali_romanized,omitempty"`
	MyanmarTranslation *string `json:"myanmar_translation,omitempty"`
	MyanmarExplanation *string `json:"myanmar_explanation,omitempty"`
}

func (p Patch) columns() map[string]any {
	cols := make(map[string]any)
	if p.SortOrder != nil {
		cols["sort_order"] = *p.SortOrder
	}
	if p.PaliText != nil {
		cols["pali_text"] = *p.PaliText
	}
	if p.PaliRomanized != nil {
		if *p.PaliRomanized == "" {
			cols["pali_romanized"] = nil
		} else {
			cols["pali_romanized"] = *p.PaliRomanized
		}
	}
	if p.MyanmarTranslation != nil {
		cols["myanmar_translation"] = *p.MyanmarTranslation
	}
	if p.MyanmarExplanation != nil {
		if *p.MyanmarExplanation == "" {
			cols["myanmar_explanation"] = nil
		} else {
			cols["myanmar_explanation"] = *p.MyanmarExplanation
		}
	}
	return cols
}

// Repository handles paragraph database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new paragraphs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateParagraph(ctx context.Context, paragraph *entities.Paragraph) error {
	return r.db.WithContext(ctx).Create(paragraph).Error
}

// UpdateParagraph applies patch and returns the stored row.
// It returns gorm.ErrRecordNotFound when no paragraph has that id.
func (r *Repository) UpdateParagraph(ctx context.Context, id string, patch Patch) (*entities.Paragraph, error) {
	db := r.db.WithContext(ctx)

	if cols := patch.columns(); len(cols) > 0 {
		result := db.Model(&entities.Paragraph{}).Where("id = ?", id).Updates(cols)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	var paragraph entities.Paragraph
	if err := db.Where("id = ?", id).Take(&paragraph).Error; err != nil {
		return nil, err
	}
	return &paragraph, nil
}

// DeleteParagraph removes a paragraph. Deleting a missing id is not an error.
func (r *Repository) DeleteParagraph(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Paragraph{}).Error
}
