package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FeaturedDateLayout is the calendar-day layout used for featured dates and cache keys.
const FeaturedDateLayout = "2006-01-02"

type Category struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:256;not null" json:"name"` // Myanmar display name
	NameEn      *string   `gorm:"size:256" json:"name_en"`
	Description *string   `gorm:"type:text" json:"description"`
	Icon        *string   `gorm:"size:32" json:"icon"`
	SortOrder   *int      `gorm:"index" json:"sort_order"` // NULL sorts after every defined order
	CreatedAt   time.Time `json:"created_at"`
}

type Teaching struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Title           string    `gorm:"size:512;not null" json:"title"`
	TitleEn         *string   `gorm:"size:512" json:"title_en"`
	CategoryID      *string   `gorm:"index;size:36" json:"category_id"`
	Source          *string   `gorm:"size:512" json:"source"`
	PaliAudioURL    *string   `gorm:"size:2048" json:"pali_audio_url"`
	MyanmarAudioURL *string   `gorm:"size:2048" json:"myanmar_audio_url"`
	IsDailyDhamma   bool      `gorm:"default:false" json:"is_daily_dhamma"`
	IsPublished     bool      `gorm:"index;default:false" json:"is_published"`
	DownloadCount   int       `gorm:"default:0" json:"download_count"` // Advisory only
	ViewCount       int       `gorm:"default:0" json:"view_count"`     // Read-then-write, may undercount
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relationships, populated only by the reads that join them
	Category   *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Paragraphs []Paragraph `gorm:"foreignKey:TeachingID" json:"paragraphs,omitempty"`
}

type Paragraph struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	TeachingID         string    `gorm:"index;size:36;not null" json:"teaching_id"`
	SortOrder          int       `gorm:"default:0" json:"sort_order"`
	PaliText           string    `gorm:"type:text;not null" json:"pali_text"`
	PaliRomanized      *string   `gorm:"type:text" json:"pali_romanized"`
	MyanmarTranslation string    `gorm:"type:text;not null" json:"myanmar_translation"`
	MyanmarExplanation *string   `gorm:"type:text" json:"myanmar_explanation"`
	CreatedAt          time.Time `json:"created_at"`
}

// Bookmark is the server-side bookmark of a signed-in user.
// At most one row exists per (user, teaching).
type Bookmark struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_bookmarks_user_teaching" json:"user_id"`
	TeachingID string    `gorm:"size:36;not null;uniqueIndex:idx_bookmarks_user_teaching" json:"teaching_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	Teaching   *Teaching `gorm:"foreignKey:TeachingID" json:"teaching,omitempty"`
}

// DailyFeatured designates the teaching highlighted on one calendar date.
type DailyFeatured struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	TeachingID   string         `gorm:"index;size:36;not null" json:"teaching_id"`
	FeaturedDate datatypes.Date `gorm:"uniqueIndex;not null" json:"featured_date"`
	Excerpt      *string        `gorm:"type:text" json:"excerpt"`
	CreatedAt    time.Time      `json:"created_at"`
	Teaching     *Teaching      `gorm:"foreignKey:TeachingID" json:"teaching,omitempty"`
}

// FeaturedOn returns the featured date formatted as YYYY-MM-DD.
func (d DailyFeatured) FeaturedOn() string {
	return time.Time(d.FeaturedDate).Format(FeaturedDateLayout)
}

// CalendarDate converts the calendar day of t (in t's own location) into the
// UTC-midnight representation stored in featured_date columns.
func CalendarDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func (Category) TableName() string {
	return "categories"
}

func (Teaching) TableName() string {
	return "teachings"
}

func (Paragraph) TableName() string {
	return "paragraphs"
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

func (DailyFeatured) TableName() string {
	return "daily_featured"
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

func (t *Teaching) BeforeCreate(tx *gorm.DB) error {
	newID(&t.ID)
	return nil
}

func (p *Paragraph) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	newID(&b.ID)
	return nil
}

func (d *DailyFeatured) BeforeCreate(tx *gorm.DB) error {
	newID(&d.ID)
	return nil
}
