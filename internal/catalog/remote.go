// Package catalog is the reader's access layer over the backend row store:
// categories, published teachings, the daily featured teaching, search and
// the admin mutations.
//
// Remote talks to the repositories directly and caches nothing. Client
// routes the same reads through a query cache and invalidates the affected
// keys after each successful admin write.
package catalog

import (
	"context"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/nissaya/reader/internal/database/paragraphs"
	"github.com/nissaya/reader/internal/database/teachings"
	"github.com/nissaya/reader/internal/entities"
)

// SearchLimit caps the number of search results.
const SearchLimit = 20

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]entities.Category, error)
}

type TeachingStore interface {
	ListPublished(ctx context.Context, categoryID string) ([]entities.Teaching, error)
	ListAll(ctx context.Context) ([]entities.Teaching, error)
	GetTeaching(ctx context.Context, id string) (*entities.Teaching, error)
	GetPublished(ctx context.Context, id string) (*entities.Teaching, error)
	ViewCount(ctx context.Context, id string) (int, bool, error)
	SetViewCount(ctx context.Context, id string, count int) error
	Search(ctx context.Context, query string, limit int) ([]entities.Teaching, error)
	CreateTeaching(ctx context.Context, teaching *entities.Teaching) error
	UpdateTeaching(ctx context.Context, id string, patch teachings.Patch) (*entities.Teaching, error)
}

type ParagraphStore interface {
	CreateParagraph(ctx context.Context, paragraph *entities.Paragraph) error
	UpdateParagraph(ctx context.Context, id string, patch paragraphs.Patch) (*entities.Paragraph, error)
	DeleteParagraph(ctx context.Context, id string) error
}

type DailyStore interface {
	FindByDate(ctx context.Context, date datatypes.Date) (*entities.DailyFeatured, error)
	Latest(ctx context.Context) (*entities.DailyFeatured, error)
	Upsert(ctx context.Context, teachingID string, date datatypes.Date, excerpt *string) (*entities.DailyFeatured, error)
}

// Remote performs every read and write against the backend, uncached.
type Remote struct {
	categories CategoryStore
	teachings  TeachingStore
	paragraphs ParagraphStore
	daily      DailyStore
}

func NewRemote(categories CategoryStore, teachings TeachingStore, paragraphs ParagraphStore, daily DailyStore) *Remote {
	return &Remote{
		categories: categories,
		teachings:  teachings,
		paragraphs: paragraphs,
		daily:      daily,
	}
}

// ListCategories returns categories by sort order, undefined orders last.
func (r *Remote) ListCategories(ctx context.Context) ([]entities.Category, error) {
	return nonNil(r.categories.ListCategories(ctx))
}

// ListTeachings returns published teachings newest first. An empty
// categoryID lists all categories.
func (r *Remote) ListTeachings(ctx context.Context, categoryID string) ([]entities.Teaching, error) {
	return nonNil(r.teachings.ListPublished(ctx, categoryID))
}

// ListDrafts returns every teaching including unpublished ones, for the
// admin dashboard.
func (r *Remote) ListDrafts(ctx context.Context) ([]entities.Teaching, error) {
	return nonNil(r.teachings.ListAll(ctx))
}

// GetTeaching loads a published teaching with its category and ordered
// paragraphs, then records one view. It returns (nil, nil) when no published
// teaching has that id.
//
// The view counter is read-then-write: two concurrent reads can both write
// the same count and lose a view. A failed counter write is logged and
// does not fail the read.
func (r *Remote) GetTeaching(ctx context.Context, id string) (*entities.Teaching, error) {
	teaching, err := r.teachings.GetPublished(ctx, id)
	if err != nil || teaching == nil {
		return nil, err
	}

	views := teaching.ViewCount + 1
	if err := r.teachings.SetViewCount(ctx, id, views); err != nil {
		log.Printf("Catalog: failed to record view of teaching %s: %v", id, err)
		return teaching, nil
	}
	teaching.ViewCount = views
	return teaching, nil
}

// Teaching loads a published teaching without recording a view.
func (r *Remote) Teaching(ctx context.Context, id string) (*entities.Teaching, error) {
	return r.teachings.GetPublished(ctx, id)
}

// GetDraft loads any teaching, unpublished included, for the admin editor.
// No view is recorded.
func (r *Remote) GetDraft(ctx context.Context, id string) (*entities.Teaching, error) {
	return r.teachings.GetTeaching(ctx, id)
}

// RecordView adds one view to the stored counter and returns the new count.
// Like GetTeaching it reads then writes. found is false when the teaching
// no longer exists.
func (r *Remote) RecordView(ctx context.Context, id string) (views int, found bool, err error) {
	current, found, err := r.teachings.ViewCount(ctx, id)
	if err != nil || !found {
		return 0, found, err
	}
	views = current + 1
	if err := r.teachings.SetViewCount(ctx, id, views); err != nil {
		return current, true, err
	}
	return views, true, nil
}

// DailyFeatured returns the entry featured on today's calendar date. When
// nothing is featured today it falls back to the most recent entry, and
// returns (nil, nil) when nothing was ever featured.
func (r *Remote) DailyFeatured(ctx context.Context, today time.Time) (*entities.DailyFeatured, error) {
	entry, err := r.daily.FindByDate(ctx, entities.CalendarDate(today))
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return entry, nil
	}
	return r.daily.Latest(ctx)
}

// Search matches published teachings by title or source, ignoring case,
// newest first and at most SearchLimit results. A blank query returns an
// empty list without querying the backend.
func (r *Remote) Search(ctx context.Context, query string) ([]entities.Teaching, error) {
	if strings.TrimSpace(query) == "" {
		return []entities.Teaching{}, nil
	}
	return nonNil(r.teachings.Search(ctx, query, SearchLimit))
}

func (r *Remote) CreateTeaching(ctx context.Context, teaching *entities.Teaching) error {
	return r.teachings.CreateTeaching(ctx, teaching)
}

func (r *Remote) UpdateTeaching(ctx context.Context, id string, patch teachings.Patch) (*entities.Teaching, error) {
	return r.teachings.UpdateTeaching(ctx, id, patch)
}

func (r *Remote) CreateParagraph(ctx context.Context, paragraph *entities.Paragraph) error {
	return r.paragraphs.CreateParagraph(ctx, paragraph)
}

func (r *Remote) UpdateParagraph(ctx context.Context, id string, patch paragraphs.Patch) (*entities.Paragraph, error) {
	return r.paragraphs.UpdateParagraph(ctx, id, patch)
}

func (r *Remote) DeleteParagraph(ctx context.Context, id string) error {
	return r.paragraphs.DeleteParagraph(ctx, id)
}

// SetDailyFeatured features teachingID on the calendar date of day.
func (r *Remote) SetDailyFeatured(ctx context.Context, teachingID string, day time.Time, excerpt *string) (*entities.DailyFeatured, error) {
	return r.daily.Upsert(ctx, teachingID, entities.CalendarDate(day), excerpt)
}

func nonNil[T any](list []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}
