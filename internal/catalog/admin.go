package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nissaya/reader/internal/bookmarks"
	"github.com/nissaya/reader/internal/database/paragraphs"
	"github.com/nissaya/reader/internal/database/teachings"
	"github.com/nissaya/reader/internal/entities"
	"github.com/nissaya/reader/internal/querycache"
)

var ErrTitleRequired = errors.New("teaching title is required")

// SaveError reports where a multi-step admin save stopped. Writes made
// before the failing step stay committed.
type SaveError struct {
	TeachingID string
	Paragraph  int // index of the failing paragraph, -1 when the teaching write failed
	Committed  int // writes that succeeded before the failure
	Err        error
}

func (e *SaveError) Error() string {
	if e.Paragraph < 0 {
		return fmt.Sprintf("failed to save teaching: %v", e.Err)
	}
	return fmt.Sprintf("failed to save paragraph %d of teaching %s after %d committed writes: %v",
		e.Paragraph, e.TeachingID, e.Committed, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// The admin writes below pass backend errors through unmodified and only
// invalidate cache keys after the write succeeded.

func (c *Client) CreateTeaching(ctx context.Context, teaching *entities.Teaching) error {
	if err := c.remote.CreateTeaching(ctx, teaching); err != nil {
		return err
	}
	c.cache.InvalidateOp(OpTeachings)
	c.cache.InvalidateOp(OpSearch)
	c.cache.Invalidate(querycache.Key{Op: OpDrafts})
	return nil
}

// UpdateTeaching also invalidates every cached value that embeds teaching
// rows: the featured entry and users' bookmark lists.
func (c *Client) UpdateTeaching(ctx context.Context, id string, patch teachings.Patch) (*entities.Teaching, error) {
	teaching, err := c.remote.UpdateTeaching(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.cache.InvalidateOp(OpTeachings)
	c.cache.Invalidate(querycache.Key{Op: OpTeaching, Param: id})
	c.cache.InvalidateOp(OpSearch)
	c.cache.Invalidate(querycache.Key{Op: OpDrafts})
	c.cache.InvalidateOp(OpDailyFeatured)
	c.cache.InvalidateOp(bookmarks.OpBookmarks)
	return teaching, nil
}

func (c *Client) CreateParagraph(ctx context.Context, paragraph *entities.Paragraph) error {
	if err := c.remote.CreateParagraph(ctx, paragraph); err != nil {
		return err
	}
	c.invalidateTeaching(paragraph.TeachingID)
	return nil
}

func (c *Client) UpdateParagraph(ctx context.Context, teachingID, id string, patch paragraphs.Patch) (*entities.Paragraph, error) {
	paragraph, err := c.remote.UpdateParagraph(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidateTeaching(teachingID)
	if paragraph.TeachingID != teachingID {
		c.invalidateTeaching(paragraph.TeachingID)
	}
	return paragraph, nil
}

func (c *Client) DeleteParagraph(ctx context.Context, teachingID, id string) error {
	if err := c.remote.DeleteParagraph(ctx, id); err != nil {
		return err
	}
	c.invalidateTeaching(teachingID)
	return nil
}

// SetDailyFeatured features a teaching on the calendar date of day.
func (c *Client) SetDailyFeatured(ctx context.Context, teachingID string, day time.Time, excerpt *string) (*entities.DailyFeatured, error) {
	entry, err := c.remote.SetDailyFeatured(ctx, teachingID, day.In(c.loc), excerpt)
	if err != nil {
		return nil, err
	}
	c.cache.InvalidateOp(OpDailyFeatured)
	return entry, nil
}

func (c *Client) invalidateTeaching(id string) {
	c.cache.Invalidate(querycache.Key{Op: OpTeaching, Param: id})
}

// ParagraphDraft is one paragraph row of the admin editor. An empty ID
// creates the paragraph; Deleted removes an existing one.
type ParagraphDraft struct {
	ID                 string `json:"id,omitempty"`
	Deleted            bool   `json:"deleted,omitempty"`
	SortOrder          int    `json:"sort_order"`
	PaliText           string `json:"pali_text"`
	PaliRomanized      string `json:"pali_romanized,omitempty"`
	MyanmarTranslation string `json:"myanmar_translation"`
	MyanmarExplanation string `json:"myanmar_explanation,omitempty"`
}

// TeachingDraft is the full state of the admin editor. An empty ID creates
// the teaching. Empty optional strings are stored as NULL.
type TeachingDraft struct {
	ID              string           `json:"id,omitempty"`
	Title           string           `json:"title"`
	TitleEn         string           `json:"title_en,omitempty"`
	CategoryID      string           `json:"category_id,omitempty"`
	Source          string           `json:"source,omitempty"`
	PaliAudioURL    string           `json:"pali_audio_url,omitempty"`
	MyanmarAudioURL string           `json:"myanmar_audio_url,omitempty"`
	IsPublished     bool             `json:"is_published"`
	IsDailyDhamma   bool             `json:"is_daily_dhamma"`
	Paragraphs      []ParagraphDraft `json:"paragraphs"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (d TeachingDraft) patch() teachings.Patch {
	return teachings.Patch{
		Title:           &d.Title,
		TitleEn:         &d.TitleEn,
		CategoryID:      &d.CategoryID,
		Source:          &d.Source,
		PaliAudioURL:    &d.PaliAudioURL,
		MyanmarAudioURL: &d.MyanmarAudioURL,
		IsPublished:     &d.IsPublished,
		IsDailyDhamma:   &d.IsDailyDhamma,
	}
}

func (p ParagraphDraft) patch() paragraphs.Patch {
	return paragraphs.Patch{
		SortOrder:          &p.SortOrder,
		PaliText:           &p.PaliText,
		PaliRomanized:      &p.PaliRomanized,
		MyanmarTranslation: &p.MyanmarTranslation,
		MyanmarExplanation: &p.MyanmarExplanation,
	}
}

// SaveTeaching writes the teaching and then each paragraph change in order,
// one backend write per step. It stops at the first failure and returns a
// *SaveError; nothing already written is rolled back.
func (c *Client) SaveTeaching(ctx context.Context, draft TeachingDraft) (*entities.Teaching, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, ErrTitleRequired
	}

	var teaching *entities.Teaching
	if draft.ID == "" {
		teaching = &entities.Teaching{
			Title:           draft.Title,
			TitleEn:         optional(draft.TitleEn),
			CategoryID:      optional(draft.CategoryID),
			Source:          optional(draft.Source),
			PaliAudioURL:    optional(draft.PaliAudioURL),
			MyanmarAudioURL: optional(draft.MyanmarAudioURL),
			IsPublished:     draft.IsPublished,
			IsDailyDhamma:   draft.IsDailyDhamma,
		}
		if err := c.CreateTeaching(ctx, teaching); err != nil {
			return nil, &SaveError{Paragraph: -1, Err: err}
		}
	} else {
		updated, err := c.UpdateTeaching(ctx, draft.ID, draft.patch())
		if err != nil {
			return nil, &SaveError{TeachingID: draft.ID, Paragraph: -1, Err: err}
		}
		teaching = updated
	}

	committed := 1
	for i, p := range draft.Paragraphs {
		var err error
		switch {
		case p.Deleted && p.ID == "":
			continue
		case p.Deleted:
			err = c.DeleteParagraph(ctx, teaching.ID, p.ID)
		case p.ID == "":
			err = c.CreateParagraph(ctx, &entities.Paragraph{
				TeachingID:         teaching.ID,
				SortOrder:          p.SortOrder,
				PaliText:           p.PaliText,
				PaliRomanized:      optional(p.PaliRomanized),
				MyanmarTranslation: p.MyanmarTranslation,
				MyanmarExplanation: optional(p.MyanmarExplanation),
			})
		default:
			_, err = c.UpdateParagraph(ctx, teaching.ID, p.ID, p.patch())
		}
		if err != nil {
			return teaching, &SaveError{TeachingID: teaching.ID, Paragraph: i, Committed: committed, Err: err}
		}
		committed++
	}

	return teaching, nil
}
