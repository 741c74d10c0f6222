package catalog

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/nissaya/reader/internal/entities"
	"github.com/nissaya/reader/internal/querycache"
)

// Query cache operations.
const (
	OpCategories    = "categories"
	OpTeachings     = "teachings"
	OpTeaching      = "teaching"
	OpDailyFeatured = "daily-featured"
	OpSearch        = "search-teachings"
	OpDrafts        = "drafts"
)

// Reader is the read side shared by Remote and Client.
type Reader interface {
	ListCategories(ctx context.Context) ([]entities.Category, error)
	ListTeachings(ctx context.Context, categoryID string) ([]entities.Teaching, error)
	GetTeaching(ctx context.Context, id string) (*entities.Teaching, error)
	Search(ctx context.Context, query string) ([]entities.Teaching, error)
}

type ClientOptions struct {
	Now      func() time.Time
	Location *time.Location // calendar used for "today"; defaults to time.Local
}

// Client serves catalog reads from the query cache and keeps it coherent
// with its own writes.
type Client struct {
	remote *Remote
	cache  *querycache.Cache
	now    func() time.Time
	loc    *time.Location
}

func NewClient(remote *Remote, cache *querycache.Cache, opts ClientOptions) *Client {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Client{remote: remote, cache: cache, now: opts.Now, loc: opts.Location}
}

// Cache exposes the underlying query cache.
func (c *Client) Cache() *querycache.Cache {
	return c.cache
}

// Today returns the current time in the reader's calendar.
func (c *Client) Today() time.Time {
	return c.now().In(c.loc)
}

func (c *Client) ListCategories(ctx context.Context) ([]entities.Category, error) {
	return querycache.Fetch(ctx, c.cache, querycache.Key{Op: OpCategories}, c.remote.ListCategories)
}

func (c *Client) ListTeachings(ctx context.Context, categoryID string) ([]entities.Teaching, error) {
	return querycache.Fetch(ctx, c.cache, querycache.Key{Op: OpTeachings, Param: categoryID},
		func(ctx context.Context) ([]entities.Teaching, error) {
			return c.remote.ListTeachings(ctx, categoryID)
		})
}

func (c *Client) ListDrafts(ctx context.Context) ([]entities.Teaching, error) {
	return querycache.Fetch(ctx, c.cache, querycache.Key{Op: OpDrafts}, c.remote.ListDrafts)
}

// Teaching serves a cached published teaching without recording a view.
func (c *Client) Teaching(ctx context.Context, id string) (*entities.Teaching, error) {
	return querycache.Fetch(ctx, c.cache, querycache.Key{Op: OpTeaching, Param: id},
		func(ctx context.Context) (*entities.Teaching, error) {
			return c.remote.Teaching(ctx, id)
		})
}

// GetTeaching serves the teaching body from the cache and records one view
// on every call. The returned copy carries the fresh view count; the cached
// value is left untouched. A failed counter write is logged and does not
// fail the read.
func (c *Client) GetTeaching(ctx context.Context, id string) (*entities.Teaching, error) {
	cached, err := c.Teaching(ctx, id)
	if err != nil || cached == nil {
		return nil, err
	}

	teaching := *cached
	views, found, err := c.remote.RecordView(ctx, id)
	switch {
	case err != nil:
		log.Printf("Catalog: failed to record view of teaching %s: %v", id, err)
	case found:
		teaching.ViewCount = views
	}
	return &teaching, nil
}

// GetDraft reads any teaching, drafts included, straight from the backend.
func (c *Client) GetDraft(ctx context.Context, id string) (*entities.Teaching, error) {
	return c.remote.GetDraft(ctx, id)
}

// DailyFeatured returns today's featured entry, keyed by today's date so a
// new day is a new key.
func (c *Client) DailyFeatured(ctx context.Context) (*entities.DailyFeatured, error) {
	today := c.Today()
	return querycache.Fetch(ctx, c.cache, querycache.Key{Op: OpDailyFeatured, Param: today.Format(entities.FeaturedDateLayout)},
		func(ctx context.Context) (*entities.DailyFeatured, error) {
			return c.remote.DailyFeatured(ctx, today)
		})
}

// Search returns cached results per query string. Blank queries return an
// empty list without touching the cache or the backend.
func (c *Client) Search(ctx context.Context, query string) ([]entities.Teaching, error) {
	if strings.TrimSpace(query) == "" {
		return []entities.Teaching{}, nil
	}
	return querycache.Fetch(ctx, c.cache, querycache.Key{Op: OpSearch, Param: query},
		func(ctx context.Context) ([]entities.Teaching, error) {
			return c.remote.Search(ctx, query)
		})
}
