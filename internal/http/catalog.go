package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nissaya/reader/internal/catalog"
	"github.com/nissaya/reader/internal/entities"
)

// CatalogReader is the cached read side of the catalog.
type CatalogReader interface {
	catalog.Reader
	DailyFeatured(ctx context.Context) (*entities.DailyFeatured, error)
}

type CatalogController struct {
	reader CatalogReader
}

func NewCatalogController(reader CatalogReader) *CatalogController {
	return &CatalogController{reader: reader}
}

// ListCategories returns every category in display order.
// GET /api/categories
func (cc *CatalogController) ListCategories(c *gin.Context) {
	categories, err := cc.reader.ListCategories(c.Request.Context())
	respondQuery(c, categories, err, "categories")
}

// ListTeachings returns published teachings, newest first.
// GET /api/teachings?category=<id>
func (cc *CatalogController) ListTeachings(c *gin.Context) {
	teachings, err := cc.reader.ListTeachings(c.Request.Context(), c.Query("category"))
	respondQuery(c, teachings, err, "teachings")
}

// GetTeaching returns one teaching with its category and ordered paragraphs.
// GET /api/teachings/:id
func (cc *CatalogController) GetTeaching(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	teaching, err := cc.reader.GetTeaching(c.Request.Context(), id)
	respondFound(c, teaching, err, "teaching")
}

// DailyFeatured returns today's featured teaching, or the latest one.
// GET /api/daily
func (cc *CatalogController) DailyFeatured(c *gin.Context) {
	entry, err := cc.reader.DailyFeatured(c.Request.Context())
	respondFound(c, entry, err, "daily featured teaching")
}

// Search matches published teachings by title or source.
// GET /api/search?q=<query>
func (cc *CatalogController) Search(c *gin.Context) {
	results, err := cc.reader.Search(c.Request.Context(), c.Query("q"))
	respondQuery(c, results, err, "search results")
}
