package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nissaya/reader/internal/auth"
	"github.com/nissaya/reader/internal/bookmarks"
	"github.com/nissaya/reader/internal/entities"
)

// BookmarkList is the bookmark read for the current identity. Bookmarks is
// only filled for signed-in users; local bookmarks are ids only.
type BookmarkList struct {
	Source      string              `json:"source"`
	TeachingIDs []string            `json:"teaching_ids"`
	Bookmarks   []entities.Bookmark `json:"bookmarks,omitempty"`
}

type BookmarkToggle struct {
	TeachingID string `json:"teaching_id"`
	Bookmarked bool   `json:"bookmarked"`
}

type BookmarksController struct {
	selector bookmarks.Selector
}

func NewBookmarksController(selector bookmarks.Selector) *BookmarksController {
	return &BookmarksController{selector: selector}
}

// List returns the active store's bookmarks.
// GET /api/bookmarks
func (bc *BookmarksController) List(c *gin.Context) {
	identity := auth.GetIdentity(c)

	if _, signedIn := identity.UserID(); signedIn && bc.selector.Server != nil {
		store := bc.selector.Server.For(identity)
		list, err := store.List(c.Request.Context())
		if err != nil {
			respondQuery(c, nil, err, "bookmarks")
			return
		}
		ids := make([]string, 0, len(list))
		for _, b := range list {
			ids = append(ids, b.TeachingID)
		}
		respondReady(c, BookmarkList{Source: "server", TeachingIDs: ids, Bookmarks: list})
		return
	}

	respondReady(c, BookmarkList{Source: "local", TeachingIDs: bc.selector.Local.TeachingIDs()})
}

// Toggle flips one teaching in the active store.
// POST /api/bookmarks/:teachingId/toggle
func (bc *BookmarksController) Toggle(c *gin.Context) {
	teachingID, ok := requireParam(c, "teachingId")
	if !ok {
		return
	}

	store := bc.selector.Active(auth.GetIdentity(c))
	bookmarked, err := store.Toggle(c.Request.Context(), teachingID)
	if err != nil {
		if errors.Is(err, bookmarks.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
			return
		}
		respondInternalError(c, err, "toggle bookmark")
		return
	}

	c.JSON(http.StatusOK, BookmarkToggle{TeachingID: teachingID, Bookmarked: bookmarked})
}
