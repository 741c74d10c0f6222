package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nissaya/reader/internal/audit"
	"github.com/nissaya/reader/internal/auth"
	"github.com/nissaya/reader/internal/catalog"
	"github.com/nissaya/reader/internal/database/paragraphs"
	"github.com/nissaya/reader/internal/database/teachings"
	"github.com/nissaya/reader/internal/entities"
)

// Rotator features today's teaching on demand.
type Rotator interface {
	RunNow(ctx context.Context) (*entities.DailyFeatured, bool, error)
}

// AuditLog records admin edits and reads them back.
type AuditLog interface {
	Record(ctx context.Context, userID, action, entityType, entityID, description string, err error)
	GetEvents(ctx context.Context, userID string, limit, offset int) ([]entities.AuditEvent, int64, error)
	History(ctx context.Context, entityType, entityID string) ([]entities.AuditEvent, error)
}

// AuditPage is one page of the admin edit log.
type AuditPage struct {
	Total  int64                 `json:"total"`
	Events []entities.AuditEvent `json:"events"`
}

// DailyRequest features a teaching on a date (YYYY-MM-DD, default today).
type DailyRequest struct {
	TeachingID string  `json:"teaching_id" binding:"required"`
	Date       string  `json:"date"`
	Excerpt    *string `json:"excerpt"`
}

// ParagraphRequest is the body of a paragraph create.
type ParagraphRequest struct {
	SortOrder          int     `json:"sort_order"`
	PaliText           string  `json:"pali_text" binding:"required"`
	PaliRomanized      *string `json:"pali_romanized"`
	MyanmarTranslation string  `json:"myanmar_translation" binding:"required"`
	MyanmarExplanation *string `json:"myanmar_explanation"`
}

// SaveErrorResponse tells the editor which step of a save failed and how
// many writes already went through.
type SaveErrorResponse struct {
	Error      string `json:"error"`
	TeachingID string `json:"teaching_id,omitempty"`
	Paragraph  int    `json:"paragraph"`
	Committed  int    `json:"committed"`
}

type AdminController struct {
	client  *catalog.Client
	rotator Rotator
	audit   AuditLog
}

// NewAdminController wires the admin endpoints. rotator may be nil when the
// daily rotation is disabled, auditLog when edits are not recorded.
func NewAdminController(client *catalog.Client, rotator Rotator, auditLog AuditLog) *AdminController {
	return &AdminController{client: client, rotator: rotator, audit: auditLog}
}

func (ac *AdminController) record(c *gin.Context, action, entityType, entityID, description string, err error) {
	if ac.audit == nil {
		return
	}
	userID, _ := auth.GetIdentity(c).UserID()
	ac.audit.Record(c.Request.Context(), userID, action, entityType, entityID, description, err)
}

// ListDrafts returns every teaching, published or not.
// GET /api/admin/teachings
func (ac *AdminController) ListDrafts(c *gin.Context) {
	list, err := ac.client.ListDrafts(c.Request.Context())
	respondQuery(c, list, err, "drafts")
}

// GetDraft returns one teaching, published or not, without counting a view.
// GET /api/admin/teachings/:id
func (ac *AdminController) GetDraft(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	teaching, err := ac.client.GetDraft(c.Request.Context(), id)
	respondFound(c, teaching, err, "teaching")
}

// CreateTeaching saves a new teaching with its paragraphs.
// POST /api/admin/teachings
func (ac *AdminController) CreateTeaching(c *gin.Context) {
	var draft catalog.TeachingDraft
	if !bindJSON(c, &draft) {
		return
	}
	draft.ID = ""
	ac.save(c, draft, http.StatusCreated, audit.ActionTeachingCreate)
}

// SaveTeaching replaces the editable state of an existing teaching.
// PUT /api/admin/teachings/:id
func (ac *AdminController) SaveTeaching(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	var draft catalog.TeachingDraft
	if !bindJSON(c, &draft) {
		return
	}
	draft.ID = id
	ac.save(c, draft, http.StatusOK, audit.ActionTeachingSave)
}

func (ac *AdminController) save(c *gin.Context, draft catalog.TeachingDraft, status int, action string) {
	teaching, err := ac.client.SaveTeaching(c.Request.Context(), draft)
	if err != nil {
		var saveErr *catalog.SaveError
		switch {
		case errors.Is(err, catalog.ErrTitleRequired):
			respondBadRequest(c, err.Error())
		case errors.As(err, &saveErr):
			ac.record(c, action, "teaching", saveErr.TeachingID, draft.Title, err)
			respondSaveError(c, saveErr)
		default:
			ac.record(c, action, "teaching", draft.ID, draft.Title, err)
			respondWriteError(c, err, "teaching")
		}
		return
	}
	ac.record(c, action, "teaching", teaching.ID,
		fmt.Sprintf("%s (%d paragraphs)", teaching.Title, len(draft.Paragraphs)), nil)
	c.JSON(status, teaching)
}

func respondSaveError(c *gin.Context, saveErr *catalog.SaveError) {
	status := http.StatusInternalServerError
	if errors.Is(saveErr, gorm.ErrRecordNotFound) {
		status = http.StatusNotFound
	}
	c.JSON(status, SaveErrorResponse{
		Error:      saveErr.Error(),
		TeachingID: saveErr.TeachingID,
		Paragraph:  saveErr.Paragraph,
		Committed:  saveErr.Committed,
	})
}

// UpdateTeaching changes only the given columns.
// PATCH /api/admin/teachings/:id
func (ac *AdminController) UpdateTeaching(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	var patch teachings.Patch
	if !bindJSON(c, &patch) {
		return
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		respondBadRequest(c, catalog.ErrTitleRequired.Error())
		return
	}
	teaching, err := ac.client.UpdateTeaching(c.Request.Context(), id, patch)
	ac.record(c, audit.ActionTeachingUpdate, "teaching", id, "", err)
	if err != nil {
		respondWriteError(c, err, "teaching")
		return
	}
	c.JSON(http.StatusOK, teaching)
}

// CreateParagraph appends a paragraph to a teaching.
// POST /api/admin/teachings/:id/paragraphs
func (ac *AdminController) CreateParagraph(c *gin.Context) {
	teachingID, ok := requireParam(c, "id")
	if !ok {
		return
	}
	var req ParagraphRequest
	if !bindJSON(c, &req) {
		return
	}
	paragraph := &entities.Paragraph{
		TeachingID:         teachingID,
		SortOrder:          req.SortOrder,
		PaliText:           req.PaliText,
		PaliRomanized:      req.PaliRomanized,
		MyanmarTranslation: req.MyanmarTranslation,
		MyanmarExplanation: req.MyanmarExplanation,
	}
	err := ac.client.CreateParagraph(c.Request.Context(), paragraph)
	ac.record(c, audit.ActionParagraphCreate, "paragraph", paragraph.ID, "teaching "+teachingID, err)
	if err != nil {
		respondWriteError(c, err, "teaching")
		return
	}
	respondCreated(c, paragraph)
}

// UpdateParagraph changes only the given paragraph columns.
// PATCH /api/admin/teachings/:id/paragraphs/:paragraphId
func (ac *AdminController) UpdateParagraph(c *gin.Context) {
	teachingID, ok := requireParam(c, "id")
	if !ok {
		return
	}
	paragraphID, ok := requireParam(c, "paragraphId")
	if !ok {
		return
	}
	var patch paragraphs.Patch
	if !bindJSON(c, &patch) {
		return
	}
	paragraph, err := ac.client.UpdateParagraph(c.Request.Context(), teachingID, paragraphID, patch)
	ac.record(c, audit.ActionParagraphUpdate, "paragraph", paragraphID, "teaching "+teachingID, err)
	if err != nil {
		respondWriteError(c, err, "paragraph")
		return
	}
	c.JSON(http.StatusOK, paragraph)
}

// DeleteParagraph removes a paragraph. Deleting a missing one succeeds.
// DELETE /api/admin/teachings/:id/paragraphs/:paragraphId
func (ac *AdminController) DeleteParagraph(c *gin.Context) {
	teachingID, ok := requireParam(c, "id")
	if !ok {
		return
	}
	paragraphID, ok := requireParam(c, "paragraphId")
	if !ok {
		return
	}
	err := ac.client.DeleteParagraph(c.Request.Context(), teachingID, paragraphID)
	ac.record(c, audit.ActionParagraphDelete, "paragraph", paragraphID, "teaching "+teachingID, err)
	if err != nil {
		respondWriteError(c, err, "paragraph")
		return
	}
	c.Status(http.StatusNoContent)
}

// SetDailyFeatured features a teaching on a date, replacing any entry there.
// PUT /api/admin/daily
func (ac *AdminController) SetDailyFeatured(c *gin.Context) {
	var req DailyRequest
	if !bindJSON(c, &req) {
		return
	}

	day := ac.client.Today()
	if req.Date != "" {
		parsed, err := time.ParseInLocation(entities.FeaturedDateLayout, req.Date, day.Location())
		if err != nil {
			respondBadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	entry, err := ac.client.SetDailyFeatured(c.Request.Context(), req.TeachingID, day, req.Excerpt)
	ac.record(c, audit.ActionDailySet, "daily", req.TeachingID, day.Format(entities.FeaturedDateLayout), err)
	if err != nil {
		respondWriteError(c, err, "teaching")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// RotateDaily features the least recently featured teaching when today has
// no entry yet.
// POST /api/admin/daily/rotate
func (ac *AdminController) RotateDaily(c *gin.Context) {
	if ac.rotator == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "daily rotation is disabled"})
		return
	}
	entry, created, err := ac.rotator.RunNow(c.Request.Context())
	if err != nil {
		ac.record(c, audit.ActionDailyRotate, "daily", "", "", err)
		respondWriteError(c, err, "daily featured teaching")
		return
	}
	if created {
		ac.record(c, audit.ActionDailyRotate, "daily", entry.TeachingID, entry.FeaturedOn(), nil)
	}
	c.JSON(http.StatusOK, gin.H{"created": created, "entry": entry})
}

// ListAudit returns a page of recorded admin edits, most recent first.
// GET /api/admin/audit?limit=&offset=&user_id=
func (ac *AdminController) ListAudit(c *gin.Context) {
	if ac.audit == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "audit log is disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	events, total, err := ac.audit.GetEvents(c.Request.Context(), c.Query("user_id"), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}
	c.JSON(http.StatusOK, AuditPage{Total: total, Events: events})
}

// TeachingHistory returns every recorded edit of one teaching.
// GET /api/admin/teachings/:id/history
func (ac *AdminController) TeachingHistory(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	if ac.audit == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "audit log is disabled"})
		return
	}
	events, err := ac.audit.History(c.Request.Context(), "teaching", id)
	if err != nil {
		respondInternalError(c, err, "load teaching history")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}
	c.JSON(http.StatusOK, events)
}
