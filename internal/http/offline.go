package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nissaya/reader/internal/entities"
	"github.com/nissaya/reader/internal/offline"
)

// TeachingFetcher loads a full published teaching for an offline save
// without counting a view.
type TeachingFetcher interface {
	Teaching(ctx context.Context, id string) (*entities.Teaching, error)
}

// DownloadRecorder counts an offline download in the background.
type DownloadRecorder interface {
	RecordDownload(teachingID string) error
}

type OfflineController struct {
	mirror    *offline.Mirror
	teachings TeachingFetcher
	downloads DownloadRecorder
}

// NewOfflineController wires the offline endpoints. downloads may be nil
// when the task queue is disabled.
func NewOfflineController(mirror *offline.Mirror, teachings TeachingFetcher, downloads DownloadRecorder) *OfflineController {
	return &OfflineController{mirror: mirror, teachings: teachings, downloads: downloads}
}

// List returns every saved snapshot in save order.
// GET /api/offline
func (oc *OfflineController) List(c *gin.Context) {
	respondReady(c, gin.H{
		"count":     oc.mirror.Count(),
		"teachings": oc.mirror.List(),
	})
}

// Get returns one saved snapshot without touching the backend.
// GET /api/offline/:id
func (oc *OfflineController) Get(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	snapshot := oc.mirror.Snapshot(id)
	if snapshot == nil {
		c.JSON(http.StatusNotFound, Envelope{State: stateEmpty, Error: "offline teaching not found"})
		return
	}
	respondReady(c, snapshot)
}

// Save downloads the current teaching and stores it for offline reading,
// replacing an earlier snapshot of the same teaching.
// POST /api/offline/:id
func (oc *OfflineController) Save(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}

	teaching, err := oc.teachings.Teaching(c.Request.Context(), id)
	if err != nil {
		respondQuery(c, nil, err, "teaching")
		return
	}
	if teaching == nil {
		respondNotFound(c, "teaching")
		return
	}

	snapshot, err := oc.mirror.Save(*teaching)
	if err != nil {
		respondInternalError(c, err, "save offline teaching")
		return
	}

	if oc.downloads != nil {
		if err := oc.downloads.RecordDownload(id); err != nil {
			log.Printf("Offline: failed to enqueue download count for %s: %v", id, err)
		}
	}

	respondCreated(c, snapshot)
}

// Remove deletes one snapshot. Removing an unsaved teaching succeeds.
// DELETE /api/offline/:id
func (oc *OfflineController) Remove(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}
	if err := oc.mirror.Remove(id); err != nil {
		respondInternalError(c, err, "remove offline teaching")
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearAll drops every snapshot.
// DELETE /api/offline
func (oc *OfflineController) ClearAll(c *gin.Context) {
	if err := oc.mirror.ClearAll(); err != nil {
		respondInternalError(c, err, "clear offline teachings")
		return
	}
	c.Status(http.StatusNoContent)
}
