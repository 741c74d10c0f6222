package audit

import (
	"context"
	"log"
	"time"

	"github.com/nissaya/reader/internal/database/audit"
	"github.com/nissaya/reader/internal/entities"
)

// Admin actions recorded in the audit log.
const (
	ActionTeachingCreate  = "teaching_create"
	ActionTeachingSave    = "teaching_save"
	ActionTeachingUpdate  = "teaching_update"
	ActionParagraphCreate = "paragraph_create"
	ActionParagraphUpdate = "paragraph_update"
	ActionParagraphDelete = "paragraph_delete"
	ActionDailySet        = "daily_set"
	ActionDailyRotate     = "daily_rotate"
)

// Service records admin edits. A failed write is logged and never fails the
// edit it describes.
type Service struct {
	repo *audit.Repository
}

func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a prepared event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// Record stores the outcome of one admin action.
func (s *Service) Record(ctx context.Context, userID, action, entityType, entityID, description string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	// The request context may already be cancelled by the time the edit
	// failed, so the event is written on a detached one.
	if logErr := s.repo.LogEvent(context.WithoutCancel(ctx), event); logErr != nil {
		log.Printf("[AUDIT] Failed to record %s on %s %s: %v", action, entityType, entityID, logErr)
	}
}

// GetEvents returns a page of events, most recent first.
func (s *Service) GetEvents(ctx context.Context, userID string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, limit, offset)
}

// History returns every recorded edit of one entity.
func (s *Service) History(ctx context.Context, entityType, entityID string) ([]entities.AuditEvent, error) {
	return s.repo.GetEntityEvents(ctx, entityType, entityID)
}

// DeleteOldEvents removes events older than retention.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(ctx, time.Now().Add(-retention))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
