package entities

import "time"

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent records one catalog edit made through the admin API.
type AuditEvent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      string      `gorm:"index;size:36" json:"user_id"`
	Action      string      `gorm:"index;size:100" json:"action"` // e.g. "teaching_save", "daily_rotate"
	Description string      `gorm:"size:500" json:"description"`
	EntityType  string      `gorm:"size:50" json:"entity_type"` // "teaching", "paragraph", "daily"
	EntityID    string      `gorm:"index;size:36" json:"entity_id,omitempty"`
	Status      AuditStatus `gorm:"size:20" json:"status"`
	ErrorMsg    string      `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
