package audit

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nissaya/reader/internal/database"
	auditRepo "github.com/nissaya/reader/internal/database/audit"
	"github.com/nissaya/reader/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB, func()) {
	dbPath := "./test_audit_service_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(database.Dialector(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return NewService(auditRepo.NewRepository(db)), db, cleanup
}

func TestService_Record(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	svc.Record(ctx, "admin-1", ActionTeachingSave, "teaching", "t-1", "Saved Mettā Sutta", nil)

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved).Error)
	assert.Equal(t, "admin-1", saved.UserID)
	assert.Equal(t, ActionTeachingSave, saved.Action)
	assert.Equal(t, entities.AuditStatusSuccess, saved.Status)
	assert.Empty(t, saved.ErrorMsg)
}

func TestService_Record_Failure(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	svc.Record(context.Background(), "admin-1", ActionParagraphCreate, "paragraph", "", "", errors.New("disk full"))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved).Error)
	assert.Equal(t, entities.AuditStatusFailed, saved.Status)
	assert.Equal(t, "disk full", saved.ErrorMsg)
}

func TestService_Record_CancelledContext(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Record(ctx, "admin-1", ActionDailyRotate, "daily", "", "", nil)

	var count int64
	require.NoError(t, db.Model(&entities.AuditEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestService_Record_TruncatesLongText(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	svc.Record(context.Background(), "admin-1", ActionTeachingUpdate, "teaching", "t-1", strings.Repeat("a", 600), nil)

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved).Error)
	assert.Len(t, saved.Description, 500)
	assert.True(t, strings.HasSuffix(saved.Description, "..."))
}

func TestService_HistoryAndPrune(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{
		Action: ActionTeachingCreate, EntityType: "teaching", EntityID: "t-1",
		CreatedAt: time.Now().Add(-10 * 24 * time.Hour),
	}))
	svc.Record(ctx, "admin-1", ActionTeachingUpdate, "teaching", "t-1", "", nil)

	history, err := svc.History(ctx, "teaching", "t-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	deleted, err := svc.DeleteOldEvents(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := svc.GetEvents(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, ActionTeachingUpdate, events[0].Action)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
