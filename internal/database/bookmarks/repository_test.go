package bookmarks

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nissaya/reader/internal/database"
	"github.com/nissaya/reader/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_bookmarks_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

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

	return db, NewRepository(db), cleanup
}

func TestRepository_AddListRemove(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	category := entities.Category{Name: "ပရိတ်"}
	require.NoError(t, db.Create(&category).Error)
	first := entities.Teaching{Title: "Mangala", CategoryID: &category.ID, IsPublished: true}
	second := entities.Teaching{Title: "Ratana", IsPublished: true}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	require.NoError(t, db.Create(&entities.Bookmark{
		UserID: "user-1", TeachingID: first.ID, CreatedAt: time.Now().Add(-time.Hour),
	}).Error)
	require.NoError(t, repo.Add(ctx, "user-1", second.ID))
	require.NoError(t, repo.Add(ctx, "user-2", first.ID))

	list, err := repo.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].TeachingID)
	assert.Equal(t, first.ID, list[1].TeachingID)
	require.NotNil(t, list[1].Teaching)
	require.NotNil(t, list[1].Teaching.Category)
	assert.Equal(t, "ပရိတ်", list[1].Teaching.Category.Name)

	require.NoError(t, repo.Remove(ctx, "user-1", first.ID))
	found, err := repo.Find(ctx, "user-1", first.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.Find(ctx, "user-2", first.ID)
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestRepository_Add_Duplicate(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "user-1", "teaching-1"))
	assert.Error(t, repo.Add(ctx, "user-1", "teaching-1"))
}

func TestRepository_Remove_Missing(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	assert.NoError(t, repo.Remove(context.Background(), "user-1", "nothing"))
}
