package paragraphs

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nissaya/reader/internal/database"
	"github.com/nissaya/reader/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_paragraphs_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

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

func createTeaching(t *testing.T, db *gorm.DB) string {
	t.Helper()
	teaching := entities.Teaching{Title: "Karaniya Metta Sutta"}
	require.NoError(t, db.Create(&teaching).Error)
	return teaching.ID
}

func TestRepository_CreateParagraph(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	teachingID := createTeaching(t, db)
	other := createTeaching(t, db)

	for _, order := range []int{2, 0, 1} {
		require.NoError(t, repo.CreateParagraph(ctx, &entities.Paragraph{
			TeachingID:         teachingID,
			SortOrder:          order,
			PaliText:           "Karaṇīyamatthakusalena",
			MyanmarTranslation: "ပြုသင့်သည်",
		}))
	}
	require.NoError(t, repo.CreateParagraph(ctx, &entities.Paragraph{
		TeachingID: other, PaliText: "x", MyanmarTranslation: "y",
	}))

	var list []entities.Paragraph
	require.NoError(t, db.Where("teaching_id = ?", teachingID).Order("sort_order ASC").Find(&list).Error)
	require.Len(t, list, 3)
	for i, p := range list {
		assert.Equal(t, i, p.SortOrder)
		assert.NotEmpty(t, p.ID)
	}
}

func TestRepository_UpdateParagraph(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	romanized := "karaniya"
	paragraph := &entities.Paragraph{
		TeachingID:         createTeaching(t, db),
		PaliText:           "old",
		PaliRomanized:      &romanized,
		MyanmarTranslation: "old mm",
	}
	require.NoError(t, repo.CreateParagraph(ctx, paragraph))

	text := "new"
	empty := ""
	order := 4
	updated, err := repo.UpdateParagraph(ctx, paragraph.ID, Patch{
		PaliText:      &text,
		PaliRomanized: &empty,
		SortOrder:     &order,
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.PaliText)
	assert.Nil(t, updated.PaliRomanized)
	assert.Equal(t, 4, updated.SortOrder)
	assert.Equal(t, "old mm", updated.MyanmarTranslation)

	_, err = repo.UpdateParagraph(ctx, "missing", Patch{PaliText: &text})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_DeleteParagraph(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	paragraph := &entities.Paragraph{TeachingID: createTeaching(t, db), PaliText: "p", MyanmarTranslation: "m"}
	require.NoError(t, repo.CreateParagraph(ctx, paragraph))

	require.NoError(t, repo.DeleteParagraph(ctx, paragraph.ID))
	var count int64
	require.NoError(t, db.Model(&entities.Paragraph{}).Where("id = ?", paragraph.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.NoError(t, repo.DeleteParagraph(ctx, paragraph.ID))
}
