package settings

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_settings_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return NewRepository(db), cleanup
}

func TestRepository_SetSetting_New(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting("nissaya-bookmarks", `["a"]`))

	setting, err := repo.GetSetting("nissaya-bookmarks")
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.Equal(t, `["a"]`, setting.Value)
}

func TestRepository_SetSetting_Overwrite(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting("nissaya-bookmarks", `["a"]`))
	require.NoError(t, repo.SetSetting("nissaya-bookmarks", `["a","b"]`))

	setting, err := repo.GetSetting("nissaya-bookmarks")
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, setting.Value)
}

func TestRepository_GetSetting_Missing(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	setting, err := repo.GetSetting("nothing")
	require.NoError(t, err)
	assert.Nil(t, setting)
}

func TestRepository_DeleteSetting(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetSetting("nissaya-offline-teachings", "{}"))
	require.NoError(t, repo.DeleteSetting("nissaya-offline-teachings"))

	setting, err := repo.GetSetting("nissaya-offline-teachings")
	require.NoError(t, err)
	assert.Nil(t, setting)

	assert.NoError(t, repo.DeleteSetting("nissaya-offline-teachings"))
}
