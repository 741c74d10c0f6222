package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nissaya/reader/internal/audit"
	"github.com/nissaya/reader/internal/auth"
	"github.com/nissaya/reader/internal/bookmarks"
	"github.com/nissaya/reader/internal/catalog"
	"github.com/nissaya/reader/internal/config"
	"github.com/nissaya/reader/internal/database"
	dbaudit "github.com/nissaya/reader/internal/database/audit"
	dbbookmarks "github.com/nissaya/reader/internal/database/bookmarks"
	"github.com/nissaya/reader/internal/database/categories"
	"github.com/nissaya/reader/internal/database/daily"
	"github.com/nissaya/reader/internal/database/paragraphs"
	"github.com/nissaya/reader/internal/database/teachings"
	"github.com/nissaya/reader/internal/database/users"
	"github.com/nissaya/reader/internal/entities"
	"github.com/nissaya/reader/internal/localstore"
	"github.com/nissaya/reader/internal/offline"
	"github.com/nissaya/reader/internal/querycache"
	"github.com/nissaya/reader/internal/reading"
)

type recordedDownloads struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordedDownloads) RecordDownload(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

type testServer struct {
	db         *database.Database
	router     *gin.Engine
	downloads  *recordedDownloads
	local      *localstore.MemoryStorage
	adminToken string
	adminID    string
	userToken  string
	userID     string
}

func newTestServer(t *testing.T, opts ...func(*RouterConfig)) *testServer {
	t.Helper()

	dbPath := "./test_router_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	cache := querycache.New(querycache.Options{})
	remote := catalog.NewRemote(
		categories.NewRepository(db.DB),
		teachings.NewRepository(db.DB),
		paragraphs.NewRepository(db.DB),
		daily.NewRepository(db.DB),
	)
	now := func() time.Time { return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC) }
	client := catalog.NewClient(remote, cache, catalog.ClientOptions{Now: now, Location: time.UTC})

	local := localstore.NewMemoryStorage()
	userRepo := users.NewRepository(db.DB)
	service := auth.NewService(userRepo)

	ctx := context.Background()
	admin, adminToken, err := service.CreateUser(ctx, "admin", true)
	require.NoError(t, err)
	reader, userToken, err := service.CreateUser(ctx, "reader", false)
	require.NoError(t, err)

	s := &testServer{
		db:         db,
		downloads:  &recordedDownloads{},
		local:      local,
		adminToken: adminToken,
		adminID:    admin.ID,
		userToken:  userToken,
		userID:     reader.ID,
	}
	cfg := RouterConfig{
		Database: db,
		Catalog:  client,
		Bookmarks: bookmarks.Selector{
			Local:  bookmarks.NewLocalStore(local),
			Server: bookmarks.NewServer(dbbookmarks.NewRepository(db.DB), cache),
		},
		Offline:     offline.NewMirror(local, now),
		Reading:     reading.NewStore(local, nil),
		Downloads:   s.downloads,
		Audit:       audit.NewService(dbaudit.NewRepository(db.DB)),
		AuthService: service,
		AuthConfig:  config.Auth{Mode: config.AuthModeToken},
		Version:     "test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	s.router = NewRouter(cfg)
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) teaching(t *testing.T, title string, paragraphOrders ...int) *entities.Teaching {
	t.Helper()
	teaching := entities.Teaching{Title: title, IsPublished: true}
	require.NoError(t, s.db.DB.Create(&teaching).Error)
	for _, order := range paragraphOrders {
		require.NoError(t, s.db.DB.Create(&entities.Paragraph{
			TeachingID: teaching.ID, SortOrder: order, PaliText: "pali", MyanmarTranslation: "mm",
		}).Error)
	}
	return &teaching
}

func TestRouter_Catalog(t *testing.T) {
	s := newTestServer(t)
	teaching := s.teaching(t, "Mangala Sutta", 3, 1, 2)

	t.Run("categories are seeded", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/categories", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		env, data := decodeEnvelope(t, w)
		assert.Equal(t, "ready", env.State)
		var list []entities.Category
		require.NoError(t, json.Unmarshal(data, &list))
		assert.Len(t, list, 4)
	})

	t.Run("teaching with ordered paragraphs", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/teachings/"+teaching.ID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		_, data := decodeEnvelope(t, w)
		var got entities.Teaching
		require.NoError(t, json.Unmarshal(data, &got))
		require.Len(t, got.Paragraphs, 3)
		assert.Equal(t, 1, got.Paragraphs[0].SortOrder)
		assert.Equal(t, 3, got.Paragraphs[2].SortOrder)
	})

	t.Run("every read counts a view", func(t *testing.T) {
		fresh := s.teaching(t, "Karaniya Metta Sutta", 1)
		var got entities.Teaching
		for range 2 {
			w := s.do(t, http.MethodGet, "/api/teachings/"+fresh.ID, "", nil)
			require.Equal(t, http.StatusOK, w.Code)
			_, data := decodeEnvelope(t, w)
			require.NoError(t, json.Unmarshal(data, &got))
		}
		assert.Equal(t, 2, got.ViewCount)

		var stored entities.Teaching
		require.NoError(t, s.db.DB.First(&stored, "id = ?", fresh.ID).Error)
		assert.Equal(t, 2, stored.ViewCount)
	})

	t.Run("missing teaching is empty", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/teachings/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		env, _ := decodeEnvelope(t, w)
		assert.Equal(t, "empty", env.State)
	})

	t.Run("blank search is ready and empty", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/search?q=", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		env, data := decodeEnvelope(t, w)
		assert.Equal(t, "ready", env.State)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("search matches title", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/search?q=mangala", "", nil)
		_, data := decodeEnvelope(t, w)
		var list []entities.Teaching
		require.NoError(t, json.Unmarshal(data, &list))
		require.Len(t, list, 1)
		assert.Equal(t, teaching.ID, list[0].ID)
	})

	t.Run("no daily entry yet", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/daily", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouter_DraftsHiddenFromReaders(t *testing.T) {
	s := newTestServer(t)
	draft := s.teaching(t, "Unfinished Sutta", 1)
	require.NoError(t, s.db.DB.Model(draft).Update("is_published", false).Error)

	w := s.do(t, http.MethodGet, "/api/teachings/"+draft.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	env, _ := decodeEnvelope(t, w)
	assert.Equal(t, "empty", env.State)

	w = s.do(t, http.MethodGet, "/api/teachings/"+draft.ID, s.userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/offline/"+draft.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, s.downloads.ids)

	w = s.do(t, http.MethodGet, "/api/admin/teachings/"+draft.ID, s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, data := decodeEnvelope(t, w)
	var got entities.Teaching
	require.NoError(t, json.Unmarshal(data, &got))
	assert.False(t, got.IsPublished)
	require.Len(t, got.Paragraphs, 1)

	w = s.do(t, http.MethodGet, "/api/admin/teachings/"+draft.ID, s.userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored entities.Teaching
	require.NoError(t, s.db.DB.First(&stored, "id = ?", draft.ID).Error)
	assert.Zero(t, stored.ViewCount)
}

func TestRouter_InvalidTokenRejected(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/bookmarks", "nope", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Bookmarks(t *testing.T) {
	s := newTestServer(t)
	teaching := s.teaching(t, "Metta Sutta")

	t.Run("anonymous bookmarks stay local", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/bookmarks/"+teaching.ID+"/toggle", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var toggle BookmarkToggle
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toggle))
		assert.True(t, toggle.Bookmarked)

		raw, ok, err := s.local.Get(localstore.KeyBookmarks)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, raw, teaching.ID)

		w = s.do(t, http.MethodGet, "/api/bookmarks", "", nil)
		_, data := decodeEnvelope(t, w)
		var list BookmarkList
		require.NoError(t, json.Unmarshal(data, &list))
		assert.Equal(t, "local", list.Source)
		assert.Equal(t, []string{teaching.ID}, list.TeachingIDs)
	})

	t.Run("signed-in user does not see local bookmarks", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/bookmarks", s.userToken, nil)
		_, data := decodeEnvelope(t, w)
		var list BookmarkList
		require.NoError(t, json.Unmarshal(data, &list))
		assert.Equal(t, "server", list.Source)
		assert.Empty(t, list.TeachingIDs)
	})

	t.Run("signed-in toggle writes to the server", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/bookmarks/"+teaching.ID+"/toggle", s.userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var count int64
		require.NoError(t, s.db.DB.Model(&entities.Bookmark{}).Where("user_id = ?", s.userID).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		w = s.do(t, http.MethodGet, "/api/bookmarks", s.userToken, nil)
		_, data := decodeEnvelope(t, w)
		var list BookmarkList
		require.NoError(t, json.Unmarshal(data, &list))
		require.Len(t, list.Bookmarks, 1)
		require.NotNil(t, list.Bookmarks[0].Teaching)
		assert.Equal(t, "Metta Sutta", list.Bookmarks[0].Teaching.Title)
	})
}

func TestRouter_Offline(t *testing.T) {
	s := newTestServer(t)
	teaching := s.teaching(t, "Karaniya Metta", 1)

	w := s.do(t, http.MethodPost, "/api/offline/"+teaching.ID, "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, http.MethodPost, "/api/offline/"+teaching.ID, "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{teaching.ID, teaching.ID}, s.downloads.ids)

	w = s.do(t, http.MethodGet, "/api/offline", "", nil)
	_, data := decodeEnvelope(t, w)
	var listing struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(data, &listing))
	assert.Equal(t, 1, listing.Count)

	w = s.do(t, http.MethodGet, "/api/offline/"+teaching.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, data = decodeEnvelope(t, w)
	var snapshot offline.Snapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, "Karaniya Metta", snapshot.Title)
	assert.Len(t, snapshot.Paragraphs, 1)

	w = s.do(t, http.MethodDelete, "/api/offline/"+teaching.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, "/api/offline/"+teaching.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/offline/"+teaching.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/offline/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Settings(t *testing.T) {
	s := newTestServer(t)

	var settings reading.Settings
	for i := 0; i < 5; i++ {
		w := s.do(t, http.MethodPost, "/api/settings/font/increase", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		_, data := decodeEnvelope(t, w)
		require.NoError(t, json.Unmarshal(data, &settings))
	}
	assert.Equal(t, reading.FontSize2XLarge, settings.FontSize)

	w := s.do(t, http.MethodPatch, "/api/settings", "", map[string]any{"fontSize": "huge"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/settings", "", map[string]any{"showPali": false})
	require.Equal(t, http.StatusOK, w.Code)
	_, data := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(data, &settings))
	assert.False(t, settings.ShowPali)
	assert.Equal(t, reading.FontSize2XLarge, settings.FontSize)

	w = s.do(t, http.MethodPost, "/api/settings/night-mode", "", nil)
	_, data = decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(data, &settings))
	assert.True(t, settings.NightMode)

	raw, ok, err := s.local.Get(localstore.KeyReadingSettings)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"nightMode":true`)
}

func TestRouter_AdminRequiresAdmin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/admin/teachings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/teachings", s.userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/teachings", s.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AdminEditing(t *testing.T) {
	s := newTestServer(t)

	// Warm the public listing so the write has something to invalidate.
	w := s.do(t, http.MethodGet, "/api/teachings", "", nil)
	_, data := decodeEnvelope(t, w)
	assert.JSONEq(t, `[]`, string(data))

	w = s.do(t, http.MethodPost, "/api/admin/teachings", s.adminToken, catalog.TeachingDraft{
		Title:       "Dhammacakka",
		IsPublished: true,
		Paragraphs: []catalog.ParagraphDraft{
			{SortOrder: 1, PaliText: "evaṃ me sutaṃ", MyanmarTranslation: "ဤသို့"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created entities.Teaching
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = s.do(t, http.MethodGet, "/api/teachings", "", nil)
	_, data = decodeEnvelope(t, w)
	var list []entities.Teaching
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Dhammacakka", list[0].Title)

	t.Run("blank title rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/admin/teachings", s.adminToken, catalog.TeachingDraft{Title: " "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("patch unknown teaching", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/api/admin/teachings/missing", s.adminToken, map[string]any{"source": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("paragraph edits refresh the teaching", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/teachings/"+created.ID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodPost, "/api/admin/teachings/"+created.ID+"/paragraphs", s.adminToken, ParagraphRequest{
			SortOrder: 0, PaliText: "namo", MyanmarTranslation: "ရှိခိုး",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do(t, http.MethodGet, "/api/teachings/"+created.ID, "", nil)
		_, data := decodeEnvelope(t, w)
		var got entities.Teaching
		require.NoError(t, json.Unmarshal(data, &got))
		require.Len(t, got.Paragraphs, 2)
		assert.Equal(t, "namo", got.Paragraphs[0].PaliText)
	})

	t.Run("daily featured", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/admin/daily", s.adminToken, DailyRequest{TeachingID: created.ID, Date: "2024-05-01"})
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodGet, "/api/daily", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		_, data := decodeEnvelope(t, w)
		var entry entities.DailyFeatured
		require.NoError(t, json.Unmarshal(data, &entry))
		assert.Equal(t, created.ID, entry.TeachingID)

		w = s.do(t, http.MethodPut, "/api/admin/daily", s.adminToken, DailyRequest{TeachingID: created.ID, Date: "May 1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rotation disabled", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/admin/daily/rotate", s.adminToken, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRouter_AdminAudit(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/admin/teachings", s.adminToken, catalog.TeachingDraft{Title: "Mettā Sutta"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created entities.Teaching
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = s.do(t, http.MethodPatch, "/api/admin/teachings/"+created.ID, s.adminToken, map[string]any{"source": "Sn 1.8"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPatch, "/api/admin/teachings/missing", s.adminToken, map[string]any{"source": "x"})
	require.Equal(t, http.StatusNotFound, w.Code)

	// Rejected before any write, so not recorded.
	w = s.do(t, http.MethodPost, "/api/admin/teachings", s.adminToken, catalog.TeachingDraft{Title: ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	t.Run("log lists every attempted write", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/admin/audit", s.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page AuditPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Events, 3)

		byAction := map[string][]entities.AuditEvent{}
		for _, e := range page.Events {
			assert.Equal(t, s.adminID, e.UserID)
			byAction[e.Action] = append(byAction[e.Action], e)
		}
		require.Len(t, byAction[audit.ActionTeachingCreate], 1)
		assert.Equal(t, created.ID, byAction[audit.ActionTeachingCreate][0].EntityID)
		require.Len(t, byAction[audit.ActionTeachingUpdate], 2)

		failed := 0
		for _, e := range byAction[audit.ActionTeachingUpdate] {
			if e.Status == entities.AuditStatusFailed {
				failed++
				assert.Equal(t, "missing", e.EntityID)
				assert.NotEmpty(t, e.ErrorMsg)
			}
		}
		assert.Equal(t, 1, failed)
	})

	t.Run("limit", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/admin/audit?limit=1", s.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page AuditPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Events, 1)
	})

	t.Run("teaching history", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/admin/teachings/"+created.ID+"/history", s.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var events []entities.AuditEvent
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
		assert.Len(t, events, 2)
	})

	t.Run("readers cannot see the log", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/admin/audit", s.userToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRouter_FrozenCatalog(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig) { cfg.CatalogFrozen = true })

	w := s.do(t, http.MethodGet, "/api/admin/teachings", s.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/teachings", s.adminToken, catalog.TeachingDraft{Title: "Karaniya Metta"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"catalog_frozen":true`)

	// Admin role is still checked first.
	w = s.do(t, http.MethodPost, "/api/admin/teachings", s.userToken, catalog.TeachingDraft{Title: "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "catalog_frozen")

	// Reader-side writes are unaffected.
	teaching := s.teaching(t, "Maṅgala Sutta", 1)
	w = s.do(t, http.MethodPost, "/api/bookmarks/"+teaching.ID+"/toggle", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
