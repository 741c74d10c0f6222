package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/nissaya/reader/internal/audit"
	"github.com/nissaya/reader/internal/auth"
	"github.com/nissaya/reader/internal/bookmarks"
	"github.com/nissaya/reader/internal/catalog"
	dbbookmarks "github.com/nissaya/reader/internal/database/bookmarks"
	"github.com/nissaya/reader/internal/database/categories"
	"github.com/nissaya/reader/internal/database/daily"
	"github.com/nissaya/reader/internal/database/paragraphs"
	"github.com/nissaya/reader/internal/database/teachings"
	"github.com/nissaya/reader/internal/database/users"
	"github.com/nissaya/reader/internal/http"
	"github.com/nissaya/reader/internal/localstore"
	"github.com/nissaya/reader/internal/reading"
	"github.com/nissaya/reader/internal/scheduler"
	"github.com/nissaya/reader/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ catalog.CategoryStore = (*categories.Repository)(nil)
var _ catalog.TeachingStore = (*teachings.Repository)(nil)
var _ catalog.ParagraphStore = (*paragraphs.Repository)(nil)
var _ catalog.DailyStore = (*daily.Repository)(nil)
var _ bookmarks.Repository = (*dbbookmarks.Repository)(nil)
var _ auth.UserRepository = (*users.Repository)(nil)

// =============================================================================
// Catalog Access
// =============================================================================

var _ catalog.Reader = (*catalog.Remote)(nil)
var _ catalog.Reader = (*catalog.Client)(nil)
var _ http.CatalogReader = (*catalog.Client)(nil)
var _ http.TeachingFetcher = (*catalog.Client)(nil)

// =============================================================================
// Device-Local Storage
// =============================================================================

var _ localstore.Storage = (*localstore.SQLiteStorage)(nil)
var _ localstore.Storage = (*localstore.MemoryStorage)(nil)
var _ bookmarks.Store = (*bookmarks.LocalStore)(nil)
var _ bookmarks.Store = (*bookmarks.ServerStore)(nil)
var _ reading.Theme = (*reading.DocumentTheme)(nil)

// =============================================================================
// Identities
// =============================================================================

var _ auth.Identity = auth.User{}

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.DownloadCounter = (*teachings.Repository)(nil)
var _ http.DownloadRecorder = (*tasks.Client)(nil)
var _ http.Rotator = (*scheduler.DailyFeaturedScheduler)(nil)
var _ scheduler.DailyPool = (*teachings.Repository)(nil)
var _ scheduler.DailyHistory = (*daily.Repository)(nil)
var _ scheduler.Featurer = (*catalog.Client)(nil)

// =============================================================================
// Admin
// =============================================================================

var _ http.AuditLog = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
