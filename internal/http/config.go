package http

import (
	"github.com/nissaya/reader/internal/auth"
	"github.com/nissaya/reader/internal/bookmarks"
	"github.com/nissaya/reader/internal/catalog"
	"github.com/nissaya/reader/internal/config"
	"github.com/nissaya/reader/internal/database"
	"github.com/nissaya/reader/internal/offline"
	"github.com/nissaya/reader/internal/reading"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	// Backend
	Database *database.Database
	Catalog  *catalog.Client

	// Device-local stores
	Bookmarks bookmarks.Selector
	Offline   *offline.Mirror
	Reading   *reading.Store

	// Background work (optional)
	Downloads DownloadRecorder
	Rotator   Rotator

	// Admin edit log (optional)
	Audit AuditLog

	// Authentication
	AuthService *auth.Service
	AuthConfig  config.Auth

	// CatalogFrozen rejects admin writes.
	CatalogFrozen bool

	// HSTSMaxAge enables Strict-Transport-Security when positive.
	HSTSMaxAge int

	// Application info
	Version string
}
