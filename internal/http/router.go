package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nissaya/reader/internal/auth"
	"github.com/nissaya/reader/internal/freeze"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.HSTSMaxAge > 0 {
		router.Use(auth.StrictTransportSecurityMiddleware(cfg.HSTSMaxAge))
	}

	router.Use(auth.NewMiddleware(cfg.AuthService, cfg.AuthConfig).Handler())

	health := NewHealthController(cfg.Database, cfg.Catalog.Cache(), cfg.Version)
	catalogController := NewCatalogController(cfg.Catalog)
	bookmarksController := NewBookmarksController(cfg.Bookmarks)
	offlineController := NewOfflineController(cfg.Offline, cfg.Catalog, cfg.Downloads)
	settingsController := NewSettingsController(cfg.Reading)
	adminController := NewAdminController(cfg.Catalog, cfg.Rotator, cfg.Audit)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Catalog reads
	api.GET("/categories", catalogController.ListCategories)
	api.GET("/teachings", catalogController.ListTeachings)
	api.GET("/teachings/:id", catalogController.GetTeaching)
	api.GET("/daily", catalogController.DailyFeatured)
	api.GET("/search", catalogController.Search)

	// Bookmarks
	api.GET("/bookmarks", bookmarksController.List)
	api.POST("/bookmarks/:teachingId/toggle", bookmarksController.Toggle)

	// Offline reading
	api.GET("/offline", offlineController.List)
	api.DELETE("/offline", offlineController.ClearAll)
	api.GET("/offline/:id", offlineController.Get)
	api.POST("/offline/:id", offlineController.Save)
	api.DELETE("/offline/:id", offlineController.Remove)

	// Reading settings
	api.GET("/settings", settingsController.Get)
	api.PATCH("/settings", settingsController.Update)
	api.POST("/settings/font/increase", settingsController.IncreaseFontSize)
	api.POST("/settings/font/decrease", settingsController.DecreaseFontSize)
	api.POST("/settings/night-mode", settingsController.ToggleNightMode)

	// Admin
	admin := api.Group("/admin", auth.RequireAdmin(), freeze.NewMiddleware(cfg.CatalogFrozen).Handler())
	admin.GET("/teachings", adminController.ListDrafts)
	admin.POST("/teachings", adminController.CreateTeaching)
	admin.GET("/teachings/:id", adminController.GetDraft)
	admin.PUT("/teachings/:id", adminController.SaveTeaching)
	admin.PATCH("/teachings/:id", adminController.UpdateTeaching)
	admin.GET("/teachings/:id/history", adminController.TeachingHistory)
	admin.POST("/teachings/:id/paragraphs", adminController.CreateParagraph)
	admin.PATCH("/teachings/:id/paragraphs/:paragraphId", adminController.UpdateParagraph)
	admin.DELETE("/teachings/:id/paragraphs/:paragraphId", adminController.DeleteParagraph)
	admin.PUT("/daily", adminController.SetDailyFeatured)
	admin.POST("/daily/rotate", adminController.RotateDaily)
	admin.GET("/audit", adminController.ListAudit)

	return router
}
