package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

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
	http_controllers "github.com/nissaya/reader/internal/http"
	"github.com/nissaya/reader/internal/localstore"
	"github.com/nissaya/reader/internal/offline"
	"github.com/nissaya/reader/internal/querycache"
	"github.com/nissaya/reader/internal/reading"
	"github.com/nissaya/reader/internal/scheduler"
	"github.com/nissaya/reader/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the backend and device-local stores of one reader session.
type App struct {
	DB        *database.Database
	Local     *localstore.SQLiteStorage
	Cache     *querycache.Cache
	Catalog   *catalog.Client
	Teachings *teachings.Repository
	Daily     *daily.Repository
	Auth      *auth.Service
	Audit     *audit.Service
	Bookmarks bookmarks.Selector
	Offline   *offline.Mirror
	Reading   *reading.Store
	Theme     *reading.DocumentTheme
}

// NewApp opens both databases and wires the stores on top of them.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	local, err := localstore.OpenSQLite(cfg.LocalStorage.Path)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	cache := querycache.New(querycache.Options{MaxEntries: cfg.Cache.MaxEntries})
	teachingRepo := teachings.NewRepository(db.DB)
	dailyRepo := daily.NewRepository(db.DB)
	remote := catalog.NewRemote(
		categories.NewRepository(db.DB),
		teachingRepo,
		paragraphs.NewRepository(db.DB),
		dailyRepo,
	)
	client := catalog.NewClient(remote, cache, catalog.ClientOptions{
		Location: cfg.Reader.Location(),
	})

	theme := &reading.DocumentTheme{}
	readingStore := reading.NewStore(local, theme)
	readingStore.OnChange(func(s reading.Settings) {
		log.Printf("Reading settings changed: font %s, night mode %t", s.FontSize, s.NightMode)
	})

	return &App{
		DB:        db,
		Local:     local,
		Cache:     cache,
		Catalog:   client,
		Teachings: teachingRepo,
		Daily:     dailyRepo,
		Auth:      auth.NewService(users.NewRepository(db.DB)),
		Audit:     audit.NewService(dbaudit.NewRepository(db.DB)),
		Bookmarks: bookmarks.Selector{
			Local:  bookmarks.NewLocalStore(local),
			Server: bookmarks.NewServer(dbbookmarks.NewRepository(db.DB), cache),
		},
		Offline: offline.NewMirror(local, time.Now),
		Reading: readingStore,
		Theme:   theme,
	}, nil
}

// NewRotation builds the daily featured scheduler for this app.
func (a *App) NewRotation(cfg *config.Config) *scheduler.DailyFeaturedScheduler {
	return scheduler.NewDailyFeaturedScheduler(a.Teachings, a.Daily, a.Catalog, cfg.DailyFeatured.Schedule, cfg.Reader.Location())
}

func (a *App) Close() {
	if err := a.Local.Close(); err != nil {
		log.Printf("Error closing local storage: %v", err)
	}
	if err := a.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -9 cannot be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (stops the scheduler and task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Nissaya reader v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var downloads http_controllers.DownloadRecorder
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewRecordDownloadQueue(app.Teachings))
		taskClient.Register(tasks.NewCleanupAuditEventsQueue(app.Audit))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
		downloads = taskClient

		if cfg.Audit.Retention > 0 {
			if err := taskClient.CleanupAuditEvents(cfg.Audit.Retention); err != nil {
				log.Printf("WARNING: failed to schedule audit cleanup: %v", err)
			}
		}
	}

	// Daily featured rotation
	var rotation *scheduler.DailyFeaturedScheduler
	var rotator http_controllers.Rotator
	if cfg.DailyFeatured.Enabled {
		rotation = app.NewRotation(cfg)
		if err := rotation.Start(context.Background()); err != nil {
			log.Printf("WARNING: daily featured scheduler not started: %v", err)
		}
		rotator = rotation
	} else {
		log.Printf("Daily featured scheduler: disabled")
	}

	if cfg.Auth.Mode == config.AuthModeToken {
		log.Printf("Authentication mode: token")
	} else {
		log.Printf("Authentication mode: none (every request is anonymous, admin API unavailable)")
	}

	if cfg.Catalog.Frozen {
		log.Printf("Catalog frozen: admin edits are disabled")
	}
	if !cfg.HTTP.LocalOnly() {
		log.Printf("WARNING: listening on %s; device-local stores are shared by every client", cfg.HTTP.Host)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:      app.DB,
		Catalog:       app.Catalog,
		Bookmarks:     app.Bookmarks,
		Offline:       app.Offline,
		Reading:       app.Reading,
		Downloads:     downloads,
		Rotator:       rotator,
		Audit:         app.Audit,
		AuthService:   app.Auth,
		AuthConfig:    cfg.Auth,
		CatalogFrozen: cfg.Catalog.Frozen,
		HSTSMaxAge:    cfg.HTTP.HSTSMaxAge,
		Version:       version,
	})

	onShutdown := func(ctx context.Context) {
		if rotation != nil {
			rotation.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
