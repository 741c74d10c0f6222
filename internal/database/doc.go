// Package database provides the backend row store for the reader.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, category seeding
//	├── categories/      # Category listing
//	├── teachings/       # Teaching reads, search, admin writes, counters
//	├── paragraphs/      # Paragraph admin writes
//	├── bookmarks/       # Per-user server bookmarks
//	├── daily/           # Daily featured teaching by calendar date
//	├── settings/        # Key/value rows backing device-local storage
//	├── users/           # Token identities
//	└── audit/           # Admin edit history
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type over a *gorm.DB:
//
//	db, err := database.NewDatabase("./nissaya.db")
//
//	teachingsRepo := teachings.NewRepository(db.DB)
//	bookmarksRepo := bookmarks.NewRepository(db.DB)
//
//	teaching, err := teachingsRepo.GetTeaching(ctx, id)
//
// Repositories return gorm errors unmodified. A single-row read that finds
// nothing returns (nil, nil) so callers can render "not found" without
// treating it as a failure.
//
// # Interface Implementations
//
// Repositories satisfy the narrow store interfaces declared by their
// consumers (catalog.TeachingStore, bookmarks.Repository, ...). The
// compile-time checks live in internal/interfaces.
package database
