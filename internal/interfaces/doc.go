// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Backend Data Access
//
//   - CategoryStore, TeachingStore, ParagraphStore, DailyStore: repository
//     views used by the catalog (internal/catalog/remote.go)
//   - bookmarks.Repository: server bookmarks per user (internal/bookmarks/server.go)
//   - auth.UserRepository: token lookup and user creation (internal/auth/service.go)
//
// ## Catalog Reads
//
//   - catalog.Reader: shared by the uncached Remote and the cached Client
//   - http.CatalogReader: Reader plus today's featured teaching
//
// ## Device-Local Storage
//
//   - localstore.Storage: synchronous key/value storage owned by the device.
//     Each key is owned by exactly one store and always written whole.
//   - bookmarks.Store: the capability shared by LocalStore and ServerStore
//   - reading.Theme: presentation flag driven by night mode
//
// ## Identity
//
//   - auth.Identity: who is signed in, if anyone, and whether they are admin
//
// ## Background Work
//
//   - tasks.DownloadCounter, http.DownloadRecorder: offline download counting
//   - tasks.AuditEventCleaner: admin edit log retention
//   - scheduler.DailyPool, DailyHistory, Featurer: daily featured rotation
//
// ## Admin
//
//   - http.AuditLog: records catalog edits made through the admin API
//
// # Adding a New Cached Read
//
//  1. Add the uncached accessor to catalog.Remote.
//
//  2. Add an Op constant and a Client method that goes through
//     querycache.Fetch with Key{Op, Param}.
//
//  3. Invalidate the new op from every admin write that changes its rows
//     (internal/catalog/admin.go).
//
// # Adding a New Device-Local Store
//
//  1. Reserve a key in internal/localstore.
//
//  2. Load the key once at construction, treat corrupt JSON as empty and
//     persist the whole value after every mutation.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
