// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help code agents understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// The application uses several categories of interfaces:
//
// ## Data Access Interfaces
//
//   - UserStore: Account persistence (internal/auth/service.go)
//   - remote.Store: Filtered quote queries and favourite toggles (internal/remote/remote.go)
//   - QuoteStore: User-submitted quotes and favourites lists (internal/http/stores.go)
//   - settingsstore.Repository: Key/value settings table (internal/settingsstore/settingsstore.go)
//
// ## Change Notification Interfaces
//
//   - remote.Subscriber: Realtime change events (internal/remote/remote.go)
//   - identity.Provider: Session changes of a device (internal/identity/identity.go)
//   - content.PreferenceSource / content.LocaleProvider: Per-device settings
//     consumed by feeds (internal/content/feed.go)
//
// ## Background Work Interfaces
//
//   - scheduler.Evicter: Idle device eviction (internal/scheduler/feed_eviction.go)
//   - CuratedImportQueue / TaskStatusReader: Curated imports via the task
//     queue (internal/http/stores.go, internal/http/tasks.go)
//
// # Adding a New Content Source
//
// To serve quotes from another hosted store:
//
//  1. Implement remote.Store and remote.Subscriber
//
//     type HostedStore struct {
//         baseURL    string
//         httpClient *http.Client
//     }
//
//     func (s *HostedStore) Query(ctx context.Context, q remote.Query) ([]entities.Quote, error)
//     func (s *HostedStore) ToggleMembership(ctx context.Context, table, key, memberID string) error
//
//     var _ remote.Store = (*HostedStore)(nil)
//
//  2. Compose it with remote.New and pass the client to feeds.NewRegistry
//     in entrypoint.go
//
// # Adding a New Background Task
//
//  1. Define the task type and its backlite queue in internal/tasks/
//
//  2. Register the queue on the task client in entrypoint.go
//
//  3. Expose an enqueue method on tasks.Client and a narrow interface next
//     to the HTTP controller that uses it
//
// # Adding a New Database Domain
//
// To add a new data domain:
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
