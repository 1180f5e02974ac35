// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, curated seeding
//	├── seed/            # Embedded curated content
//	├── quotes/          # Quotes, favourite membership, contribution flow
//	├── settings/        # Key/value settings (device preferences live here)
//	└── users/           # Accounts, API token hashes
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./quna.db")
//
//	broker := realtime.NewBroker()
//	quotesRepo := quotes.NewRepository(db.DB, broker)
//	settingsRepo := settings.NewRepository(db.DB)
//
//	items, err := quotesRepo.Query(ctx, remote.Query{
//		Table:   remote.TableQuotes,
//		Filters: []remote.Filter{remote.Eq(remote.ColumnCategory, "Mantras")},
//	})
//
// # Interface Implementations
//
//   - quotes.Repository: implements remote.Store and http.QuoteStore
//   - settings.Repository: implements settingsstore.Repository
//   - users.Repository: implements auth.UserStore
//
// Compile-time checks live in internal/interfaces.
package database
