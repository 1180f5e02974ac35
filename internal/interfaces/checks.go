package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/quna/internal/auth"
	"github.com/mrlokans/quna/internal/content"
	"github.com/mrlokans/quna/internal/database"
	"github.com/mrlokans/quna/internal/database/quotes"
	"github.com/mrlokans/quna/internal/database/settings"
	"github.com/mrlokans/quna/internal/database/users"
	"github.com/mrlokans/quna/internal/feeds"
	"github.com/mrlokans/quna/internal/http"
	"github.com/mrlokans/quna/internal/identity"
	"github.com/mrlokans/quna/internal/realtime"
	"github.com/mrlokans/quna/internal/remote"
	"github.com/mrlokans/quna/internal/scheduler"
	"github.com/mrlokans/quna/internal/settingsstore"
	"github.com/mrlokans/quna/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// UserStore implementations
var _ auth.UserStore = (*users.Repository)(nil)

// Remote store implementations
var _ remote.Store = (*quotes.Repository)(nil)
var _ remote.Subscriber = (*realtime.Broker)(nil)
var _ quotes.Publisher = (*realtime.Broker)(nil)

// QuoteStore implementations
var _ http.QuoteStore = (*quotes.Repository)(nil)

// Settings persistence
var _ settingsstore.Repository = (*settings.Repository)(nil)
var _ settingsstore.KeyValue = (*settingsstore.Scope)(nil)
var _ tasks.SettingsWriter = (*settings.Repository)(nil)
var _ tasks.CuratedImporter = (*quotes.Repository)(nil)

// =============================================================================
// Content Core
// =============================================================================

// Per-device stores consumed by feeds
var _ content.PreferenceSource = (*settingsstore.SourcePreferenceStore)(nil)
var _ content.LocaleProvider = (*settingsstore.LanguageStore)(nil)
var _ identity.Provider = (*identity.Session)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ scheduler.Evicter = (*feeds.Registry)(nil)
var _ http.EvictionStatus = (*scheduler.FeedEvictionScheduler)(nil)
var _ http.CuratedImportQueue = (*tasks.Client)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)

// =============================================================================
// HTTP Dependencies
// =============================================================================

var _ http.Pinger = (*database.Database)(nil)
var _ http.DeviceCounter = (*feeds.Registry)(nil)
var _ http.DeviceRegistry = (*feeds.Registry)(nil)
