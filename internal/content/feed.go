package content

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/mrlokans/quna/internal/entities"
	"github.com/mrlokans/quna/internal/identity"
	"github.com/mrlokans/quna/internal/remote"
)

// PreferenceSource provides the device's source preference.
type PreferenceSource interface {
	Get(ctx context.Context) entities.SourcePreference
	Subscribe(fn func(entities.SourcePreference)) (unsubscribe func())
}

// LocaleProvider provides the device's UI language.
type LocaleProvider interface {
	Locale(ctx context.Context) entities.Locale
	Subscribe(fn func(entities.Locale)) (unsubscribe func())
}

// Deps are the collaborators of a Feed.
type Deps struct {
	Client      remote.Client
	Favourites  *Favourites
	Preferences PreferenceSource
	Locale      LocaleProvider
	Identity    identity.Provider
	// Rand drives the shuffle. Nil uses the global source.
	Rand *rand.Rand
}

// feedKey identifies the inputs a list was built from. A change of any of
// them reshuffles.
type feedKey struct {
	preference entities.SourcePreference
	locale     entities.Locale
	userID     string
}

// State is a snapshot of a feed for rendering.
type State struct {
	Category   entities.Category
	Entry      Entry
	Text       string
	IsFavorite bool
	Loading    bool
	Error      string
	Position   int
	Total      int
	Preference entities.SourcePreference
	Locale     entities.Locale
}

// Feed is the screen binding of one category: a shuffled list of the
// category's items with a cursor, favourite status from the shared
// Favourites, and loading/error state.
type Feed struct {
	category   entities.Category
	adapter    *Adapter
	favourites *Favourites
	prefs      PreferenceSource
	locale     LocaleProvider
	identity   identity.Provider

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	rng     *rand.Rand
	list    *List
	key     feedKey
	built   bool
	gen     uint64 // last started load
	loading bool
	err     error
	closed  bool

	unsubscribe []func()
}

// NewFeed creates a feed and subscribes it to preference, language and
// session changes, each of which triggers a background reload. Call Load
// for the initial fetch and Close to release subscriptions.
func NewFeed(category entities.Category, deps Deps) *Feed {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Feed{
		category:   category,
		adapter:    NewAdapter(deps.Client),
		favourites: deps.Favourites,
		prefs:      deps.Preferences,
		locale:     deps.Locale,
		identity:   deps.Identity,
		ctx:        ctx,
		cancel:     cancel,
		rng:        deps.Rand,
		key:        feedKey{preference: entities.DefaultSourcePreference, locale: entities.DefaultLocale},
	}
	f.list = Build(nil, Intro(category, entities.DefaultLocale), f.rng)

	f.unsubscribe = []func(){
		deps.Preferences.Subscribe(func(entities.SourcePreference) { f.reloadInBackground() }),
		deps.Locale.Subscribe(func(entities.Locale) { f.reloadInBackground() }),
		deps.Identity.Subscribe(func(u *identity.User) {
			f.dropUser(userIDOf(u))
			f.reloadInBackground()
		}),
	}
	return f
}

// dropUser discards a list built for another user so the previous user's own
// items are never shown while the reload is in flight.
func (f *Feed) dropUser(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.key.userID == userID {
		return
	}
	f.list = Build(nil, Intro(f.category, f.key.locale), f.rng)
	f.key.userID = userID
	f.built = false
}

func (f *Feed) currentKey(ctx context.Context) feedKey {
	return feedKey{
		preference: f.prefs.Get(ctx),
		locale:     f.locale.Locale(ctx),
		userID:     identity.UserID(f.identity),
	}
}

// Stale reports whether the feed has never loaded or its list was built
// from a preference, language or user that is no longer current.
func (f *Feed) Stale(ctx context.Context) bool {
	key := f.currentKey(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.built || key != f.key
}

func (f *Feed) Category() entities.Category {
	return f.category
}

func (f *Feed) reloadInBackground() {
	go func() {
		if err := f.Load(f.ctx); err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("Feed: %s reload failed: %v", f.category.Slug(), err)
		}
	}()
}

// Load fetches the category. When the preference, language or user differ
// from the last build the list is rebuilt with a fresh shuffle; otherwise it
// is refreshed in place and the displayed item stays put. A load that was
// overtaken by a newer one is discarded.
func (f *Feed) Load(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	f.gen++
	gen := f.gen
	f.loading = true
	f.mu.Unlock()

	key := f.currentKey(ctx)
	items, err := f.adapter.FetchCategory(ctx, Request{
		Category:   f.category,
		Preference: key.preference,
		UserID:     key.userID,
		Locale:     key.locale,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if gen != f.gen {
		return nil
	}
	f.loading = false
	if err != nil {
		f.err = err
		if f.key.userID != key.userID {
			f.list = Build(nil, Intro(f.category, key.locale), f.rng)
			f.key = key
			f.built = false
		}
		return err
	}
	f.err = nil

	if !f.built || key != f.key {
		f.list = Build(items, Intro(f.category, key.locale), f.rng)
		f.key = key
		f.built = true
		return nil
	}
	f.list.Refresh(items)
	return nil
}

// Loaded reports whether a load has succeeded since the feed was created.
func (f *Feed) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.built
}

func (f *Feed) Current() Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list.Current()
}

func (f *Feed) Advance() Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list.Advance()
}

func (f *Feed) Retreat() Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list.Retreat()
}

// ToggleFavorite toggles the displayed item, then refreshes the list without
// reshuffling. ErrNotAuthenticated is returned as is so callers can prompt
// for sign-in; other failures are also kept as the feed's error.
func (f *Feed) ToggleFavorite(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	entry := f.list.Current()
	f.mu.Unlock()

	if entry.Empty() {
		return ErrNoItem
	}

	if err := f.favourites.Toggle(ctx, entry.Item.ID); err != nil {
		if !errors.Is(err, ErrNotAuthenticated) && !errors.Is(err, ErrClosed) {
			f.mu.Lock()
			f.err = err
			f.mu.Unlock()
		}
		return err
	}
	return f.Load(ctx)
}

func (f *Feed) IsFavorite(itemID string) bool {
	return f.favourites.IsFavorite(itemID)
}

func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Err returns the last error message, or "".
func (f *Feed) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		return ""
	}
	return f.err.Error()
}

// State returns a consistent snapshot of the feed.
func (f *Feed) State() State {
	f.mu.Lock()
	entry := f.list.Current()
	s := State{
		Category:   f.category,
		Entry:      entry,
		Text:       entry.Text(f.key.locale),
		Loading:    f.loading,
		Position:   f.list.Position(),
		Total:      f.list.Len(),
		Preference: f.key.preference,
		Locale:     f.key.locale,
	}
	if f.err != nil {
		s.Error = f.err.Error()
	}
	f.mu.Unlock()

	if entry.Item != nil {
		s.IsFavorite = f.favourites.IsFavorite(entry.Item.ID)
	}
	return s
}

// Items returns the items in display order.
func (f *Feed) Items() []Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list.Items()
}

// Close stops reacting to changes. Late results are dropped. Safe to call
// more than once. The shared Favourites is not closed.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	unsubscribe := f.unsubscribe
	f.unsubscribe = nil
	f.mu.Unlock()

	f.cancel()
	for _, fn := range unsubscribe {
		fn()
	}
}
