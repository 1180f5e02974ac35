package content

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/mrlokans/quna/internal/identity"
	"github.com/mrlokans/quna/internal/realtime"
	"github.com/mrlokans/quna/internal/remote"
)

// FavouritesState is the synchroniser's state for the current user.
type FavouritesState string

const (
	FavouritesUnauthenticated FavouritesState = "unauthenticated"
	FavouritesLoading         FavouritesState = "loading"
	FavouritesReady           FavouritesState = "ready"
)

// Favourites holds the set of quote ids the signed-in user has favourited.
//
// The set is only ever replaced by a full refetch: after a toggle, and after
// every change notification for the user. Refetches are numbered and a
// response older than the newest applied one is dropped, so overlapping
// refetches converge on the latest remote state.
type Favourites struct {
	client   remote.Client
	adapter  *Adapter
	identity identity.Provider

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	closed  bool
	userID  string
	ids     map[string]struct{}
	state   FavouritesState
	err     error
	seq     uint64 // last issued refetch
	applied uint64 // last applied refetch
	sub     *realtime.Subscription

	unsubscribeIdentity func()
	listeners           map[int]func()
	nextListener        int
}

// NewFavourites creates a synchroniser following the identity provider. An
// initial refetch starts in the background when a user is signed in.
func NewFavourites(client remote.Client, ident identity.Provider) *Favourites {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Favourites{
		client:    client,
		adapter:   NewAdapter(client),
		identity:  ident,
		ctx:       ctx,
		cancel:    cancel,
		ids:       make(map[string]struct{}),
		state:     FavouritesUnauthenticated,
		listeners: make(map[int]func()),
	}

	f.unsubscribeIdentity = ident.Subscribe(func(u *identity.User) {
		if f.switchUser(userIDOf(u)) {
			go f.refetchInBackground()
		}
	})
	if f.switchUser(identity.UserID(ident)) {
		go f.refetchInBackground()
	}
	return f
}

func userIDOf(u *identity.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

// switchUser resets the set for a new user and moves the change
// subscription. It reports whether a refetch is needed.
func (f *Favourites) switchUser(userID string) bool {
	f.mu.Lock()
	if f.closed || (f.started && f.userID == userID) {
		f.mu.Unlock()
		return false
	}
	f.started = true
	old := f.sub
	f.sub = nil
	f.userID = userID
	f.ids = make(map[string]struct{})
	f.err = nil
	// Drop every in-flight refetch of the previous user.
	f.seq++
	f.applied = f.seq
	if userID == "" {
		f.state = FavouritesUnauthenticated
	} else {
		f.state = FavouritesLoading
	}
	f.mu.Unlock()

	if old != nil {
		old.Unsubscribe()
	}
	f.notify()
	if userID == "" {
		return false
	}

	sub := f.client.Subscribe(realtime.Filter{
		Table:  remote.TableFavourites,
		Column: remote.ColumnUserID,
		Value:  userID,
	}, func(realtime.Event) {
		f.refetchInBackground()
	})

	f.mu.Lock()
	if f.closed || f.userID != userID {
		f.mu.Unlock()
		sub.Unsubscribe()
		return false
	}
	f.sub = sub
	f.mu.Unlock()
	return true
}

func (f *Favourites) refetchInBackground() {
	if err := f.Refetch(f.ctx); err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
		log.Printf("Favourites: refetch failed: %v", err)
	}
}

// Refetch replaces the favourite set with the remote one. It is a no-op for
// anonymous sessions.
func (f *Favourites) Refetch(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	userID := f.userID
	if userID == "" {
		f.mu.Unlock()
		return nil
	}
	f.seq++
	seq := f.seq
	f.state = FavouritesLoading
	f.mu.Unlock()

	ids, err := f.adapter.FetchFavourites(ctx, userID)

	f.mu.Lock()
	if f.closed || f.userID != userID || seq < f.applied {
		f.mu.Unlock()
		return err
	}
	f.applied = seq
	if seq == f.seq {
		f.state = FavouritesReady
	}
	if err != nil {
		f.err = err
	} else {
		f.ids = ids
		f.err = nil
	}
	f.mu.Unlock()

	f.notify()
	return err
}

// Toggle flips itemID in the user's favourites on the remote store, then
// refetches the authoritative set.
func (f *Favourites) Toggle(ctx context.Context, itemID string) error {
	f.mu.Lock()
	closed, userID := f.closed, f.userID
	f.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if userID == "" {
		return ErrNotAuthenticated
	}

	if err := f.client.ToggleMembership(ctx, remote.TableQuotes, itemID, userID); err != nil {
		return &FetchError{Op: "toggle favourite", Err: err}
	}
	return f.Refetch(ctx)
}

// IsFavorite reports whether itemID is in the last fetched set.
func (f *Favourites) IsFavorite(itemID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ids[itemID]
	return ok
}

// IDs returns the favourite ids, sorted.
func (f *Favourites) IDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (f *Favourites) State() FavouritesState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the last refetch error, or "" after a successful refetch.
func (f *Favourites) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		return ""
	}
	return f.err.Error()
}

// UserID returns the user the set belongs to.
func (f *Favourites) UserID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userID
}

// OnChange registers fn to run after the set or state changes.
func (f *Favourites) OnChange(fn func()) func() {
	f.mu.Lock()
	f.nextListener++
	id := f.nextListener
	f.listeners[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *Favourites) notify() {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close releases the change subscription and stops following the identity
// provider. Safe to call more than once.
func (f *Favourites) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	sub := f.sub
	f.sub = nil
	f.listeners = make(map[int]func())
	f.mu.Unlock()

	f.cancel()
	if sub != nil {
		sub.Unsubscribe()
	}
	if f.unsubscribeIdentity != nil {
		f.unsubscribeIdentity()
	}
}
