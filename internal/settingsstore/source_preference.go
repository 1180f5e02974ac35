package settingsstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/mrlokans/quna/internal/entities"
)

// ErrPreferenceLoadFailed marks a failed read of the persisted preference.
// It is logged and recovered from, never returned by Get.
var ErrPreferenceLoadFailed = errors.New("preference load failed")

// SourcePreferenceStore persists which content sources feed the category
// lists. The effective preference is never "neither source".
type SourcePreferenceStore struct {
	kv KeyValue

	mu     sync.Mutex
	cached entities.SourcePreference

	subs listeners[entities.SourcePreference]
}

func NewSourcePreferenceStore(kv KeyValue) *SourcePreferenceStore {
	return &SourcePreferenceStore{kv: kv}
}

// Get returns the effective preference. Unset or corrupt values yield the
// default; read failures are logged and yield the default too.
func (s *SourcePreferenceStore) Get(ctx context.Context) entities.SourcePreference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *SourcePreferenceStore) loadLocked(ctx context.Context) entities.SourcePreference {
	if s.cached != "" {
		return s.cached
	}

	raw, found, err := s.kv.Get(ctx, entities.SettingKeyQuoteSource)
	if err != nil {
		log.Printf("Settings: %v: %v", ErrPreferenceLoadFailed, err)
		return entities.DefaultSourcePreference
	}

	pref := entities.SourcePreference(raw)
	if !found || !pref.Valid() {
		if found {
			log.Printf("Settings: ignoring corrupt source preference %q", raw)
		}
		pref = entities.DefaultSourcePreference
	}
	s.cached = pref
	return pref
}

// SetSourceEnabled switches one source on or off and returns the resulting
// preference. Enabling adds the source. Disabling removes it unless it is the
// only active one, in which case the other source is switched on instead.
//
// The returned preference is effective even when persisting it fails; the
// write error is returned alongside and the next Get still observes it.
func (s *SourcePreferenceStore) SetSourceEnabled(ctx context.Context, source entities.ContentSource, enabled bool) (entities.SourcePreference, error) {
	if !source.Valid() {
		return s.Get(ctx), fmt.Errorf("unknown content source %q", source)
	}

	s.mu.Lock()
	current := s.loadLocked(ctx)
	next := nextPreference(current, source, enabled)
	s.cached = next
	err := s.kv.Set(ctx, entities.SettingKeyQuoteSource, string(next))
	s.mu.Unlock()

	if err != nil {
		log.Printf("Settings: failed to persist source preference %q: %v", next, err)
		err = fmt.Errorf("failed to persist source preference: %w", err)
	}
	if next != current {
		s.subs.notify(next)
	}
	return next, err
}

// Subscribe registers fn for preference changes. Call the returned func to
// stop.
func (s *SourcePreferenceStore) Subscribe(fn func(entities.SourcePreference)) func() {
	return s.subs.add(fn)
}

func nextPreference(current entities.SourcePreference, source entities.ContentSource, enabled bool) entities.SourcePreference {
	curated := current.Includes(entities.ContentSourceCurated)
	own := current.Includes(entities.ContentSourceOwn)

	switch source {
	case entities.ContentSourceCurated:
		curated = enabled
	case entities.ContentSourceOwn:
		own = enabled
	}

	if pref, ok := entities.PreferenceFor(curated, own); ok {
		return pref
	}
	// Never leave both sources off: switch the other one on.
	pref, _ := entities.PreferenceFor(source.Other() == entities.ContentSourceCurated, source.Other() == entities.ContentSourceOwn)
	return pref
}
