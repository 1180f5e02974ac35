package settingsstore

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mrlokans/quna/internal/entities"
)

// LanguageStore persists the device's UI language.
type LanguageStore struct {
	kv KeyValue

	mu     sync.Mutex
	cached entities.Locale

	subs listeners[entities.Locale]
}

func NewLanguageStore(kv KeyValue) *LanguageStore {
	return &LanguageStore{kv: kv}
}

// Locale returns the stored language, or the default one when unset,
// unsupported or unreadable.
func (s *LanguageStore) Locale(ctx context.Context) entities.Locale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *LanguageStore) loadLocked(ctx context.Context) entities.Locale {
	if s.cached != "" {
		return s.cached
	}

	raw, found, err := s.kv.Get(ctx, entities.SettingKeyLanguage)
	if err != nil {
		log.Printf("Settings: failed to load language: %v", err)
		return entities.DefaultLocale
	}

	locale := entities.DefaultLocale
	if found {
		if parsed, err := entities.ParseLocale(raw); err == nil {
			locale = parsed
		}
	}
	s.cached = locale
	return locale
}

// Set stores the language. Like SetSourceEnabled, the new value is effective
// even if the write fails.
func (s *LanguageStore) Set(ctx context.Context, locale entities.Locale) error {
	if !locale.Valid() {
		return fmt.Errorf("unsupported locale %q", locale)
	}

	s.mu.Lock()
	previous := s.loadLocked(ctx)
	s.cached = locale
	err := s.kv.Set(ctx, entities.SettingKeyLanguage, string(locale))
	s.mu.Unlock()

	if err != nil {
		log.Printf("Settings: failed to persist language %q: %v", locale, err)
		err = fmt.Errorf("failed to persist language: %w", err)
	}
	if locale != previous {
		s.subs.notify(locale)
	}
	return err
}

// Subscribe registers fn for language changes.
func (s *LanguageStore) Subscribe(fn func(entities.Locale)) func() {
	return s.subs.add(fn)
}
