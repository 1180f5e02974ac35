// Package settingsstore exposes typed device preferences on top of the
// settings table.
//
// Preferences are scoped per device, not per account: every key is stored
// under a "device:<id>:" prefix by Scope. The typed stores (source
// preference, language) cache the last effective value and notify
// subscribers when it changes.
//
// # Usage
//
//	scope := settingsstore.NewScope(settings.NewRepository(db.DB), deviceID)
//	prefs := settingsstore.NewSourcePreferenceStore(scope)
//	pref, err := prefs.SetSourceEnabled(ctx, entities.ContentSourceCurated, false)
package settingsstore

import (
	"context"
	"sync"
)

// Repository is the settings table access Scope needs.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// KeyValue is the local persistence behind the typed stores.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

const devicePrefix = "device:"

// DevicePrefix returns the key prefix of a device's settings.
func DevicePrefix(deviceID string) string {
	return devicePrefix + deviceID + ":"
}

// Scope is a KeyValue bound to one device.
type Scope struct {
	repo     Repository
	deviceID string
}

func NewScope(repo Repository, deviceID string) *Scope {
	return &Scope{repo: repo, deviceID: deviceID}
}

// Key returns the stored key for a device-level key.
func (s *Scope) Key(key string) string {
	return DevicePrefix(s.deviceID) + key
}

func (s *Scope) Get(ctx context.Context, key string) (string, bool, error) {
	return s.repo.Get(ctx, s.Key(key))
}

func (s *Scope) Set(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, s.Key(key), value)
}

func (s *Scope) Delete(ctx context.Context, key string) error {
	return s.repo.DeleteSetting(ctx, s.Key(key))
}

// listeners is a set of change callbacks.
type listeners[T any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	l.nextID++
	id := l.nextID
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
