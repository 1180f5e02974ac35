package settingsstore

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/quna/internal/database"
	"github.com/mrlokans/quna/internal/database/settings"
	"github.com/mrlokans/quna/internal/entities"
)

// memoryKV is an in-memory KeyValue with injectable failures.
type memoryKV struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	setErr  error
	setCall int
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: make(map[string]string)}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func setupTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	dbPath := "./test_settings_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabaseWithOptions(dbPath, database.Options{LogLevel: logger.Silent, SkipSeed: true})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestScope_IsolatesDevices(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := settings.NewRepository(db.DB)
	a := NewScope(repo, "device-a")
	b := NewScope(repo, "device-b")

	require.NoError(t, a.Set(ctx, entities.SettingKeyLanguage, "pl"))

	value, found, err := a.Get(ctx, entities.SettingKeyLanguage)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "pl", value)

	_, found, err = b.Get(ctx, entities.SettingKeyLanguage)
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, "device:device-a:appLanguage", a.Key(entities.SettingKeyLanguage))

	require.NoError(t, a.Delete(ctx, entities.SettingKeyLanguage))
	_, found, err = a.Get(ctx, entities.SettingKeyLanguage)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSourcePreferenceStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to both when unset", func(t *testing.T) {
		store := NewSourcePreferenceStore(newMemoryKV())
		assert.Equal(t, entities.SourceBoth, store.Get(ctx))
	})

	t.Run("reads persisted value", func(t *testing.T) {
		kv := newMemoryKV()
		kv.values[entities.SettingKeyQuoteSource] = "master"
		store := NewSourcePreferenceStore(kv)
		assert.Equal(t, entities.SourceCuratedOnly, store.Get(ctx))
	})

	t.Run("defaults to both when corrupt", func(t *testing.T) {
		kv := newMemoryKV()
		kv.values[entities.SettingKeyQuoteSource] = "neither"
		store := NewSourcePreferenceStore(kv)
		assert.Equal(t, entities.SourceBoth, store.Get(ctx))
	})

	t.Run("defaults to both when the read fails", func(t *testing.T) {
		kv := newMemoryKV()
		kv.getErr = errors.New("disk on fire")
		store := NewSourcePreferenceStore(kv)
		assert.Equal(t, entities.SourceBoth, store.Get(ctx))
	})
}

func TestSourcePreferenceStore_SetSourceEnabled(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		start   entities.SourcePreference
		source  entities.ContentSource
		enabled bool
		want    entities.SourcePreference
	}{
		{"both, disable curated", entities.SourceBoth, entities.ContentSourceCurated, false, entities.SourceOwnOnly},
		{"both, disable own", entities.SourceBoth, entities.ContentSourceOwn, false, entities.SourceCuratedOnly},
		{"own only, disable own flips curated on", entities.SourceOwnOnly, entities.ContentSourceOwn, false, entities.SourceCuratedOnly},
		{"curated only, disable curated flips own on", entities.SourceCuratedOnly, entities.ContentSourceCurated, false, entities.SourceOwnOnly},
		{"curated only, enable own", entities.SourceCuratedOnly, entities.ContentSourceOwn, true, entities.SourceBoth},
		{"own only, enable curated", entities.SourceOwnOnly, entities.ContentSourceCurated, true, entities.SourceBoth},
		{"both, enable curated", entities.SourceBoth, entities.ContentSourceCurated, true, entities.SourceBoth},
		{"curated only, disable own", entities.SourceCuratedOnly, entities.ContentSourceOwn, false, entities.SourceCuratedOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemoryKV()
			kv.values[entities.SettingKeyQuoteSource] = string(tt.start)
			store := NewSourcePreferenceStore(kv)

			got, err := store.SetSourceEnabled(ctx, tt.source, tt.enabled)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, store.Get(ctx))
			assert.Equal(t, string(tt.want), kv.values[entities.SettingKeyQuoteSource])
		})
	}
}

func TestSourcePreferenceStore_NeverEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewSourcePreferenceStore(newMemoryKV())

	sources := []entities.ContentSource{entities.ContentSourceCurated, entities.ContentSourceOwn}
	// Walk every sequence of four toggles.
	for seq := 0; seq < 1<<8; seq++ {
		for step := 0; step < 4; step++ {
			bits := seq >> (step * 2)
			source := sources[bits&1]
			enabled := bits&2 != 0

			got, err := store.SetSourceEnabled(ctx, source, enabled)
			require.NoError(t, err)
			require.True(t, got.Valid(), "invalid preference %q", got)
			require.True(t,
				got.Includes(entities.ContentSourceCurated) || got.Includes(entities.ContentSourceOwn),
				"preference %q includes no source", got)
		}
	}
}

func TestSourcePreferenceStore_WriteFailureKeepsEffectiveValue(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	kv.setErr = errors.New("read-only")
	store := NewSourcePreferenceStore(kv)

	got, err := store.SetSourceEnabled(ctx, entities.ContentSourceOwn, false)
	assert.Error(t, err)
	assert.Equal(t, entities.SourceCuratedOnly, got)
	assert.Equal(t, entities.SourceCuratedOnly, store.Get(ctx))
}

func TestSourcePreferenceStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store := NewSourcePreferenceStore(newMemoryKV())

	var got []entities.SourcePreference
	unsubscribe := store.Subscribe(func(p entities.SourcePreference) {
		got = append(got, p)
	})

	_, err := store.SetSourceEnabled(ctx, entities.ContentSourceCurated, false)
	require.NoError(t, err)
	// No change, no notification
	_, err = store.SetSourceEnabled(ctx, entities.ContentSourceCurated, false)
	require.NoError(t, err)

	unsubscribe()
	unsubscribe()
	_, err = store.SetSourceEnabled(ctx, entities.ContentSourceCurated, true)
	require.NoError(t, err)

	assert.Equal(t, []entities.SourcePreference{entities.SourceOwnOnly}, got)
}

func TestSourcePreferenceStore_RejectsUnknownSource(t *testing.T) {
	store := NewSourcePreferenceStore(newMemoryKV())

	got, err := store.SetSourceEnabled(context.Background(), entities.ContentSource("rss"), true)
	assert.Error(t, err)
	assert.Equal(t, entities.SourceBoth, got)
}

func TestSourcePreferenceStore_PersistsAcrossInstances(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := settings.NewRepository(db.DB)
	first := NewSourcePreferenceStore(NewScope(repo, "phone"))
	_, err := first.SetSourceEnabled(ctx, entities.ContentSourceCurated, false)
	require.NoError(t, err)

	second := NewSourcePreferenceStore(NewScope(repo, "phone"))
	assert.Equal(t, entities.SourceOwnOnly, second.Get(ctx))

	other := NewSourcePreferenceStore(NewScope(repo, "tablet"))
	assert.Equal(t, entities.SourceBoth, other.Get(ctx))
}

func TestLanguageStore(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to english", func(t *testing.T) {
		store := NewLanguageStore(newMemoryKV())
		assert.Equal(t, entities.LocaleEN, store.Locale(ctx))
	})

	t.Run("normalises stored codes", func(t *testing.T) {
		kv := newMemoryKV()
		kv.values[entities.SettingKeyLanguage] = "pl-PL"
		store := NewLanguageStore(kv)
		assert.Equal(t, entities.LocalePL, store.Locale(ctx))
	})

	t.Run("set persists and notifies", func(t *testing.T) {
		kv := newMemoryKV()
		store := NewLanguageStore(kv)

		var got []entities.Locale
		defer store.Subscribe(func(l entities.Locale) { got = append(got, l) })()

		require.NoError(t, store.Set(ctx, entities.LocalePL))
		require.NoError(t, store.Set(ctx, entities.LocalePL))

		assert.Equal(t, entities.LocalePL, store.Locale(ctx))
		assert.Equal(t, "pl", kv.values[entities.SettingKeyLanguage])
		assert.Equal(t, []entities.Locale{entities.LocalePL}, got)
	})

	t.Run("rejects unsupported locale", func(t *testing.T) {
		kv := newMemoryKV()
		store := NewLanguageStore(kv)
		assert.Error(t, store.Set(ctx, entities.Locale("de")))
		assert.Zero(t, kv.setCall)
	})
}
