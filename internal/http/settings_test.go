package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quna/internal/entities"
)

func TestSettingsController_Sources(t *testing.T) {
	t.Run("defaults to both sources", func(t *testing.T) {
		fx := setupAPI(t)

		w := fx.do(t, request{method: http.MethodGet, path: "/api/settings/sources", device: "phone"})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[SourcesResponse](t, w)
		assert.Equal(t, "both", resp.Preference)
		assert.True(t, resp.Curated)
		assert.True(t, resp.Own)
	})

	t.Run("disabling the last source enables the other", func(t *testing.T) {
		fx := setupAPI(t)
		enabled := false

		resp := decode[SourcesResponse](t, fx.do(t, request{
			method: http.MethodPut, path: "/api/settings/sources", device: "phone",
			body: jsonObject{"source": "own", "enabled": enabled},
		}))
		assert.Equal(t, "master", resp.Preference)
		assert.True(t, resp.Persisted)

		resp = decode[SourcesResponse](t, fx.do(t, request{
			method: http.MethodPut, path: "/api/settings/sources", device: "phone",
			body: jsonObject{"source": "curated", "enabled": enabled},
		}))
		assert.Equal(t, "user", resp.Preference)
		assert.False(t, resp.Curated)
		assert.True(t, resp.Own)
	})

	t.Run("preference is per device and survives eviction", func(t *testing.T) {
		fx := setupAPI(t)

		fx.do(t, request{
			method: http.MethodPut, path: "/api/settings/sources", device: "phone",
			body: jsonObject{"source": "own", "enabled": false},
		})
		other := decode[SourcesResponse](t, fx.do(t, request{method: http.MethodGet, path: "/api/settings/sources", device: "tablet"}))
		assert.Equal(t, "both", other.Preference)

		fx.registry.EvictIdle(time.Now().Add(2 * time.Hour))
		again := decode[SourcesResponse](t, fx.do(t, request{method: http.MethodGet, path: "/api/settings/sources", device: "phone"}))
		assert.Equal(t, "master", again.Preference)
	})

	t.Run("rejects unknown sources", func(t *testing.T) {
		fx := setupAPI(t)

		w := fx.do(t, request{
			method: http.MethodPut, path: "/api/settings/sources", device: "phone",
			body: jsonObject{"source": "friends", "enabled": true},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = fx.do(t, request{
			method: http.MethodPut, path: "/api/settings/sources", device: "phone",
			body: jsonObject{"source": "own"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("curated only hides own quotes from the feed", func(t *testing.T) {
		fx := setupAPI(t)
		userID, token := fx.signUp(t, "reader")
		fx.seedCurated(t, entities.CategoryWisdom, "curated")
		w := fx.do(t, request{
			method: http.MethodPost, path: "/api/quotes", device: "phone", token: token,
			body: CreateQuoteRequest{Language: "en", Category: "Wisdom", ContentEN: "mine"},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NotEmpty(t, userID)

		state := decode[FeedStateResponse](t, fx.do(t, request{method: http.MethodGet, path: "/api/feeds/wisdom", device: "phone", token: token}))
		assert.Equal(t, 2, state.Total)

		fx.do(t, request{
			method: http.MethodPut, path: "/api/settings/sources", device: "phone", token: token,
			body: jsonObject{"source": "own", "enabled": false},
		})
		assert.Eventually(t, func() bool {
			state := decode[FeedStateResponse](t, fx.do(t, request{method: http.MethodGet, path: "/api/feeds/wisdom", device: "phone", token: token}))
			return state.Total == 1 && state.Preference == "master"
		}, 2*time.Second, 20*time.Millisecond)
	})
}

func TestSettingsController_Language(t *testing.T) {
	t.Run("defaults to English", func(t *testing.T) {
		fx := setupAPI(t)

		resp := decode[LanguageResponse](t, fx.do(t, request{method: http.MethodGet, path: "/api/settings/language", device: "phone"}))

		assert.Equal(t, "en", resp.Locale)
		assert.ElementsMatch(t, []string{"en", "pl"}, resp.Available)
	})

	t.Run("accepts region codes", func(t *testing.T) {
		fx := setupAPI(t)

		w := fx.do(t, request{
			method: http.MethodPut, path: "/api/settings/language", device: "phone",
			body: jsonObject{"locale": "pl-PL"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pl", decode[LanguageResponse](t, w).Locale)

		categories := decode[struct {
			Locale string `json:"locale"`
		}](t, fx.do(t, request{method: http.MethodGet, path: "/api/categories", device: "phone"}))
		assert.Equal(t, "pl", categories.Locale)
	})

	t.Run("rejects unsupported languages", func(t *testing.T) {
		fx := setupAPI(t)

		w := fx.do(t, request{
			method: http.MethodPut, path: "/api/settings/language", device: "phone",
			body: jsonObject{"locale": "de"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeValidation, decode[ErrorResponse](t, w).Code)
	})

	t.Run("feed text follows the language", func(t *testing.T) {
		fx := setupAPI(t)
		_, _, err := fx.quotes.UpsertCurated(context.Background(), []entities.Quote{
			{Category: entities.CategoryWisdom, ContentEN: "Hello", ContentPL: "Cześć"},
		})
		require.NoError(t, err)

		state := decode[FeedStateResponse](t, fx.do(t, request{method: http.MethodGet, path: "/api/feeds/wisdom", device: "phone"}))
		assert.Equal(t, "Hello", state.Text)

		fx.do(t, request{
			method: http.MethodPut, path: "/api/settings/language", device: "phone",
			body: jsonObject{"locale": "pl"},
		})
		assert.Eventually(t, func() bool {
			state := decode[FeedStateResponse](t, fx.do(t, request{method: http.MethodGet, path: "/api/feeds/wisdom", device: "phone"}))
			return state.Text == "Cześć"
		}, 2*time.Second, 20*time.Millisecond)
	})
}
