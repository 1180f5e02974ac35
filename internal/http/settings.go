package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quna/internal/entities"
)

// SourcesResponse describes which content sources feed the categories.
type SourcesResponse struct {
	Preference string `json:"preference"`
	Curated    bool   `json:"curated"`
	Own        bool   `json:"own"`
	Persisted  bool   `json:"persisted"`
	Warning    string `json:"warning,omitempty"`
}

func newSourcesResponse(pref entities.SourcePreference, err error) SourcesResponse {
	resp := SourcesResponse{
		Preference: string(pref),
		Curated:    pref.Includes(entities.ContentSourceCurated),
		Own:        pref.Includes(entities.ContentSourceOwn),
		Persisted:  err == nil,
	}
	if err != nil {
		resp.Warning = err.Error()
	}
	return resp
}

// LanguageResponse is the device's UI language.
type LanguageResponse struct {
	Locale    string   `json:"locale"`
	Available []string `json:"available"`
	Persisted bool     `json:"persisted"`
	Warning   string   `json:"warning,omitempty"`
}

func newLanguageResponse(locale entities.Locale, err error) LanguageResponse {
	available := make([]string, 0, len(entities.Locales))
	for _, l := range entities.Locales {
		available = append(available, string(l))
	}
	resp := LanguageResponse{
		Locale:    string(locale),
		Available: available,
		Persisted: err == nil,
	}
	if err != nil {
		resp.Warning = err.Error()
	}
	return resp
}

// SettingsController manages the per-device source preference and language.
type SettingsController struct{}

func NewSettingsController() *SettingsController {
	return &SettingsController{}
}

// GetSources handles GET /api/settings/sources
func (sc *SettingsController) GetSources(c *gin.Context) {
	device, ok := deviceOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSourcesResponse(device.Preferences.Get(c.Request.Context()), nil))
}

type setSourceRequest struct {
	Source  entities.ContentSource `json:"source" binding:"required"`
	Enabled *bool                  `json:"enabled" binding:"required"`
}

// SetSource handles PUT /api/settings/sources
// Switches one source on or off. Switching off the only active source turns
// the other one on. A failed write still takes effect for this device and is
// reported as a warning.
func (sc *SettingsController) SetSource(c *gin.Context) {
	device, ok := deviceOrAbort(c)
	if !ok {
		return
	}

	var req setSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "source and enabled are required")
		return
	}
	if !req.Source.Valid() {
		respondValidationError(c, map[string]string{"source": "must be curated or own"})
		return
	}

	pref, err := device.Preferences.SetSourceEnabled(c.Request.Context(), req.Source, *req.Enabled)
	c.JSON(http.StatusOK, newSourcesResponse(pref, err))
}

// GetLanguage handles GET /api/settings/language
func (sc *SettingsController) GetLanguage(c *gin.Context) {
	device, ok := deviceOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newLanguageResponse(device.Language.Locale(c.Request.Context()), nil))
}

type setLanguageRequest struct {
	Locale string `json:"locale" binding:"required"`
}

// SetLanguage handles PUT /api/settings/language
func (sc *SettingsController) SetLanguage(c *gin.Context) {
	device, ok := deviceOrAbort(c)
	if !ok {
		return
	}

	var req setLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "locale is required")
		return
	}
	locale, err := entities.ParseLocale(req.Locale)
	if err != nil {
		respondValidationError(c, map[string]string{"locale": err.Error()})
		return
	}

	err = device.Language.Set(c.Request.Context(), locale)
	c.JSON(http.StatusOK, newLanguageResponse(locale, err))
}
