package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quna/internal/content"
	"github.com/mrlokans/quna/internal/entities"
	"github.com/mrlokans/quna/internal/feeds"
)

// ItemResponse is a feed item as rendered to clients.
type ItemResponse struct {
	ID       string            `json:"id"`
	Author   string            `json:"author,omitempty"`
	Category string            `json:"category"`
	Origin   string            `json:"origin"`
	Content  map[string]string `json:"content"`
}

// FeedStateResponse is the screen state of a category feed.
type FeedStateResponse struct {
	Category   string        `json:"category"`
	Slug       string        `json:"slug"`
	Item       *ItemResponse `json:"item,omitempty"`
	Text       string        `json:"text"`
	IsIntro    bool          `json:"is_intro"`
	IsFavorite bool          `json:"is_favorite"`
	Loading    bool          `json:"loading"`
	Error      string        `json:"error,omitempty"`
	Position   int           `json:"position"`
	Total      int           `json:"total"`
	Preference string        `json:"preference"`
	Locale     string        `json:"locale"`
}

func newItemResponse(item content.Item) ItemResponse {
	localised := make(map[string]string, len(item.Content))
	for locale, text := range item.Content {
		localised[string(locale)] = text
	}
	return ItemResponse{
		ID:       item.ID,
		Author:   item.Author,
		Category: string(item.Category),
		Origin:   string(item.Origin),
		Content:  localised,
	}
}

func newFeedStateResponse(s content.State) FeedStateResponse {
	resp := FeedStateResponse{
		Category:   string(s.Category),
		Slug:       s.Category.Slug(),
		Text:       s.Text,
		IsIntro:    s.Entry.Empty(),
		IsFavorite: s.IsFavorite,
		Loading:    s.Loading,
		Error:      s.Error,
		Position:   s.Position,
		Total:      s.Total,
		Preference: string(s.Preference),
		Locale:     string(s.Locale),
	}
	if s.Entry.Item != nil {
		item := newItemResponse(*s.Entry.Item)
		resp.Item = &item
	}
	return resp
}

// FeedsController serves the per-device category feeds.
type FeedsController struct{}

func NewFeedsController() *FeedsController {
	return &FeedsController{}
}

// feed resolves the device and the :category slug, responding on failure.
func (fc *FeedsController) feed(c *gin.Context) (*content.Feed, bool) {
	device, ok := deviceOrAbort(c)
	if !ok {
		return nil, false
	}
	category, err := entities.CategoryFromSlug(c.Param("category"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "unknown category", CodeUnknownCategory)
		return nil, false
	}
	return device.Feed(category), true
}

// maxLoadAttempts bounds retries of a load overtaken by a background reload.
const maxLoadAttempts = 3

// ensureLoaded loads the feed before answering when it has never loaded or
// its preference, language or user changed since the last build. Fetch
// failures stay in the feed state.
func (fc *FeedsController) ensureLoaded(c *gin.Context, feed *content.Feed) bool {
	ctx := c.Request.Context()
	for attempt := 0; attempt < maxLoadAttempts && feed.Stale(ctx); attempt++ {
		err := feed.Load(ctx)
		if err == nil {
			continue
		}
		if fc.closed(c, err) {
			return false
		}
		break
	}
	return true
}

// closed responds 503 when err means the device was evicted mid-request.
func (fc *FeedsController) closed(c *gin.Context, err error) bool {
	if errors.Is(err, content.ErrClosed) || errors.Is(err, feeds.ErrClosed) {
		respondError(c, http.StatusServiceUnavailable, "feed is closed, retry the request", CodeUnavailable)
		return true
	}
	return false
}

// GetFeed handles GET /api/feeds/:category
// Loads the feed on first access and returns the current entry.
func (fc *FeedsController) GetFeed(c *gin.Context) {
	feed, ok := fc.feed(c)
	if !ok {
		return
	}
	if !fc.ensureLoaded(c, feed) {
		return
	}
	c.JSON(http.StatusOK, newFeedStateResponse(feed.State()))
}

// Next handles POST /api/feeds/:category/next
func (fc *FeedsController) Next(c *gin.Context) {
	feed, ok := fc.feed(c)
	if !ok {
		return
	}
	if !fc.ensureLoaded(c, feed) {
		return
	}
	feed.Advance()
	c.JSON(http.StatusOK, newFeedStateResponse(feed.State()))
}

// Previous handles POST /api/feeds/:category/previous
func (fc *FeedsController) Previous(c *gin.Context) {
	feed, ok := fc.feed(c)
	if !ok {
		return
	}
	if !fc.ensureLoaded(c, feed) {
		return
	}
	feed.Retreat()
	c.JSON(http.StatusOK, newFeedStateResponse(feed.State()))
}

// Reload handles POST /api/feeds/:category/reload
// Refetches the category. The displayed item is kept unless the inputs of
// the feed changed.
func (fc *FeedsController) Reload(c *gin.Context) {
	feed, ok := fc.feed(c)
	if !ok {
		return
	}
	if err := feed.Load(c.Request.Context()); err != nil && fc.closed(c, err) {
		return
	}
	c.JSON(http.StatusOK, newFeedStateResponse(feed.State()))
}

// ToggleFavourite handles POST /api/feeds/:category/favourite
// Toggles the favourite status of the displayed item for the signed-in user.
func (fc *FeedsController) ToggleFavourite(c *gin.Context) {
	feed, ok := fc.feed(c)
	if !ok {
		return
	}
	if !fc.ensureLoaded(c, feed) {
		return
	}

	err := feed.ToggleFavorite(c.Request.Context())
	switch {
	case err == nil, errors.Is(err, content.ErrFetchFailed):
		c.JSON(http.StatusOK, newFeedStateResponse(feed.State()))
	case errors.Is(err, content.ErrNotAuthenticated):
		respondUnauthorized(c)
	case errors.Is(err, content.ErrNoItem):
		respondError(c, http.StatusConflict, "no item to favourite", CodeNoItem)
	default:
		if !fc.closed(c, err) {
			respondInternalError(c, err, "toggle favourite")
		}
	}
}

// CategoryResponse describes one category for the home screen.
type CategoryResponse struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Intro string `json:"intro"`
}

// ListCategories handles GET /api/categories
// Returns every category in home screen order with its intro in the
// device's language.
func (fc *FeedsController) ListCategories(c *gin.Context) {
	locale := entities.DefaultLocale
	if device := GetDevice(c); device != nil {
		locale = device.Language.Locale(c.Request.Context())
	}

	categories := make([]CategoryResponse, 0, len(entities.Categories))
	for _, category := range entities.Categories {
		categories = append(categories, CategoryResponse{
			Name:  string(category),
			Slug:  category.Slug(),
			Intro: content.Intro(category, locale),
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "locale": locale})
}
