package http

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quna/internal/auth"
	"github.com/mrlokans/quna/internal/content"
	"github.com/mrlokans/quna/internal/database/quotes"
	"github.com/mrlokans/quna/internal/entities"
)

// MaxQuoteLength is the maximum length, in characters, of each localisation.
const MaxQuoteLength = 600

// QuoteResponse is a stored quote as returned by the list endpoints.
type QuoteResponse struct {
	ID          string    `json:"id"`
	Author      string    `json:"author,omitempty"`
	ContentEN   string    `json:"content_en,omitempty"`
	ContentPL   string    `json:"content_pl,omitempty"`
	Language    string    `json:"language"`
	Category    string    `json:"category"`
	Slug        string    `json:"slug"`
	Origin      string    `json:"origin"`
	IsFavourite bool      `json:"is_favourite"`
	IsOwn       bool      `json:"is_own"`
	CreatedAt   time.Time `json:"created_at"`
}

func newQuoteResponse(q entities.Quote, userID string) QuoteResponse {
	favourite := false
	for _, member := range q.FavoritedBy() {
		if member == userID {
			favourite = true
			break
		}
	}
	return QuoteResponse{
		ID:          q.ID,
		Author:      q.Author,
		ContentEN:   q.ContentEN,
		ContentPL:   q.ContentPL,
		Language:    string(q.Language),
		Category:    string(q.Category),
		Slug:        q.Category.Slug(),
		Origin:      string(q.Origin),
		IsFavourite: favourite,
		IsOwn:       q.Origin == entities.OriginUser && q.UserID == userID,
		CreatedAt:   q.CreatedAt,
	}
}

func newQuoteResponses(rows []entities.Quote, userID string) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(rows))
	for _, q := range rows {
		out = append(out, newQuoteResponse(q, userID))
	}
	return out
}

// QuotesController handles user contributions.
type QuotesController struct {
	store QuoteStore
}

func NewQuotesController(store QuoteStore) *QuotesController {
	return &QuotesController{store: store}
}

// CreateQuoteRequest is the body of a contribution.
type CreateQuoteRequest struct {
	Language  string `json:"language"`
	Category  string `json:"category"`
	Author    string `json:"author"`
	ContentEN string `json:"content_en"`
	ContentPL string `json:"content_pl"`
}

// validate normalises the request and returns per-field problems. Only the
// localisations selected by Language are kept.
func (r *CreateQuoteRequest) validate() (entities.Quote, map[string]string) {
	problems := make(map[string]string)
	quote := entities.Quote{Author: strings.TrimSpace(r.Author)}

	lang := entities.QuoteLanguage(strings.ToLower(strings.TrimSpace(r.Language)))
	var wantEN, wantPL bool
	switch lang {
	case entities.QuoteLanguageEN:
		wantEN = true
	case entities.QuoteLanguagePL:
		wantPL = true
	case entities.QuoteLanguageBoth:
		wantEN, wantPL = true, true
	default:
		problems["language"] = "must be en, pl or both"
	}
	quote.Language = lang

	category, err := entities.ParseCategory(strings.TrimSpace(r.Category))
	if err != nil {
		problems["category"] = "unknown category"
	}
	quote.Category = category

	if wantEN {
		quote.ContentEN = strings.TrimSpace(r.ContentEN)
		checkContent(problems, "content_en", quote.ContentEN)
	}
	if wantPL {
		quote.ContentPL = strings.TrimSpace(r.ContentPL)
		checkContent(problems, "content_pl", quote.ContentPL)
	}
	if utf8.RuneCountInString(quote.Author) > 256 {
		problems["author"] = "must be at most 256 characters"
	}
	return quote, problems
}

func checkContent(problems map[string]string, field, text string) {
	switch {
	case text == "":
		problems[field] = "is required"
	case utf8.RuneCountInString(text) > MaxQuoteLength:
		problems[field] = "must be at most 600 characters"
	}
}

// Create handles POST /api/quotes
// Stores a quote contributed by the signed-in user.
func (qc *QuotesController) Create(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		respondUnauthorized(c)
		return
	}

	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	quote, problems := req.validate()
	if len(problems) > 0 {
		respondValidationError(c, problems)
		return
	}
	quote.UserID = userID

	if err := qc.store.Create(c.Request.Context(), &quote); err != nil {
		respondInternalError(c, err, "create quote")
		return
	}
	respondCreated(c, newQuoteResponse(quote, userID))
}

// ListMine handles GET /api/quotes/mine
// Returns the user's own quotes that are not among their favourites.
func (qc *QuotesController) ListMine(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		respondUnauthorized(c)
		return
	}

	rows, err := qc.store.ListOwnNotFavourited(c.Request.Context(), userID)
	if err != nil {
		respondFetchFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": newQuoteResponses(rows, userID), "total": len(rows)})
}

// Delete handles DELETE /api/quotes/:id
// Only the owner may delete a contributed quote; curated quotes cannot be
// deleted.
func (qc *QuotesController) Delete(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		respondUnauthorized(c)
		return
	}

	err := qc.store.DeleteOwned(c.Request.Context(), c.Param("id"), userID)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, quotes.ErrNotFound):
		respondNotFound(c, "quote")
	case errors.Is(err, quotes.ErrForbidden):
		respondForbidden(c, "only the owner can delete this quote")
	default:
		respondInternalError(c, err, "delete quote")
	}
}

// FavouriteToggleResponse is the result of toggling a quote by id.
type FavouriteToggleResponse struct {
	ID          string   `json:"id"`
	IsFavourite bool     `json:"is_favourite"`
	Favourites  []string `json:"favourites"`
}

// ToggleFavourite handles POST /api/quotes/:id/favourite
// Adds the quote to the signed-in user's favourites or removes it. The
// change goes through the device's favourites so feeds and streams on the
// device see it at once.
func (qc *QuotesController) ToggleFavourite(c *gin.Context) {
	if auth.GetUserID(c) == "" {
		respondUnauthorized(c)
		return
	}
	device, ok := deviceOrAbort(c)
	if !ok {
		return
	}

	id := c.Param("id")
	err := device.Favourites.Toggle(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, FavouriteToggleResponse{
			ID:          id,
			IsFavourite: device.Favourites.IsFavorite(id),
			Favourites:  device.Favourites.IDs(),
		})
	case errors.Is(err, quotes.ErrNotFound):
		respondNotFound(c, "quote")
	case errors.Is(err, content.ErrNotAuthenticated):
		respondUnauthorized(c)
	case errors.Is(err, content.ErrClosed):
		respondError(c, http.StatusServiceUnavailable, "device state is closed, retry the request", CodeUnavailable)
	default:
		respondFetchFailed(c, err)
	}
}
