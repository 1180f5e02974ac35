package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quna/internal/auth"
	"github.com/mrlokans/quna/internal/content"
)

// streamHeartbeat keeps idle favourites streams open through proxies.
const streamHeartbeat = 25 * time.Second

// FavouritesSnapshot is the synchroniser state pushed to stream clients.
type FavouritesSnapshot struct {
	State string   `json:"state"`
	IDs   []string `json:"ids"`
	Error string   `json:"error,omitempty"`
}

func newFavouritesSnapshot(f *content.Favourites) FavouritesSnapshot {
	return FavouritesSnapshot{
		State: string(f.State()),
		IDs:   f.IDs(),
		Error: f.Err(),
	}
}

// FavouritesController lists favourites and streams their changes.
type FavouritesController struct {
	store     QuoteStore
	heartbeat time.Duration
}

func NewFavouritesController(store QuoteStore) *FavouritesController {
	return &FavouritesController{store: store, heartbeat: streamHeartbeat}
}

// List handles GET /api/favourites
// Returns the signed-in user's favourite quotes, most recent first.
func (fc *FavouritesController) List(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		respondUnauthorized(c)
		return
	}

	rows, err := fc.store.ListFavourites(c.Request.Context(), userID)
	if err != nil {
		respondFetchFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": newQuoteResponses(rows, userID), "total": len(rows)})
}

// Stream handles GET /api/favourites/stream
// Server-sent events: one "favourites" event with the current set, then one
// after every change of the user's favourites on this device, until the
// client leaves.
func (fc *FavouritesController) Stream(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		respondUnauthorized(c)
		return
	}
	device, ok := deviceOrAbort(c)
	if !ok {
		return
	}

	changed := make(chan struct{}, 1)
	unsubscribe := device.Favourites.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	send := func(event string, data any) {
		c.SSEvent(event, data)
		c.Writer.Flush()
	}
	sendSnapshot := func() {
		if device.Favourites.UserID() != userID {
			return
		}
		send("favourites", newFavouritesSnapshot(device.Favourites))
	}
	sendSnapshot()

	ticker := time.NewTicker(fc.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			sendSnapshot()
		case <-ticker.C:
			send("ping", gin.H{"time": time.Now().Format(time.RFC3339)})
		}
	}
}
