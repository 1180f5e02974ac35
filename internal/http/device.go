package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/quna/internal/auth"
	"github.com/mrlokans/quna/internal/feeds"
	"github.com/mrlokans/quna/internal/identity"
)

const (
	// DeviceHeader carries the client-chosen device id.
	DeviceHeader = "X-Device-ID"
	// DeviceCookie holds the device id for clients that do not send the header.
	DeviceCookie = "device_id"

	deviceCookieMaxAge = 365 * 24 * 60 * 60
	contextKeyDevice   = "device"
)

// DeviceRegistry resolves a device id and user to their server-side state.
type DeviceRegistry interface {
	Device(id string, user *identity.User) (*feeds.Device, error)
}

// DeviceMiddleware attaches the state of the requesting device for the
// authenticated user, or its anonymous state, to the context. The id comes
// from the X-Device-ID header, then the device_id cookie; a new one is
// issued as a cookie when neither is present.
func DeviceMiddleware(registry DeviceRegistry, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(DeviceHeader))
		if id == "" {
			if cookie, err := c.Cookie(DeviceCookie); err == nil {
				id = cookie
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(DeviceCookie, id, deviceCookieMaxAge, "/", "", secureCookies, true)
		}

		device, err := registry.Device(id, requestUser(c))
		switch {
		case errors.Is(err, feeds.ErrInvalidDeviceID):
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid device id", Code: CodeInvalidDevice})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: CodeUnavailable})
			return
		}

		c.Set(contextKeyDevice, device)
		c.Next()
	}
}

// requestUser maps the authenticated request user to the content core's
// identity. Nil when anonymous.
func requestUser(c *gin.Context) *identity.User {
	userID := auth.GetUserID(c)
	if userID == "" {
		return nil
	}
	return &identity.User{ID: userID, Username: auth.GetUsername(c)}
}

// GetDevice returns the device attached by DeviceMiddleware.
func GetDevice(c *gin.Context) *feeds.Device {
	if v, ok := c.Get(contextKeyDevice); ok {
		if device, ok := v.(*feeds.Device); ok {
			return device
		}
	}
	return nil
}

// deviceOrAbort returns the request's device or responds 400.
func deviceOrAbort(c *gin.Context) (*feeds.Device, bool) {
	device := GetDevice(c)
	if device == nil {
		respondError(c, http.StatusBadRequest, "device id is required", CodeInvalidDevice)
		return nil, false
	}
	return device, true
}
