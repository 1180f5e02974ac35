// Package feeds keeps the server-side state of every active device: its
// identity session, preference stores, favourites synchroniser and one feed
// per category.
//
// State is kept per device and user. Two users sharing a device id get
// separate sessions, favourites and feeds; only the device's persisted
// settings are shared.
//
// Devices are created on first use and evicted after a period of
// inactivity, which closes their feeds and releases their change
// subscriptions.
//
// # Usage
//
//	registry := feeds.NewRegistry(client, settings.NewRepository(db.DB), 30*time.Minute)
//	device, err := registry.Device(deviceID, &identity.User{ID: userID})
//	feed := device.Feed(entities.CategoryWisdom)
package feeds

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/quna/internal/content"
	"github.com/mrlokans/quna/internal/entities"
	"github.com/mrlokans/quna/internal/identity"
	"github.com/mrlokans/quna/internal/remote"
	"github.com/mrlokans/quna/internal/settingsstore"
)

var (
	ErrClosed          = errors.New("feed registry closed")
	ErrInvalidDeviceID = errors.New("invalid device id")
)

const maxDeviceIDLength = 64

// Device is the state of one client device for one user, or for anonymous
// use when UserID is empty.
type Device struct {
	ID          string
	UserID      string
	Session     *identity.Session
	Preferences *settingsstore.SourcePreferenceStore
	Language    *settingsstore.LanguageStore
	Favourites  *content.Favourites

	client remote.Client

	mu       sync.Mutex
	feeds    map[entities.Category]*content.Feed
	lastSeen time.Time
	closed   bool
}

// deviceSettings are the preference stores of one device id, shared by
// every user state on that device.
type deviceSettings struct {
	preferences *settingsstore.SourcePreferenceStore
	language    *settingsstore.LanguageStore
	refs        int
}

func newDeviceSettings(id string, repo settingsstore.Repository) *deviceSettings {
	scope := settingsstore.NewScope(repo, id)
	return &deviceSettings{
		preferences: settingsstore.NewSourcePreferenceStore(scope),
		language:    settingsstore.NewLanguageStore(scope),
	}
}

func newDevice(id string, user *identity.User, client remote.Client, shared *deviceSettings, now time.Time) *Device {
	session := identity.NewSession()
	session.SignIn(user)
	return &Device{
		ID:          id,
		UserID:      identity.UserID(session),
		Session:     session,
		Preferences: shared.preferences,
		Language:    shared.language,
		Favourites:  content.NewFavourites(client, session),
		client:      client,
		feeds:       make(map[entities.Category]*content.Feed),
		lastSeen:    now,
	}
}

// Feed returns the device's feed for category, creating it on first use.
// The feed is not loaded yet when first returned.
func (d *Device) Feed(category entities.Category) *content.Feed {
	d.mu.Lock()
	defer d.mu.Unlock()

	if feed, ok := d.feeds[category]; ok {
		return feed
	}
	feed := content.NewFeed(category, content.Deps{
		Client:      d.client,
		Favourites:  d.Favourites,
		Preferences: d.Preferences,
		Locale:      d.Language,
		Identity:    d.Session,
	})
	if d.closed {
		feed.Close()
		return feed
	}
	d.feeds[category] = feed
	return feed
}

func (d *Device) touch(now time.Time) {
	d.mu.Lock()
	if now.After(d.lastSeen) {
		d.lastSeen = now
	}
	d.mu.Unlock()
}

// LastSeen returns the time of the device's latest request.
func (d *Device) LastSeen() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSeen
}

// FeedCount returns the number of open feeds.
func (d *Device) FeedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.feeds)
}

func (d *Device) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	feeds := d.feeds
	d.feeds = make(map[entities.Category]*content.Feed)
	d.mu.Unlock()

	for _, feed := range feeds {
		feed.Close()
	}
	d.Favourites.Close()
}

// Registry holds the devices.
type Registry struct {
	client      remote.Client
	settings    settingsstore.Repository
	idleTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	devices map[string]*Device
	shared  map[string]*deviceSettings
	closed  bool
}

// NewRegistry creates a registry. idleTimeout <= 0 disables eviction.
func NewRegistry(client remote.Client, settings settingsstore.Repository, idleTimeout time.Duration) *Registry {
	return &Registry{
		client:      client,
		settings:    settings,
		idleTimeout: idleTimeout,
		now:         time.Now,
		devices:     make(map[string]*Device),
		shared:      make(map[string]*deviceSettings),
	}
}

func deviceKey(id, userID string) string {
	return id + "\x00" + userID
}

// Device returns the state of device id for user, creating it if needed,
// and marks it as seen. A nil user selects the anonymous state.
func (r *Registry) Device(id string, user *identity.User) (*Device, error) {
	if id == "" || len(id) > maxDeviceIDLength {
		return nil, ErrInvalidDeviceID
	}
	userID := ""
	if user != nil {
		userID = user.ID
	}
	key := deviceKey(id, userID)
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	device, ok := r.devices[key]
	if !ok {
		shared, ok := r.shared[id]
		if !ok {
			shared = newDeviceSettings(id, r.settings)
			r.shared[id] = shared
		}
		shared.refs++
		device = newDevice(id, user, r.client, shared, now)
		r.devices[key] = device
		log.Printf("Feeds: registered device %s (%d active)", id, len(r.devices))
		return device, nil
	}
	device.touch(now)
	return device, nil
}

// Lookup returns an existing device state without creating or touching it.
func (r *Registry) Lookup(id, userID string) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	device, ok := r.devices[deviceKey(id, userID)]
	return device, ok
}

// Len returns the number of active device states.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// EvictIdle closes devices not seen within the idle timeout and returns how
// many were evicted.
func (r *Registry) EvictIdle(now time.Time) int {
	if r.idleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idleTimeout)

	r.mu.Lock()
	var idle []*Device
	for key, device := range r.devices {
		if device.LastSeen().Before(cutoff) {
			idle = append(idle, device)
			delete(r.devices, key)
			r.releaseLocked(device.ID)
		}
	}
	r.mu.Unlock()

	for _, device := range idle {
		device.close()
	}
	if len(idle) > 0 {
		log.Printf("Feeds: evicted %d idle devices", len(idle))
	}
	return len(idle)
}

// releaseLocked drops the shared settings of device id once no user state
// refers to them.
func (r *Registry) releaseLocked(id string) {
	if shared, ok := r.shared[id]; ok {
		shared.refs--
		if shared.refs <= 0 {
			delete(r.shared, id)
		}
	}
}

// Close closes every device and rejects new ones.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	devices := r.devices
	r.devices = make(map[string]*Device)
	r.shared = make(map[string]*deviceSettings)
	r.mu.Unlock()

	for _, device := range devices {
		device.close()
	}
}
