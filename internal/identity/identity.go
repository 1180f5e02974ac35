// Package identity tracks who is signed in on a device.
//
// Anonymous browsing is a valid state: CurrentUser returns nil and consumers
// fall back to curated content only.
package identity

import (
	"sync"
)

// User is the signed-in principal as the content core sees it.
type User struct {
	ID       string
	Username string
}

// Provider exposes the current user and session changes.
type Provider interface {
	CurrentUser() *User
	Subscribe(fn func(*User)) (unsubscribe func())
}

// UserID returns the id of the provider's current user, or "" when anonymous.
func UserID(p Provider) string {
	if u := p.CurrentUser(); u != nil {
		return u.ID
	}
	return ""
}

// Session is a mutable Provider. Subscribers are notified only when the
// signed-in user id actually changes.
type Session struct {
	mu   sync.RWMutex
	user *User

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(*User)
}

func NewSession() *Session {
	return &Session{subs: make(map[int]func(*User))}
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Session) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SignIn switches the session to user. A nil user signs out.
func (s *Session) SignIn(user *User) {
	var next *User
	if user != nil && user.ID != "" {
		u := *user
		next = &u
	}

	s.mu.Lock()
	changed := sameID(s.user) != sameID(next)
	s.user = next
	s.mu.Unlock()

	if changed {
		s.notify(next)
	}
}

// SignOut returns the session to anonymous.
func (s *Session) SignOut() {
	s.SignIn(nil)
}

func (s *Session) Subscribe(fn func(*User)) func() {
	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) notify(user *User) {
	s.subMu.Lock()
	fns := make([]func(*User), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		var u *User
		if user != nil {
			c := *user
			u = &c
		}
		fn(u)
	}
}

func sameID(u *User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
