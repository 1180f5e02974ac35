package content

import (
	"context"
	"errors"
	"sync"

	"github.com/mrlokans/quna/internal/entities"
	"github.com/mrlokans/quna/internal/realtime"
	"github.com/mrlokans/quna/internal/remote"
)

// fakeStore is an in-memory remote.Client backed by a real broker.
type fakeStore struct {
	broker *realtime.Broker

	mu        sync.Mutex
	quotes    []*entities.Quote
	queries   []remote.Query
	failWhen  func(q remote.Query) error
	gate      chan struct{} // when set, the next query blocks on it after computing its result
	gateReady chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{broker: realtime.NewBroker()}
}

func (s *fakeStore) add(q entities.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := q
	s.quotes = append(s.quotes, &c)
}

// setFavourite changes membership without publishing an event.
func (s *fakeStore) setFavourite(quoteID, userID string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.quotes {
		if q.ID != quoteID {
			continue
		}
		var kept []entities.Favourite
		for _, f := range q.Favourites {
			if f.UserID != userID {
				kept = append(kept, f)
			}
		}
		if on {
			kept = append(kept, entities.Favourite{QuoteID: quoteID, UserID: userID})
		}
		q.Favourites = kept
	}
}

// blockNextQuery makes the next query wait for release. ready is closed once
// that query has computed its result.
func (s *fakeStore) blockNextQuery() (ready <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
	s.gateReady = make(chan struct{})
	gate := s.gate
	return s.gateReady, func() { close(gate) }
}

func (s *fakeStore) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *fakeStore) Query(ctx context.Context, q remote.Query) ([]entities.Quote, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	if s.failWhen != nil {
		if err := s.failWhen(q); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}

	var out []entities.Quote
	for _, row := range s.quotes {
		if matchesAll(*row, q.Filters) {
			c := *row
			c.Favourites = append([]entities.Favourite(nil), row.Favourites...)
			out = append(out, c)
		}
	}

	gate, ready := s.gate, s.gateReady
	s.gate, s.gateReady = nil, nil
	s.mu.Unlock()

	if gate != nil {
		close(ready)
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}

func matchesAll(q entities.Quote, filters []remote.Filter) bool {
	for _, f := range filters {
		var ok bool
		switch f.Column {
		case remote.ColumnID:
			ok = q.ID == f.Value
		case remote.ColumnCategory:
			ok = string(q.Category) == f.Value
		case remote.ColumnOrigin:
			ok = string(q.Origin) == f.Value
		case remote.ColumnUserID:
			ok = q.UserID == f.Value
		case remote.ColumnFavoritedBy:
			for _, id := range q.FavoritedBy() {
				if id == f.Value {
					ok = true
				}
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

var errQuoteGone = errors.New("quote gone")

func (s *fakeStore) ToggleMembership(_ context.Context, _ string, key, memberID string) error {
	s.mu.Lock()
	var target *entities.Quote
	for _, q := range s.quotes {
		if q.ID == key {
			target = q
		}
	}
	if target == nil {
		s.mu.Unlock()
		return errQuoteGone
	}
	member := false
	for _, id := range target.FavoritedBy() {
		if id == memberID {
			member = true
		}
	}
	s.mu.Unlock()

	s.setFavourite(key, memberID, !member)
	typ := realtime.EventInsert
	if member {
		typ = realtime.EventDelete
	}
	s.broker.Publish(realtime.Event{
		Table:  remote.TableFavourites,
		Type:   typ,
		Record: map[string]string{"quote_id": key, "user_id": memberID},
	})
	return nil
}

func (s *fakeStore) Subscribe(filter realtime.Filter, handler realtime.Handler) *realtime.Subscription {
	return s.broker.Subscribe(filter, handler)
}

// fakePrefs is an in-memory PreferenceSource.
type fakePrefs struct {
	mu   sync.Mutex
	pref entities.SourcePreference
	subs map[int]func(entities.SourcePreference)
	next int
}

func newFakePrefs(p entities.SourcePreference) *fakePrefs {
	return &fakePrefs{pref: p, subs: make(map[int]func(entities.SourcePreference))}
}

func (p *fakePrefs) Get(context.Context) entities.SourcePreference {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pref
}

func (p *fakePrefs) set(pref entities.SourcePreference) {
	p.mu.Lock()
	p.pref = pref
	var fns []func(entities.SourcePreference)
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(pref)
	}
}

func (p *fakePrefs) Subscribe(fn func(entities.SourcePreference)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	id := p.next
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *fakePrefs) subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// fakeLocale is an in-memory LocaleProvider.
type fakeLocale struct {
	mu     sync.Mutex
	locale entities.Locale
	subs   map[int]func(entities.Locale)
	next   int
}

func newFakeLocale(l entities.Locale) *fakeLocale {
	return &fakeLocale{locale: l, subs: make(map[int]func(entities.Locale))}
}

func (l *fakeLocale) Locale(context.Context) entities.Locale {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locale
}

func (l *fakeLocale) set(locale entities.Locale) {
	l.mu.Lock()
	l.locale = locale
	var fns []func(entities.Locale)
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(locale)
	}
}

func (l *fakeLocale) Subscribe(fn func(entities.Locale)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	id := l.next
	l.subs[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

func curated(id string, category entities.Category, en string) entities.Quote {
	return entities.Quote{
		ID:        id,
		ContentEN: en,
		Category:  category,
		Origin:    entities.OriginCurated,
	}
}

func own(id, userID string, category entities.Category, en string) entities.Quote {
	return entities.Quote{
		ID:        id,
		UserID:    userID,
		ContentEN: en,
		Category:  category,
		Origin:    entities.OriginUser,
	}
}
