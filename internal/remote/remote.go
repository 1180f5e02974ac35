// Package remote describes the hosted-store capability the content core
// depends on: filtered queries, an atomic membership toggle and change
// notifications.
//
// The core only ever talks to the Client interface. The production client is
// composed from the gorm quotes repository and the realtime broker:
//
//	client := remote.New(quotes.NewRepository(db.DB, broker), broker)
package remote

import (
	"context"
	"fmt"

	"github.com/mrlokans/quna/internal/entities"
	"github.com/mrlokans/quna/internal/realtime"
)

// Table names understood by the store.
const (
	TableQuotes     = "quotes"
	TableFavourites = "quote_favourites"
)

// Column names usable in filters on TableQuotes.
const (
	ColumnID          = "id"
	ColumnCategory    = "category"
	ColumnOrigin      = "origin"
	ColumnUserID      = "user_id"
	ColumnFavoritedBy = "favorited_by"
)

// Op is a filter predicate.
type Op string

const (
	OpEq       Op = "eq"
	OpContains Op = "contains" // set membership on a list column
)

// Filter is one predicate of a query.
type Filter struct {
	Column string
	Op     Op
	Value  string
}

func (f Filter) String() string {
	return fmt.Sprintf("%s.%s.%s", f.Column, f.Op, f.Value)
}

// Eq builds an equality predicate.
func Eq(column, value string) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// Contains builds a set-membership predicate.
func Contains(column, value string) Filter {
	return Filter{Column: column, Op: OpContains, Value: value}
}

// Query selects rows of a table matching all filters.
type Query struct {
	Table   string
	Filters []Filter
}

// Store is the query/toggle half of the client.
type Store interface {
	Query(ctx context.Context, q Query) ([]entities.Quote, error)
	ToggleMembership(ctx context.Context, table, key, memberID string) error
}

// Subscriber is the change-notification half of the client.
type Subscriber interface {
	Subscribe(filter realtime.Filter, handler realtime.Handler) *realtime.Subscription
}

// Client is everything the content core needs from the hosted store.
type Client interface {
	Store
	Subscriber
}

type client struct {
	Store
	Subscriber
}

// New composes a store and a subscriber into a Client.
func New(store Store, subscriber Subscriber) Client {
	return &client{Store: store, Subscriber: subscriber}
}
