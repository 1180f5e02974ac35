package http

import (
	"context"

	"github.com/mrlokans/quna/internal/entities"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each controller depends only on the methods it calls.

// QuoteStore provides the user-facing quote operations.
// Implemented by quotes.Repository.
type QuoteStore interface {
	Create(ctx context.Context, quote *entities.Quote) error
	DeleteOwned(ctx context.Context, id, userID string) error
	ListOwnNotFavourited(ctx context.Context, userID string) ([]entities.Quote, error)
	ListFavourites(ctx context.Context, userID string) ([]entities.Quote, error)
}

// CuratedImportQueue enqueues curated content imports.
// Implemented by tasks.Client.
type CuratedImportQueue interface {
	EnqueueCuratedImport(path string) (string, error)
}
