package content

import (
	"context"
	"log"

	"github.com/mrlokans/quna/internal/entities"
	"github.com/mrlokans/quna/internal/remote"
)

// Request selects the items of one category feed.
type Request struct {
	Category   entities.Category
	Preference entities.SourcePreference
	UserID     string // empty when anonymous
	Locale     entities.Locale
}

// Adapter translates feed requests into remote queries.
type Adapter struct {
	store remote.Store
}

func NewAdapter(store remote.Store) *Adapter {
	return &Adapter{store: store}
}

// FetchCategory runs the curated query when the preference includes curated
// content and the own query when it includes own content and a user is
// signed in. Results are concatenated curated first. Any query failure fails
// the whole call; partial results are never returned.
func (a *Adapter) FetchCategory(ctx context.Context, req Request) ([]Item, error) {
	var rows []entities.Quote

	if req.Preference.Includes(entities.ContentSourceCurated) {
		curated, err := a.store.Query(ctx, remote.Query{
			Table: remote.TableQuotes,
			Filters: []remote.Filter{
				remote.Eq(remote.ColumnCategory, string(req.Category)),
				remote.Eq(remote.ColumnOrigin, string(entities.OriginCurated)),
			},
		})
		if err != nil {
			return nil, &FetchError{Op: "fetch curated " + req.Category.Slug(), Err: err}
		}
		rows = append(rows, curated...)
	}

	if req.Preference.Includes(entities.ContentSourceOwn) && req.UserID != "" {
		own, err := a.store.Query(ctx, remote.Query{
			Table: remote.TableQuotes,
			Filters: []remote.Filter{
				remote.Eq(remote.ColumnCategory, string(req.Category)),
				remote.Eq(remote.ColumnOrigin, string(entities.OriginUser)),
				remote.Eq(remote.ColumnUserID, req.UserID),
			},
		})
		if err != nil {
			return nil, &FetchError{Op: "fetch own " + req.Category.Slug(), Err: err}
		}
		rows = append(rows, own...)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item := ItemFromQuote(row)
		if item.Text(req.Locale) == "" {
			log.Printf("Content: skipping quote %s without text", item.ID)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// FetchFavourites returns the ids of every quote userID has favourited.
func (a *Adapter) FetchFavourites(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := a.store.Query(ctx, remote.Query{
		Table:   remote.TableQuotes,
		Filters: []remote.Filter{remote.Contains(remote.ColumnFavoritedBy, userID)},
	})
	if err != nil {
		return nil, &FetchError{Op: "fetch favourites", Err: err}
	}

	ids := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		ids[row.ID] = struct{}{}
	}
	return ids, nil
}
