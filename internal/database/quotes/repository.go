// Package quotes provides database operations for quotes and their
// favourite membership lists.
//
// The repository is the production remote store of the content core: it
// answers filtered queries, toggles favourite membership atomically and
// publishes a realtime event after every committed write.
//
// # Interface Implementation
//
//	var _ remote.Store = (*Repository)(nil)
//	var _ http.QuoteStore = (*Repository)(nil)
//
// # Usage
//
//	repo := quotes.NewRepository(db, broker)
//	rows, err := repo.Query(ctx, remote.Query{
//		Table:   remote.TableQuotes,
//		Filters: []remote.Filter{remote.Contains(remote.ColumnFavoritedBy, userID)},
//	})
package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/quna/internal/entities"
	"github.com/mrlokans/quna/internal/realtime"
	"github.com/mrlokans/quna/internal/remote"
)

var (
	ErrNotFound          = errors.New("quote not found")
	ErrForbidden         = errors.New("quote is not owned by the user")
	ErrUnsupportedTable  = errors.New("unsupported table")
	ErrUnsupportedFilter = errors.New("unsupported filter")
)

// Publisher receives change events after a write commits.
type Publisher interface {
	Publish(ev realtime.Event)
}

// eqColumns are the quote columns that accept equality filters.
var eqColumns = map[string]bool{
	remote.ColumnID:       true,
	remote.ColumnCategory: true,
	remote.ColumnOrigin:   true,
	remote.ColumnUserID:   true,
}

// Repository handles all quote database operations.
type Repository struct {
	db        *gorm.DB
	publisher Publisher
}

// NewRepository creates a new quotes repository. publisher may be nil, in
// which case no change events are emitted.
func NewRepository(db *gorm.DB, publisher Publisher) *Repository {
	return &Repository{db: db, publisher: publisher}
}

// Query returns quotes matching every filter, with their favourite
// membership lists loaded.
func (r *Repository) Query(ctx context.Context, q remote.Query) ([]entities.Quote, error) {
	if q.Table != remote.TableQuotes {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTable, q.Table)
	}

	db := r.db.WithContext(ctx)
	tx := db.Model(&entities.Quote{}).Preload("Favourites")
	for _, f := range q.Filters {
		switch {
		case f.Op == remote.OpEq && eqColumns[f.Column]:
			tx = tx.Where(f.Column+" = ?", f.Value)
		case f.Op == remote.OpContains && f.Column == remote.ColumnFavoritedBy:
			members := db.Model(&entities.Favourite{}).Select("quote_id").Where("user_id = ?", f.Value)
			tx = tx.Where("id IN (?)", members)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, f)
		}
	}

	var rows []entities.Quote
	if err := tx.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ToggleMembership adds memberID to the favourite list of the quote
// identified by key, or removes it when already present. The check and the
// write run in one transaction.
func (r *Repository) ToggleMembership(ctx context.Context, table, key, memberID string) error {
	if table != remote.TableQuotes {
		return fmt.Errorf("%w: %s", ErrUnsupportedTable, table)
	}
	_, err := r.Toggle(ctx, key, memberID)
	return err
}

// Toggle flips the favourite membership of userID on quoteID and reports
// whether the user is a member afterwards.
func (r *Repository) Toggle(ctx context.Context, quoteID, userID string) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Quote{}).Where("id = ?", quoteID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		res := tx.Where("quote_id = ? AND user_id = ?", quoteID, userID).Delete(&entities.Favourite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			added = false
			return nil
		}

		added = true
		return tx.Create(&entities.Favourite{QuoteID: quoteID, UserID: userID}).Error
	})
	if err != nil {
		return false, err
	}

	typ := realtime.EventDelete
	if added {
		typ = realtime.EventInsert
	}
	r.publish(favouriteEvent(typ, quoteID, userID))
	return added, nil
}

// GetByID retrieves a quote with its favourite list.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Quote, error) {
	var quote entities.Quote
	err := r.db.WithContext(ctx).Preload("Favourites").Where("id = ?", id).First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Create stores a user-submitted quote. The id is generated when empty.
func (r *Repository) Create(ctx context.Context, quote *entities.Quote) error {
	if quote.ID == "" {
		quote.ID = uuid.NewString()
	}
	quote.Origin = entities.OriginUser
	if quote.Language == "" {
		quote.Language = LanguageOf(quote.ContentEN, quote.ContentPL)
	}

	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return err
	}
	r.publish(quoteEvent(realtime.EventInsert, quote))
	return nil
}

// DeleteOwned removes a user-submitted quote owned by userID together with
// its favourite list. Every user who had favourited it gets a delete event.
func (r *Repository) DeleteOwned(ctx context.Context, id, userID string) error {
	var quote entities.Quote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Favourites").Where("id = ?", id).First(&quote).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if quote.Origin != entities.OriginUser || quote.UserID != userID {
			return ErrForbidden
		}

		if err := tx.Where("quote_id = ?", id).Delete(&entities.Favourite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Quote{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	r.publish(quoteEvent(realtime.EventDelete, &quote))
	for _, member := range quote.FavoritedBy() {
		r.publish(favouriteEvent(realtime.EventDelete, id, member))
	}
	return nil
}

// ListByUser returns every quote submitted by the user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]entities.Quote, error) {
	var rows []entities.Quote
	err := r.db.WithContext(ctx).Preload("Favourites").
		Where("origin = ? AND user_id = ?", entities.OriginUser, userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListOwnNotFavourited returns the user's own quotes that the user has not
// favourited, newest first. Favourited quotes are listed separately.
func (r *Repository) ListOwnNotFavourited(ctx context.Context, userID string) ([]entities.Quote, error) {
	db := r.db.WithContext(ctx)
	members := db.Model(&entities.Favourite{}).Select("quote_id").Where("user_id = ?", userID)

	var rows []entities.Quote
	err := db.Preload("Favourites").
		Where("origin = ? AND user_id = ?", entities.OriginUser, userID).
		Where("id NOT IN (?)", members).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListFavourites returns every quote the user has favourited, most recently
// favourited first.
func (r *Repository) ListFavourites(ctx context.Context, userID string) ([]entities.Quote, error) {
	var rows []entities.Quote
	err := r.db.WithContext(ctx).Preload("Favourites").
		Joins("JOIN quote_favourites ON quote_favourites.quote_id = quotes.id").
		Where("quote_favourites.user_id = ?", userID).
		Order("quote_favourites.created_at DESC").
		Find(&rows).Error
	return rows, err
}

// CountByOrigin returns the number of quotes of the given origin.
func (r *Repository) CountByOrigin(ctx context.Context, origin entities.Origin) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Quote{}).Where("origin = ?", origin).Count(&count).Error
	return count, err
}

// UpsertCurated inserts or updates curated quotes by id in one transaction.
// Quotes without an id get a stable id derived from their content, so
// re-importing the same file does not duplicate rows.
func (r *Repository) UpsertCurated(ctx context.Context, items []entities.Quote) (created, updated int, err error) {
	var changed []*entities.Quote
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			item := &items[i]
			item.Origin = entities.OriginCurated
			item.UserID = ""
			if item.ID == "" {
				item.ID = CuratedID(item.Category, item.ContentEN, item.ContentPL)
			}
			item.Language = LanguageOf(item.ContentEN, item.ContentPL)

			var existing entities.Quote
			res := tx.Where("id = ?", item.ID).Limit(1).Find(&existing)
			if res.Error != nil {
				return res.Error
			}

			if res.RowsAffected == 0 {
				if err := tx.Create(item).Error; err != nil {
					return fmt.Errorf("failed to create curated quote %s: %w", item.ID, err)
				}
				created++
				changed = append(changed, item)
				continue
			}

			if existing.Origin != entities.OriginCurated {
				return fmt.Errorf("quote %s exists and is not curated: %w", item.ID, ErrForbidden)
			}
			err := tx.Model(&existing).Updates(map[string]interface{}{
				"author":     item.Author,
				"content_en": item.ContentEN,
				"content_pl": item.ContentPL,
				"language":   item.Language,
				"category":   item.Category,
			}).Error
			if err != nil {
				return fmt.Errorf("failed to update curated quote %s: %w", item.ID, err)
			}
			updated++
			changed = append(changed, item)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	for _, item := range changed {
		r.publish(quoteEvent(realtime.EventUpdate, item))
	}
	return created, updated, nil
}

func (r *Repository) publish(ev realtime.Event) {
	if r.publisher != nil {
		r.publisher.Publish(ev)
	}
}

func favouriteEvent(typ realtime.EventType, quoteID, userID string) realtime.Event {
	return realtime.Event{
		Table: remote.TableFavourites,
		Type:  typ,
		Record: map[string]string{
			"quote_id": quoteID,
			"user_id":  userID,
		},
	}
}

func quoteEvent(typ realtime.EventType, q *entities.Quote) realtime.Event {
	return realtime.Event{
		Table: remote.TableQuotes,
		Type:  typ,
		Record: map[string]string{
			"id":       q.ID,
			"category": string(q.Category),
			"origin":   string(q.Origin),
			"user_id":  q.UserID,
		},
	}
}

// curatedNamespace seeds content-derived ids of curated quotes.
var curatedNamespace = uuid.MustParse("5b0f3c1e-8f3a-4a61-9a0e-2f7b6d9c4e10")

// CuratedID derives a stable id for a curated quote without one.
func CuratedID(category entities.Category, contentEN, contentPL string) string {
	return uuid.NewSHA1(curatedNamespace, []byte(string(category)+"\x00"+contentEN+"\x00"+contentPL)).String()
}

// LanguageOf reports which localisations are present.
func LanguageOf(contentEN, contentPL string) entities.QuoteLanguage {
	switch {
	case contentEN != "" && contentPL != "":
		return entities.QuoteLanguageBoth
	case contentPL != "":
		return entities.QuoteLanguagePL
	default:
		return entities.QuoteLanguageEN
	}
}
