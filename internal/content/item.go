package content

import (
	"github.com/mrlokans/quna/internal/entities"
)

// Item is one normalised quote.
type Item struct {
	ID          string
	Author      string
	Content     map[entities.Locale]string
	Category    entities.Category
	Origin      entities.Origin
	FavoritedBy map[string]struct{}
}

// ItemFromQuote normalises a stored quote. Origin is taken from the row, never
// inferred from the id.
func ItemFromQuote(q entities.Quote) Item {
	content := make(map[entities.Locale]string, 2)
	if q.ContentEN != "" {
		content[entities.LocaleEN] = q.ContentEN
	}
	if q.ContentPL != "" {
		content[entities.LocalePL] = q.ContentPL
	}

	favouritedBy := make(map[string]struct{}, len(q.Favourites))
	for _, f := range q.Favourites {
		favouritedBy[f.UserID] = struct{}{}
	}

	return Item{
		ID:          q.ID,
		Author:      q.Author,
		Content:     content,
		Category:    q.Category,
		Origin:      q.Origin,
		FavoritedBy: favouritedBy,
	}
}

// Text returns the item's text in locale, falling back to the default locale
// and then to any localisation present.
func (i Item) Text(locale entities.Locale) string {
	if s := i.Content[locale]; s != "" {
		return s
	}
	if s := i.Content[entities.DefaultLocale]; s != "" {
		return s
	}
	for _, l := range entities.Locales {
		if s := i.Content[l]; s != "" {
			return s
		}
	}
	return ""
}

// IsFavoritedBy reports whether userID is in the item's membership list.
func (i Item) IsFavoritedBy(userID string) bool {
	if userID == "" {
		return false
	}
	_, ok := i.FavoritedBy[userID]
	return ok
}

// Entry is what a feed displays: an item, or the category intro when the
// list is empty.
type Entry struct {
	Item  *Item
	Intro string
}

// Empty reports whether the entry is the intro placeholder.
func (e Entry) Empty() bool {
	return e.Item == nil
}

// Text returns the display text of the entry.
func (e Entry) Text(locale entities.Locale) string {
	if e.Item == nil {
		return e.Intro
	}
	return e.Item.Text(locale)
}
