package quotes

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/quna/internal/entities"
)

// curatedRecord is one entry of a curated import file.
type curatedRecord struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Author    string `json:"author"`
	ContentEN string `json:"content_en"`
	ContentPL string `json:"content_pl"`
}

// LoadCurated parses a curated import file: a JSON array of records with
// category (display name or slug), optional id and author, and at least one
// of content_en / content_pl.
func LoadCurated(r io.Reader) ([]entities.Quote, error) {
	var records []curatedRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode curated quotes: %w", err)
	}

	items := make([]entities.Quote, 0, len(records))
	for i, rec := range records {
		category, err := entities.ParseCategory(strings.TrimSpace(rec.Category))
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		en := strings.TrimSpace(rec.ContentEN)
		pl := strings.TrimSpace(rec.ContentPL)
		if en == "" && pl == "" {
			return nil, fmt.Errorf("record %d: no content", i)
		}

		items = append(items, entities.Quote{
			ID:        strings.TrimSpace(rec.ID),
			Author:    strings.TrimSpace(rec.Author),
			ContentEN: en,
			ContentPL: pl,
			Language:  LanguageOf(en, pl),
			Category:  category,
			Origin:    entities.OriginCurated,
		})
	}
	return items, nil
}
