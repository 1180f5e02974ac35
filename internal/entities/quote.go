package entities

import (
	"time"
)

type Origin string

const (
	OriginCurated Origin = "curated" // Editorial "master" content, not owned by any user
	OriginUser    Origin = "user"    // Submitted by an authenticated user
)

// QuoteLanguage records which localisations a contributor supplied.
type QuoteLanguage string

const (
	QuoteLanguageEN   QuoteLanguage = "en"
	QuoteLanguagePL   QuoteLanguage = "pl"
	QuoteLanguageBoth QuoteLanguage = "both"
)

type Quote struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	UserID    string        `gorm:"index;size:36" json:"user_id,omitempty"` // Empty for curated quotes
	Author    string        `gorm:"size:256" json:"author,omitempty"`
	ContentEN string        `gorm:"type:text" json:"content_en,omitempty"`
	ContentPL string        `gorm:"type:text" json:"content_pl,omitempty"`
	Language  QuoteLanguage `gorm:"size:10;default:'en'" json:"language"`
	Category  Category      `gorm:"index;size:50" json:"category"`
	Origin    Origin        `gorm:"index;size:20" json:"origin"`

	// Favourites is the favorited_by membership list.
	Favourites []Favourite `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quote) TableName() string {
	return "quotes"
}

// FavoritedBy returns the ids of the users who favourited the quote.
func (q Quote) FavoritedBy() []string {
	ids := make([]string, 0, len(q.Favourites))
	for _, f := range q.Favourites {
		ids = append(ids, f.UserID)
	}
	return ids
}

// Favourite is one membership row of a quote's favorited_by list.
type Favourite struct {
	QuoteID   string    `gorm:"primaryKey;size:36" json:"quote_id"`
	UserID    string    `gorm:"primaryKey;size:36;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favourite) TableName() string {
	return "quote_favourites"
}
