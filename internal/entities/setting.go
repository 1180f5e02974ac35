package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:200" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys. Device settings are stored under a per-device prefix,
// see settingsstore.Scope.
const (
	SettingKeyQuoteSource = "quoteSourcePreference"
	SettingKeyLanguage    = "appLanguage"

	// Curated import bookkeeping
	SettingKeyCuratedImportLastAt    = "curated_import_last_at"
	SettingKeyCuratedImportLastCount = "curated_import_last_count"
)
