package entities

import (
	"fmt"
	"strings"
)

// Locale is a UI language code.
type Locale string

const (
	LocaleEN Locale = "en"
	LocalePL Locale = "pl"
)

// DefaultLocale is used when no language was chosen and as the content
// fallback when an item lacks the requested localisation.
const DefaultLocale = LocaleEN

// Locales lists every supported locale.
var Locales = []Locale{LocaleEN, LocalePL}

func (l Locale) Valid() bool {
	return l == LocaleEN || l == LocalePL
}

// ParseLocale normalises a language code such as "PL" or "pl-PL".
func ParseLocale(s string) (Locale, error) {
	code := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if l := Locale(code); l.Valid() {
		return l, nil
	}
	return "", fmt.Errorf("unsupported locale %q", s)
}
