package entities

// SourcePreference selects which content sources populate category feeds.
// Values match what the mobile client historically stored on the device.
type SourcePreference string

const (
	SourceCuratedOnly SourcePreference = "master"
	SourceOwnOnly     SourcePreference = "user"
	SourceBoth        SourcePreference = "both"
)

// DefaultSourcePreference is used when nothing (valid) is persisted.
const DefaultSourcePreference = SourceBoth

// ContentSource is one of the two sources a preference can include.
type ContentSource string

const (
	ContentSourceCurated ContentSource = "curated"
	ContentSourceOwn     ContentSource = "own"
)

func (p SourcePreference) Valid() bool {
	switch p {
	case SourceCuratedOnly, SourceOwnOnly, SourceBoth:
		return true
	}
	return false
}

// Includes reports whether the preference includes the given source.
func (p SourcePreference) Includes(s ContentSource) bool {
	switch s {
	case ContentSourceCurated:
		return p == SourceCuratedOnly || p == SourceBoth
	case ContentSourceOwn:
		return p == SourceOwnOnly || p == SourceBoth
	}
	return false
}

// PreferenceFor builds a preference from per-source flags. It returns false
// for the "neither" combination, which is never a valid preference.
func PreferenceFor(curated, own bool) (SourcePreference, bool) {
	switch {
	case curated && own:
		return SourceBoth, true
	case curated:
		return SourceCuratedOnly, true
	case own:
		return SourceOwnOnly, true
	}
	return "", false
}

// Other returns the opposite source.
func (s ContentSource) Other() ContentSource {
	if s == ContentSourceCurated {
		return ContentSourceOwn
	}
	return ContentSourceCurated
}

func (s ContentSource) Valid() bool {
	return s == ContentSourceCurated || s == ContentSourceOwn
}
