package entities

import "fmt"

// Category values are stored by display name, matching the contribution form.
type Category string

const (
	CategoryWisdom               Category = "Wisdom"
	CategoryConversationStarters Category = "Conversation Starters"
	CategoryMantras              Category = "Mantras"
	CategoryDailyMotivation      Category = "Daily Motivation"
	CategoryMindfulnessPrompts   Category = "Mindfulness Prompts"
)

// Categories lists every category in home screen order.
var Categories = []Category{
	CategoryWisdom,
	CategoryConversationStarters,
	CategoryMantras,
	CategoryDailyMotivation,
	CategoryMindfulnessPrompts,
}

var categorySlugs = map[Category]string{
	CategoryWisdom:               "wisdom",
	CategoryConversationStarters: "conversation-starters",
	CategoryMantras:              "mantras",
	CategoryDailyMotivation:      "daily-motivation",
	CategoryMindfulnessPrompts:   "mindfulness-prompts",
}

// Slug returns the URL form of the category.
func (c Category) Slug() string {
	return categorySlugs[c]
}

func (c Category) Valid() bool {
	_, ok := categorySlugs[c]
	return ok
}

// CategoryFromSlug resolves a URL slug to a category.
func CategoryFromSlug(slug string) (Category, error) {
	for c, s := range categorySlugs {
		if s == slug {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", slug)
}

// ParseCategory accepts either the display name or the slug.
func ParseCategory(s string) (Category, error) {
	if c := Category(s); c.Valid() {
		return c, nil
	}
	return CategoryFromSlug(s)
}
