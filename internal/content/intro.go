package content

import (
	"github.com/mrlokans/quna/internal/entities"
)

var introMessages = map[entities.Category]map[entities.Locale]string{
	entities.CategoryWisdom: {
		entities.LocaleEN: "Tap into the well of timeless wisdom.\nLet these words guide your path.",
		entities.LocalePL: "Zaczerpnij z krynicy ponadczasowej mądrości.\nNiech te słowa prowadzą Cię przez życie.",
	},
	entities.CategoryMantras: {
		entities.LocaleEN: "Harness the power of your own voice. Repeat these words to center your mind and spirit.",
		entities.LocalePL: "Wykorzystaj moc własnego głosu. Powtarzaj te słowa, aby wyciszyć umysł i ducha.",
	},
	entities.CategoryConversationStarters: {
		entities.LocaleEN: "Break the ice and spark meaningful connections. Let these questions guide your next conversation.",
		entities.LocalePL: "Przełam lody i nawiąż prawdziwy kontakt. Niech te pytania poprowadzą Twoją następną rozmowę.",
	},
	entities.CategoryMindfulnessPrompts: {
		entities.LocaleEN: "Find calm in the present moment. Use these prompts to anchor your awareness.",
		entities.LocalePL: "Odnajdź spokój w chwili obecnej. Te podpowiedzi pomogą Ci zakotwiczyć uwagę.",
	},
	entities.CategoryDailyMotivation: {
		entities.LocaleEN: "Start your day with intention. Let these words give you the push you need.",
		entities.LocalePL: "Zacznij dzień z intencją. Niech te słowa dodadzą Ci energii.",
	},
}

// Intro returns the placeholder shown before the first item of a category.
func Intro(category entities.Category, locale entities.Locale) string {
	messages := introMessages[category]
	if s := messages[locale]; s != "" {
		return s
	}
	return messages[entities.DefaultLocale]
}
