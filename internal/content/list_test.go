package content

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quna/internal/entities"
)

func items(ids ...string) []Item {
	out := make([]Item, len(ids))
	for i, id := range ids {
		out[i] = Item{ID: id, Content: map[entities.Locale]string{entities.LocaleEN: "text " + id}}
	}
	return out
}

func ids(list []Item) []string {
	out := make([]string, len(list))
	for i, it := range list {
		out[i] = it.ID
	}
	return out
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// moveTo advances until the displayed item is id.
func moveTo(t *testing.T, l *List, id string) {
	t.Helper()
	for i := 0; i < l.Len(); i++ {
		if e := l.Current(); e.Item != nil && e.Item.ID == id {
			return
		}
		l.Advance()
	}
	t.Fatalf("item %s not in list", id)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := items("a", "b", "c", "d", "e")
	l := Build(in, "intro", seeded(1))

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(in))
	assert.ElementsMatch(t, ids(in), ids(l.Items()))
	assert.Equal(t, 0, l.Position())
}

func TestBuild_ShuffleFairness(t *testing.T) {
	const trials = 6000
	rng := seeded(42)
	in := items("a", "b", "c")

	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		l := Build(in, "", rng)
		counts[strings.Join(ids(l.Items()), "")]++
	}

	// 3! permutations, each expected trials/6 times.
	require.Len(t, counts, 6)
	expected := trials / 6
	for perm, n := range counts {
		assert.InDelta(t, expected, n, float64(expected)*0.15, "permutation %s", perm)
	}
}

func TestBuild_ShuffleFairnessPositions(t *testing.T) {
	const trials = 5000
	rng := seeded(7)
	in := items("a", "b", "c", "d", "e")

	// Every item should land in every position about equally often.
	var firsts = make(map[string]int)
	for i := 0; i < trials; i++ {
		firsts[Build(in, "", rng).Current().Item.ID]++
	}
	for _, id := range ids(in) {
		assert.InDelta(t, trials/5, firsts[id], float64(trials/5)*0.15, "item %s", id)
	}
}

func TestList_RingNavigation(t *testing.T) {
	for n := 1; n <= 6; n++ {
		in := make([]string, n)
		for i := range in {
			in[i] = string(rune('a' + i))
		}
		l := Build(items(in...), "", seeded(uint64(n)))
		start := l.Current().Item.ID

		for i := 0; i < n; i++ {
			l.Advance()
		}
		assert.Equal(t, start, l.Current().Item.ID, "n=%d: advancing n times returns to start", n)

		before := l.Current().Item.ID
		l.Advance()
		assert.Equal(t, before, l.Retreat().Item.ID, "n=%d: retreat undoes advance", n)

		l.Retreat()
		assert.Equal(t, before, l.Advance().Item.ID, "n=%d: advance undoes retreat", n)
	}
}

func TestList_RetreatWrapsFromFirst(t *testing.T) {
	l := Build(items("a", "b", "c"), "", seeded(3))
	last := l.Items()[2].ID

	assert.Equal(t, last, l.Retreat().Item.ID)
	assert.Equal(t, 2, l.Position())
}

func TestList_Empty(t *testing.T) {
	l := Build(nil, "Find calm.", seeded(1))

	for _, e := range []Entry{l.Current(), l.Advance(), l.Retreat()} {
		assert.True(t, e.Empty())
		assert.Equal(t, "Find calm.", e.Text(entities.LocaleEN))
	}
	assert.Equal(t, 0, l.Position())
	assert.Equal(t, 0, l.Len())
}

func TestList_RefreshKeepsDisplayedItem(t *testing.T) {
	l := Build(items("A", "B", "C"), "", seeded(5))
	moveTo(t, l, "B")
	order := ids(l.Items())

	l.Refresh(items("A", "B", "C", "D"))

	assert.Equal(t, "B", l.Current().Item.ID)
	assert.Equal(t, append(order, "D"), ids(l.Items()))
}

func TestList_RefreshUpdatesContent(t *testing.T) {
	l := Build(items("A", "B"), "", seeded(5))
	moveTo(t, l, "A")

	updated := items("A", "B")
	updated[0].FavoritedBy = map[string]struct{}{"u1": {}}
	l.Refresh(updated)

	assert.True(t, l.Current().Item.IsFavoritedBy("u1"))
}

func TestList_RefreshDropsMissingItems(t *testing.T) {
	l := Build(items("A", "B", "C"), "", seeded(9))
	order := ids(l.Items())
	moveTo(t, l, order[2])

	// Displayed item disappears: cursor is clamped.
	l.Refresh(items(order[0], order[1]))
	assert.Equal(t, 1, l.Position())
	assert.Equal(t, order[1], l.Current().Item.ID)

	// Everything disappears: intro is shown.
	l.Refresh(nil)
	assert.True(t, l.Current().Empty())
	assert.Equal(t, 0, l.Position())
}

func TestList_RefreshKeepsPositionWhenEarlierItemRemoved(t *testing.T) {
	l := Build(items("A", "B", "C"), "", seeded(11))
	order := ids(l.Items())
	moveTo(t, l, order[2])

	l.Refresh(items(order[1], order[2]))

	assert.Equal(t, order[2], l.Current().Item.ID)
	assert.Equal(t, 1, l.Position())
}

func TestList_RefreshFromEmpty(t *testing.T) {
	l := Build(nil, "intro", seeded(1))
	l.Refresh(items("A"))

	require.False(t, l.Current().Empty())
	assert.Equal(t, "A", l.Current().Item.ID)
}

func TestItem_TextFallback(t *testing.T) {
	both := Item{Content: map[entities.Locale]string{entities.LocaleEN: "hello", entities.LocalePL: "cześć"}}
	enOnly := Item{Content: map[entities.Locale]string{entities.LocaleEN: "hello"}}
	plOnly := Item{Content: map[entities.Locale]string{entities.LocalePL: "cześć"}}

	assert.Equal(t, "cześć", both.Text(entities.LocalePL))
	assert.Equal(t, "hello", enOnly.Text(entities.LocalePL))
	assert.Equal(t, "cześć", plOnly.Text(entities.LocaleEN))
	assert.Equal(t, "", Item{}.Text(entities.LocaleEN))
}

func TestItemFromQuote(t *testing.T) {
	item := ItemFromQuote(entities.Quote{
		ID:         "q1",
		Author:     "Seneca",
		ContentEN:  "hello",
		Category:   entities.CategoryWisdom,
		Origin:     entities.OriginUser,
		Favourites: []entities.Favourite{{QuoteID: "q1", UserID: "u1"}},
	})

	assert.Equal(t, entities.OriginUser, item.Origin)
	assert.True(t, item.IsFavoritedBy("u1"))
	assert.False(t, item.IsFavoritedBy("u2"))
	assert.False(t, item.IsFavoritedBy(""))
	_, hasPL := item.Content[entities.LocalePL]
	assert.False(t, hasPL)
}

func TestIntro(t *testing.T) {
	for _, c := range entities.Categories {
		for _, l := range entities.Locales {
			assert.NotEmpty(t, Intro(c, l), "%s/%s", c, l)
		}
	}
	assert.Contains(t, Intro(entities.CategoryMantras, entities.LocaleEN), "power of your own voice")
}
