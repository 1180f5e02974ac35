package content

import (
	"math/rand/v2"
)

// List is a shuffled ring of items with a cursor. The cursor is always in
// [0, Len()) when the list is non-empty. List is not safe for concurrent use.
type List struct {
	items  []Item
	cursor int
	intro  string
	rng    *rand.Rand
}

// Build returns a uniformly shuffled copy of items with the cursor on the
// first one. intro is the entry shown while the list is empty. A nil rng uses
// the global source.
func Build(items []Item, intro string, rng *rand.Rand) *List {
	l := &List{
		items: append([]Item(nil), items...),
		intro: intro,
		rng:   rng,
	}
	l.shuffle(l.items)
	return l
}

// shuffle is a Fisher-Yates shuffle.
func (l *List) shuffle(items []Item) {
	swap := func(i, j int) { items[i], items[j] = items[j], items[i] }
	if l.rng != nil {
		l.rng.Shuffle(len(items), swap)
		return
	}
	rand.Shuffle(len(items), swap)
}

func (l *List) Len() int {
	return len(l.items)
}

func (l *List) Position() int {
	return l.cursor
}

// Items returns the items in display order.
func (l *List) Items() []Item {
	return append([]Item(nil), l.items...)
}

func (l *List) Current() Entry {
	if len(l.items) == 0 {
		return Entry{Intro: l.intro}
	}
	item := l.items[l.cursor]
	return Entry{Item: &item}
}

// Advance moves forward, wrapping after the last item.
func (l *List) Advance() Entry {
	if len(l.items) > 0 {
		l.cursor = (l.cursor + 1) % len(l.items)
	}
	return l.Current()
}

// Retreat moves back, wrapping before the first item.
func (l *List) Retreat() Entry {
	if len(l.items) > 0 {
		l.cursor = (l.cursor - 1 + len(l.items)) % len(l.items)
	}
	return l.Current()
}

// Refresh replaces item contents without reshuffling: items still present
// keep their order, new items are shuffled and appended, missing items are
// dropped. The cursor stays on the displayed item if it survived.
func (l *List) Refresh(items []Item) {
	fresh := make(map[string]Item, len(items))
	for _, it := range items {
		if _, dup := fresh[it.ID]; !dup {
			fresh[it.ID] = it
		}
	}

	var displayed string
	if len(l.items) > 0 {
		displayed = l.items[l.cursor].ID
	}

	next := make([]Item, 0, len(fresh))
	kept := make(map[string]bool, len(l.items))
	cursor := -1
	for _, old := range l.items {
		it, ok := fresh[old.ID]
		if !ok || kept[old.ID] {
			continue
		}
		kept[old.ID] = true
		if old.ID == displayed {
			cursor = len(next)
		}
		next = append(next, it)
	}

	var added []Item
	for _, it := range items {
		if kept[it.ID] {
			continue
		}
		kept[it.ID] = true
		added = append(added, it)
	}
	l.shuffle(added)
	next = append(next, added...)

	switch {
	case len(next) == 0:
		cursor = 0
	case cursor < 0:
		cursor = min(l.cursor, len(next)-1)
	}
	l.items = next
	l.cursor = cursor
}
