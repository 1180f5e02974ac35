// Package content aggregates quotes from the curated and own sources into
// shuffled per-category feeds and keeps the signed-in user's favourites in
// sync with the remote store.
//
// # Components
//
//   - Adapter: turns (category, source preference, user) into remote
//     queries and normalises rows into Items.
//   - List: a shuffled ring of Items with a cursor.
//   - Favourites: the user's favourite set, refetched after every toggle
//     and on every change notification.
//   - Feed: one category's screen binding (current, advance, retreat,
//     toggle favourite, loading, error).
//
// All collaborators are injected, so tests substitute fakes for the remote
// client, identity, preference and locale providers.
//
// # Usage
//
//	favs := content.NewFavourites(client, session)
//	feed := content.NewFeed(entities.CategoryMantras, content.Deps{
//		Client:      client,
//		Favourites:  favs,
//		Preferences: prefs,
//		Locale:      languages,
//		Identity:    session,
//	})
//	defer feed.Close()
//	_ = feed.Load(ctx)
//	entry := feed.Advance()
package content
