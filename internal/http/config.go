package http

import "github.com/mrlokans/holonet/internal/entities"

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database Pinger
	Pager    ListPager
	State    SyncStateReader
	Labels   []entities.Label

	// Favourites operations
	FavouritesStore FavouritesStore

	// Task queue (optional)
	TaskQueue TaskQueue

	// Application info
	Version string
}
