// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, pragmas, migrations
//	├── sync_store.go    # Transactional write-back for the sync mediator
//	├── clock.go         # Last refresh time per list
//	├── items/           # Cached list rows and their ordering
//	├── bookmarks/       # Continuation cursor per list (remote_keys)
//	├── favourites/      # Favourite queries across lists
//	└── settings/        # Key/value settings
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type over a *gorm.DB, which may be a
// transaction:
//
//	db, err := database.NewDatabase("./holonet.db")
//
//	err = db.DB.Transaction(func(tx *gorm.DB) error {
//		if err := items.NewRepository(tx).ReplaceAll(ctx, label, rows); err != nil {
//			return err
//		}
//		return bookmarks.NewRepository(tx).Put(ctx, label, nextKey)
//	})
//
// # Interface Implementations
//
//   - SyncStore: implements mediator.Store
//   - SyncClock: implements mediator.Clock
//   - Database: implements pager.Cache and http.FavouritesStore
//
// Failures of the persistence layer are returned as *entities.StorageError.
package database
