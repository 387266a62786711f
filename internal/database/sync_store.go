package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/holonet/internal/database/bookmarks"
	"github.com/mrlokans/holonet/internal/database/items"
	"github.com/mrlokans/holonet/internal/entities"
)

// SyncStore exposes the cache and bookmark stores to the sync mediator, with
// each write-back as one transaction.
type SyncStore struct {
	db        *gorm.DB
	items     *items.Repository
	bookmarks *bookmarks.Repository
}

// NewSyncStore creates a SyncStore over db.
func NewSyncStore(db *Database) *SyncStore {
	return &SyncStore{
		db:        db.DB,
		items:     items.NewRepository(db.DB),
		bookmarks: bookmarks.NewRepository(db.DB),
	}
}

// Bookmark returns the current bookmark of label, or nil.
func (s *SyncStore) Bookmark(ctx context.Context, label entities.Label) (*entities.Bookmark, error) {
	return s.bookmarks.Get(ctx, label)
}

// Count returns the number of cached rows of label.
func (s *SyncStore) Count(ctx context.Context, label entities.Label) (int64, error) {
	return s.items.Count(ctx, label)
}

// CommitRefresh clears the bookmark, replaces every cached row of label with
// rows and stores nextKey, all in one transaction. Readers see either the old
// list or the new one.
func (s *SyncStore) CommitRefresh(ctx context.Context, label entities.Label, rows []entities.ListItem, nextKey *string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		marks := bookmarks.NewRepository(tx)
		if err := marks.Clear(ctx, label); err != nil {
			return err
		}
		if err := items.NewRepository(tx).ReplaceAll(ctx, label, rows); err != nil {
			return err
		}
		return marks.Put(ctx, label, nextKey)
	})
	return entities.NewStorageError("commit refresh", err)
}

// CommitAppend adds rows after the cached rows of label and advances the
// bookmark to nextKey in one transaction.
func (s *SyncStore) CommitAppend(ctx context.Context, label entities.Label, rows []entities.ListItem, nextKey *string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			rows[i].Label = label
		}
		if err := items.NewRepository(tx).Append(ctx, rows); err != nil {
			return err
		}
		return bookmarks.NewRepository(tx).Put(ctx, label, nextKey)
	})
	return entities.NewStorageError("commit append", err)
}
