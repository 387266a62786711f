package database

import (
	"context"

	"github.com/mrlokans/holonet/internal/database/favourites"
	"github.com/mrlokans/holonet/internal/database/items"
	"github.com/mrlokans/holonet/internal/entities"
)

// SetFavourite updates the favourite flag of a cached item of label.
func (d *Database) SetFavourite(ctx context.Context, label entities.Label, id string, isFavourite bool) error {
	return items.NewRepository(d.DB).SetFavourite(ctx, label, id, isFavourite)
}

// GetItem returns one cached item of label by remote id.
func (d *Database) GetItem(ctx context.Context, label entities.Label, id string) (*entities.ListItem, error) {
	return items.NewRepository(d.DB).Get(ctx, label, id)
}

// Window returns cached items of a label in insertion order.
func (d *Database) Window(ctx context.Context, label entities.Label, offset, limit int) ([]entities.ListItem, error) {
	return items.NewRepository(d.DB).Window(ctx, label, offset, limit)
}

// Count returns the number of cached items of a label.
func (d *Database) Count(ctx context.Context, label entities.Label) (int64, error) {
	return items.NewRepository(d.DB).Count(ctx, label)
}

// GetFavourites returns favourite items with pagination. An empty label
// matches every list. Returns the items, total count, and any error.
func (d *Database) GetFavourites(ctx context.Context, label entities.Label, limit, offset int) ([]entities.ListItem, int64, error) {
	return favourites.NewRepository(d.DB).GetFavourites(ctx, label, limit, offset)
}

// GetFavouriteCount returns the number of favourite items.
func (d *Database) GetFavouriteCount(ctx context.Context, label entities.Label) (int64, error) {
	return favourites.NewRepository(d.DB).GetFavouriteCount(ctx, label)
}
