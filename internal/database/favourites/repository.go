// Package favourites provides read-side queries over favourite list items.
//
// Toggling the flag lives in the items cache store; this package only
// answers "what did the user mark" across labels.
//
// # Usage
//
//	repo := favourites.NewRepository(db)
//	items, total, err := repo.GetFavourites(ctx, entities.LabelPlanets, 20, 0)
package favourites

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/holonet/internal/entities"
)

// Repository handles all favourites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favourites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetFavourites returns favourite items with pagination. An empty label
// matches every list.
func (r *Repository) GetFavourites(ctx context.Context, label entities.Label, limit, offset int) ([]entities.ListItem, int64, error) {
	var rows []entities.ListItem
	var total int64

	query := r.scope(ctx, label)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, entities.NewStorageError("count favourites", err)
	}

	query = r.scope(ctx, label).Order("label ASC, created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, entities.NewStorageError("list favourites", err)
	}
	return rows, total, nil
}

// GetFavouriteCount returns the number of favourite items for label, or for
// every list when label is empty.
func (r *Repository) GetFavouriteCount(ctx context.Context, label entities.Label) (int64, error) {
	var count int64
	if err := r.scope(ctx, label).Count(&count).Error; err != nil {
		return 0, entities.NewStorageError("count favourites", err)
	}
	return count, nil
}

func (r *Repository) scope(ctx context.Context, label entities.Label) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entities.ListItem{}).Where("is_favorite = ?", true)
	if label != "" {
		query = query.Where("label = ?", label)
	}
	return query
}
