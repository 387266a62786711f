// Package bookmarks stores the pagination continuation point of each list.
//
// There is at most one row per label; it is the only durable record of how
// far a list has been paged.
package bookmarks

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/holonet/internal/entities"
)

// Repository handles all bookmark database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new bookmarks repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the bookmark for label, or nil if the list was never paged.
func (r *Repository) Get(ctx context.Context, label entities.Label) (*entities.Bookmark, error) {
	var bookmark entities.Bookmark
	err := r.db.WithContext(ctx).Where("label = ?", label).First(&bookmark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, entities.NewStorageError("get bookmark", err)
	}
	return &bookmark, nil
}

// Put creates or replaces the bookmark for label. A nil nextKey records that
// no further pages exist.
func (r *Repository) Put(ctx context.Context, label entities.Label, nextKey *string) error {
	bookmark := entities.Bookmark{
		Label:     label,
		NextKey:   nextKey,
		UpdatedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "label"}},
		DoUpdates: clause.AssignmentColumns([]string{"next_key", "updated_at"}),
	}).Create(&bookmark).Error
	return entities.NewStorageError("put bookmark", err)
}

// Clear removes the bookmark for label.
func (r *Repository) Clear(ctx context.Context, label entities.Label) error {
	err := r.db.WithContext(ctx).Where("label = ?", label).Delete(&entities.Bookmark{}).Error
	return entities.NewStorageError("clear bookmark", err)
}
