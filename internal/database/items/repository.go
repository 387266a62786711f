// Package items provides the cache store for paginated list items.
//
// Rows are partitioned by label and read back in insertion order (created_at),
// never in remote order.
//
// # Usage
//
//	repo := items.NewRepository(db)
//	page, err := repo.Window(ctx, entities.LabelPersons, 0, 20)
package items

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/holonet/internal/entities"
)

const insertBatchSize = 100

// Repository handles all list item database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new items repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// ReplaceAll atomically deletes every row of label and inserts items in their
// place. Favourite flags of ids that survive the replacement are kept.
func (r *Repository) ReplaceAll(ctx context.Context, label entities.Label, items []entities.ListItem) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var favourites []string
		if err := tx.Model(&entities.ListItem{}).
			Where("label = ? AND is_favorite = ?", label, true).
			Pluck("id", &favourites).Error; err != nil {
			return err
		}

		if err := tx.Where("label = ?", label).Delete(&entities.ListItem{}).Error; err != nil {
			return err
		}

		labelled := make([]entities.ListItem, len(items))
		for i, item := range items {
			item.Label = label
			labelled[i] = item
		}
		rows := dedupe(labelled)
		if len(rows) == 0 {
			return nil
		}

		seq, err := r.nextSequence(tx, label)
		if err != nil {
			return err
		}

		keep := make(map[string]struct{}, len(favourites))
		for _, id := range favourites {
			keep[id] = struct{}{}
		}
		for i := range rows {
			rows[i].CreatedAt = seq + int64(i)
			_, rows[i].IsFavorite = keep[rows[i].ID]
		}

		return tx.CreateInBatches(rows, insertBatchSize).Error
	})
	return entities.NewStorageError("replace items", err)
}

// Append inserts items after the existing rows of their label. A row whose id
// already exists in the same label is overwritten with the new remote fields;
// its favourite flag and position are kept.
func (r *Repository) Append(ctx context.Context, items []entities.ListItem) error {
	rows := dedupe(items)
	if len(rows) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next := make(map[entities.Label]int64)
		for i := range rows {
			label := rows[i].Label
			seq, ok := next[label]
			if !ok {
				var err error
				if seq, err = r.nextSequence(tx, label); err != nil {
					return err
				}
			}
			rows[i].CreatedAt = seq
			rows[i].IsFavorite = false
			next[label] = seq + 1
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "label"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "film_count", "cursor"}),
		}).CreateInBatches(rows, insertBatchSize).Error
	})
	return entities.NewStorageError("append items", err)
}

// Window returns up to limit rows of label starting at offset, ordered by
// insertion. A non-positive limit returns every remaining row.
func (r *Repository) Window(ctx context.Context, label entities.Label, offset, limit int) ([]entities.ListItem, error) {
	var rows []entities.ListItem
	query := r.db.WithContext(ctx).
		Where("label = ?", label).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, entities.NewStorageError("read window", err)
	}
	return rows, nil
}

// SetFavourite updates the favourite flag of a single item of label.
func (r *Repository) SetFavourite(ctx context.Context, label entities.Label, id string, isFavourite bool) error {
	result := r.db.WithContext(ctx).Model(&entities.ListItem{}).
		Where("label = ? AND id = ?", label, id).
		Update("is_favorite", isFavourite)
	if result.Error != nil {
		return entities.NewStorageError("set favourite", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrItemNotFound
	}
	return nil
}

// Count returns the number of cached rows for label.
func (r *Repository) Count(ctx context.Context, label entities.Label) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.ListItem{}).
		Where("label = ?", label).
		Count(&count).Error
	if err != nil {
		return 0, entities.NewStorageError("count items", err)
	}
	return count, nil
}

// Get retrieves a single item of label by remote id.
func (r *Repository) Get(ctx context.Context, label entities.Label, id string) (*entities.ListItem, error) {
	var item entities.ListItem
	err := r.db.WithContext(ctx).Where("label = ? AND id = ?", label, id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrItemNotFound
	}
	if err != nil {
		return nil, entities.NewStorageError("get item", err)
	}
	return &item, nil
}

// nextSequence returns the first created_at value that sorts after every
// existing row of label. Wall-clock microseconds are used as a floor so that
// values keep growing across a wipe.
func (r *Repository) nextSequence(tx *gorm.DB, label entities.Label) (int64, error) {
	var max int64
	err := tx.Model(&entities.ListItem{}).
		Where("label = ?", label).
		Select("COALESCE(MAX(created_at), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if floor := r.now().UnixMicro(); floor > max {
		return floor, nil
	}
	return max + 1, nil
}

type rowKey struct {
	label entities.Label
	id    string
}

// dedupe drops earlier duplicates of a (label, id) key within one batch (last
// write wins), preserving the order of the surviving rows.
func dedupe(items []entities.ListItem) []entities.ListItem {
	last := make(map[rowKey]int, len(items))
	for i, item := range items {
		last[rowKey{item.Label, item.ID}] = i
	}
	rows := make([]entities.ListItem, 0, len(last))
	for i, item := range items {
		if last[rowKey{item.Label, item.ID}] == i {
			rows = append(rows, item)
		}
	}
	return rows
}
