package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/holonet/internal/database/settings"
	"github.com/mrlokans/holonet/internal/entities"
)

// SyncClock keeps the last successful refresh time of each list in the
// settings table.
type SyncClock struct {
	settings *settings.Repository
	now      func() time.Time
}

// NewSyncClock creates a settings-backed SyncClock using the wall clock.
func NewSyncClock(db *Database) *SyncClock {
	return &SyncClock{
		settings: settings.NewRepository(db.DB),
		now:      time.Now,
	}
}

func (c *SyncClock) Now() time.Time {
	return c.now()
}

// LastSyncTime returns nil if label was never refreshed.
func (c *SyncClock) LastSyncTime(ctx context.Context, label entities.Label) (*time.Time, error) {
	setting, err := c.settings.GetSetting(ctx, entities.LastSyncKey(label))
	if err != nil {
		return nil, err
	}
	if setting == nil || setting.Value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, setting.Value)
	if err != nil {
		return nil, &entities.StorageError{Op: "parse last sync time", Err: fmt.Errorf("%q: %w", setting.Value, err)}
	}
	return &t, nil
}

func (c *SyncClock) SetLastSyncTime(ctx context.Context, label entities.Label, t time.Time) error {
	return c.settings.SetSetting(ctx, entities.LastSyncKey(label), t.UTC().Format(time.RFC3339Nano))
}
