package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/mediator"
)

const (
	QueueRefreshLabel = "refresh_label"
	QueueSyncPages    = "sync_pages"
)

// Loader runs serialized mediator loads for a label.
type Loader interface {
	Load(ctx context.Context, label entities.Label, signal mediator.LoadSignal) mediator.Result
}

// RefreshLabelTask replaces the cached list of a label with the first remote page.
type RefreshLabelTask struct {
	Label string `json:"label"`
}

// Config returns the queue configuration for refresh tasks.
func (t RefreshLabelTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueRefreshLabel,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshLabelProcessor creates a processor function for RefreshLabelTask.
func RefreshLabelProcessor(loader Loader) backlite.QueueProcessor[RefreshLabelTask] {
	return func(ctx context.Context, task RefreshLabelTask) error {
		if loader == nil {
			return fmt.Errorf("loader not configured")
		}
		label, err := entities.ParseLabel(task.Label)
		if err != nil {
			return err
		}

		result := loader.Load(ctx, label, mediator.Refresh)
		if !result.Success {
			return fmt.Errorf("refresh %s (%s): %w", label, result.Kind, result.Err)
		}

		log.Info().Str("label", label.String()).Int("items", result.Fetched).Bool("exhausted", result.Exhausted).Msg("refresh task finished")
		return nil
	}
}

// NewRefreshLabelQueue creates a backlite queue for refresh tasks.
func NewRefreshLabelQueue(loader Loader) backlite.Queue {
	return backlite.NewQueue(RefreshLabelProcessor(loader))
}

// SyncPagesTask refreshes a label and then appends pages until Pages pages
// are cached or the remote list is exhausted.
type SyncPagesTask struct {
	Label string `json:"label"`
	Pages int    `json:"pages"`
}

// Config returns the queue configuration for multi-page sync tasks.
func (t SyncPagesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueSyncPages,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncPagesProcessor creates a processor function for SyncPagesTask.
func SyncPagesProcessor(loader Loader) backlite.QueueProcessor[SyncPagesTask] {
	return func(ctx context.Context, task SyncPagesTask) error {
		if loader == nil {
			return fmt.Errorf("loader not configured")
		}
		label, err := entities.ParseLabel(task.Label)
		if err != nil {
			return err
		}

		fetched, err := SyncPages(ctx, loader, label, task.Pages)
		if err != nil {
			return err
		}

		log.Info().Str("label", label.String()).Int("items", fetched).Msg("sync task finished")
		return nil
	}
}

// NewSyncPagesQueue creates a backlite queue for multi-page sync tasks.
func NewSyncPagesQueue(loader Loader) backlite.Queue {
	return backlite.NewQueue(SyncPagesProcessor(loader))
}

// SyncPages runs one Refresh followed by up to pages-1 Appends, stopping early
// once the list is exhausted. It returns the number of items fetched.
func SyncPages(ctx context.Context, loader Loader, label entities.Label, pages int) (int, error) {
	if pages <= 0 {
		pages = 1
	}

	fetched := 0
	signal := mediator.Refresh
	for i := 0; i < pages; i++ {
		result := loader.Load(ctx, label, signal)
		if !result.Success {
			return fetched, fmt.Errorf("%s %s (%s): %w", result.Signal, label, result.Kind, result.Err)
		}
		fetched += result.Fetched
		if result.Exhausted {
			break
		}
		signal = mediator.Append
	}
	return fetched, nil
}
