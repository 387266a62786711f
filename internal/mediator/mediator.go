// Package mediator reconciles remote pages into the local cache.
//
// A Mediator serves three load signals per label: Refresh replaces the cached
// list with the first remote page, Append extends it with the page after the
// stored bookmark, and Prepend is always exhausted. Every write-back happens in
// a single store transaction, and a failed load leaves the store untouched.
//
// Callers must not issue concurrent loads for the same label; loads for
// different labels are independent.
package mediator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/metrics"
	"github.com/mrlokans/holonet/internal/swapi"
)

const (
	DefaultStalenessWindow = time.Hour
	DefaultPageSize        = 20
)

// RemoteSource fetches one page of a remote list.
type RemoteSource interface {
	FetchPage(ctx context.Context, label entities.Label, cursor string, pageSize int) (*swapi.Page, error)
}

// Store is the transactional view of the cache and bookmark stores.
type Store interface {
	Bookmark(ctx context.Context, label entities.Label) (*entities.Bookmark, error)
	Count(ctx context.Context, label entities.Label) (int64, error)
	CommitRefresh(ctx context.Context, label entities.Label, rows []entities.ListItem, nextKey *string) error
	CommitAppend(ctx context.Context, label entities.Label, rows []entities.ListItem, nextKey *string) error
}

// Clock reports the current time and the last successful refresh of a label.
type Clock interface {
	Now() time.Time
	LastSyncTime(ctx context.Context, label entities.Label) (*time.Time, error)
	SetLastSyncTime(ctx context.Context, label entities.Label, t time.Time) error
}

// Config tunes a Mediator. Zero fields take defaults.
type Config struct {
	StalenessWindow time.Duration
	PageSize        int
}

type Mediator struct {
	remote    RemoteSource
	store     Store
	clock     Clock
	staleness time.Duration
	pageSize  int

	mu          sync.Mutex
	initialized map[entities.Label]bool
}

// New creates a Mediator.
func New(remote RemoteSource, store Store, clock Clock, cfg Config) *Mediator {
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = DefaultStalenessWindow
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Mediator{
		remote:      remote,
		store:       store,
		clock:       clock,
		staleness:   cfg.StalenessWindow,
		pageSize:    cfg.PageSize,
		initialized: make(map[entities.Label]bool),
	}
}

// Initialize decides whether the first load of label must be a refresh: the
// list was never refreshed, its last refresh is older than the staleness
// window, or nothing is cached. Lookup failures also launch a refresh.
func (m *Mediator) Initialize(ctx context.Context, label entities.Label) InitializeAction {
	logger := log.With().Str("label", label.String()).Logger()

	last, err := m.clock.LastSyncTime(ctx, label)
	if err != nil {
		logger.Warn().Err(err).Msg("could not read last sync time, refreshing")
		return LaunchInitialRefresh
	}
	if last == nil {
		return LaunchInitialRefresh
	}
	if age := m.clock.Now().Sub(*last); age > m.staleness {
		logger.Debug().Dur("age", age).Dur("window", m.staleness).Msg("cache is stale")
		return LaunchInitialRefresh
	}

	count, err := m.store.Count(ctx, label)
	if err != nil {
		logger.Warn().Err(err).Msg("could not count cached items, refreshing")
		return LaunchInitialRefresh
	}
	if count == 0 {
		return LaunchInitialRefresh
	}
	return SkipInitialRefresh
}

// Load serves signal for label. The first load of a label runs Initialize and
// is upgraded to Refresh when the cache is stale. A pageSize <= 0 uses the
// configured page size. Errors are reported in the Result, never returned.
func (m *Mediator) Load(ctx context.Context, label entities.Label, signal LoadSignal, pageSize int) Result {
	if pageSize <= 0 {
		pageSize = m.pageSize
	}

	first := !m.isInitialized(label)
	if first {
		if m.Initialize(ctx, label) == LaunchInitialRefresh {
			if signal != Refresh {
				metrics.MediatorForcedRefreshTotal.WithLabelValues(label.String()).Inc()
			}
			signal = Refresh
		} else {
			m.markInitialized(label)
			first = false
		}
	}

	logger := log.With().
		Str("label", label.String()).
		Str("signal", signal.String()).
		Str("run_id", uuid.NewString()).
		Logger()

	var result Result
	switch signal {
	case Refresh:
		result = m.refresh(ctx, logger, label, pageSize)
	case Append:
		result = m.append(ctx, logger, label, pageSize)
	case Prepend:
		result = Result{Success: true, Exhausted: true}
	default:
		result = Result{Kind: KindProtocol, Err: fmt.Errorf("unsupported load signal %v", signal)}
	}
	result.Signal = signal

	if first && result.Success {
		m.markInitialized(label)
	}
	record(label, result)
	return result
}

func (m *Mediator) refresh(ctx context.Context, logger zerolog.Logger, label entities.Label, pageSize int) Result {
	page, err := m.fetch(ctx, label, "", pageSize)
	if err != nil {
		return m.fail(logger, "fetch first page", err)
	}

	// Commit point: cancellation is honoured up to here, never during the write.
	if err := ctx.Err(); err != nil {
		return m.fail(logger, "cancelled before commit", err)
	}
	commitCtx := context.WithoutCancel(ctx)

	nextKey := continuation(page)
	rows := toRows(label, page.Items)
	if err := m.store.CommitRefresh(commitCtx, label, rows, nextKey); err != nil {
		return m.fail(logger, "commit refresh", err)
	}

	// The page is already durable; a lost timestamp only costs an extra refresh.
	if err := m.clock.SetLastSyncTime(commitCtx, label, m.clock.Now()); err != nil {
		logger.Warn().Err(err).Msg("could not record last sync time")
	}

	logger.Info().Int("items", len(rows)).Bool("has_more", nextKey != nil).Msg("refreshed list")
	return Result{Success: true, Exhausted: nextKey == nil, Fetched: len(rows)}
}

func (m *Mediator) append(ctx context.Context, logger zerolog.Logger, label entities.Label, pageSize int) Result {
	bookmark, err := m.store.Bookmark(ctx, label)
	if err != nil {
		return m.fail(logger, "read bookmark", err)
	}
	if !bookmark.HasNext() {
		logger.Debug().Msg("no further pages")
		return Result{Success: true, Exhausted: true}
	}
	cursor := *bookmark.NextKey

	page, err := m.fetch(ctx, label, cursor, pageSize)
	if err != nil {
		return m.fail(logger, "fetch next page", err)
	}

	nextKey := continuation(page)
	if nextKey != nil && *nextKey == cursor {
		return m.fail(logger, "fetch next page", &swapi.ProtocolError{Msg: "remote returned the requested cursor as the next cursor"})
	}

	if err := ctx.Err(); err != nil {
		return m.fail(logger, "cancelled before commit", err)
	}

	rows := toRows(label, page.Items)
	if err := m.store.CommitAppend(context.WithoutCancel(ctx), label, rows, nextKey); err != nil {
		return m.fail(logger, "commit append", err)
	}

	logger.Info().Int("items", len(rows)).Bool("has_more", nextKey != nil).Msg("appended page")
	return Result{Success: true, Exhausted: nextKey == nil, Fetched: len(rows)}
}

func (m *Mediator) fetch(ctx context.Context, label entities.Label, cursor string, pageSize int) (*swapi.Page, error) {
	start := time.Now()
	page, err := m.remote.FetchPage(ctx, label, cursor, pageSize)
	metrics.MediatorFetchSeconds.WithLabelValues(label.String()).Observe(time.Since(start).Seconds())
	return page, err
}

func (m *Mediator) fail(logger zerolog.Logger, step string, err error) Result {
	kind := classify(err)
	logger.Warn().Err(err).Str("step", step).Str("kind", string(kind)).Msg("load failed")
	return Result{Kind: kind, Err: fmt.Errorf("%s: %w", step, err)}
}

func (m *Mediator) isInitialized(label entities.Label) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized[label]
}

func (m *Mediator) markInitialized(label entities.Label) {
	m.mu.Lock()
	m.initialized[label] = true
	m.mu.Unlock()
}

// continuation returns the bookmark to store after page: its end cursor while
// the remote reports more pages, nil once the list is exhausted.
func continuation(page *swapi.Page) *string {
	if !page.HasMore || page.NextCursor == nil || *page.NextCursor == "" {
		return nil
	}
	next := *page.NextCursor
	return &next
}

func toRows(label entities.Label, items []swapi.Item) []entities.ListItem {
	rows := make([]entities.ListItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, entities.ListItem{
			ID:        item.ID,
			Label:     label,
			Name:      item.Name,
			FilmCount: item.FilmCount,
			Cursor:    item.Cursor,
		})
	}
	return rows
}

func record(label entities.Label, result Result) {
	outcome := metrics.Ok
	switch {
	case !result.Success:
		outcome = metrics.Fail
	case result.Exhausted:
		outcome = metrics.Exhausted
	}
	metrics.MediatorLoadsTotal.WithLabelValues(label.String(), result.Signal.String(), outcome).Inc()
	if result.Fetched > 0 {
		metrics.MediatorItemsFetchedTotal.WithLabelValues(label.String()).Add(float64(result.Fetched))
	}
}
