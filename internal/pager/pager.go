// Package pager is the consumer side of the sync mediator: it serves windows
// of the cached lists and asks the mediator for more data as a window nears
// the cached end.
//
// A Pager allows at most one mediator load per label at a time.
package pager

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/mediator"
	"github.com/mrlokans/holonet/internal/metrics"
)

const (
	DefaultPrefetchDistance = 5

	// maxAppendsPerWindow bounds the appends one window read may trigger.
	maxAppendsPerWindow = 10
)

// Loader is the mediator surface used by the pager.
type Loader interface {
	Initialize(ctx context.Context, label entities.Label) mediator.InitializeAction
	Load(ctx context.Context, label entities.Label, signal mediator.LoadSignal, pageSize int) mediator.Result
}

// Cache is the read side of the cache store.
type Cache interface {
	Window(ctx context.Context, label entities.Label, offset, limit int) ([]entities.ListItem, error)
	Count(ctx context.Context, label entities.Label) (int64, error)
}

// Config tunes a Pager. Zero fields take defaults.
type Config struct {
	PageSize         int
	PrefetchDistance int
}

// Window is one page of a cached list.
type Window struct {
	Label      entities.Label      `json:"label"`
	Items      []entities.ListItem `json:"items"`
	Offset     int                 `json:"offset"`
	Limit      int                 `json:"limit"`
	Total      int64               `json:"total"`
	EndReached bool                `json:"end_reached"`

	// LoadError is set when loading more data failed; Items still holds
	// whatever was cached.
	LoadError *LoadError `json:"load_error,omitempty"`
}

// LoadError describes a failed mediator load.
type LoadError struct {
	Signal  string             `json:"signal"`
	Kind    mediator.ErrorKind `json:"kind"`
	Message string             `json:"message"`
	Err     error              `json:"-"`
}

func (e *LoadError) Error() string {
	return e.Signal + " failed (" + string(e.Kind) + "): " + e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Status summarizes the pager state of a label.
type Status struct {
	Label     entities.Label `json:"label"`
	Cached    int64          `json:"cached"`
	Started   bool           `json:"started"`
	Exhausted bool           `json:"exhausted"`
}

type labelState struct {
	mu        sync.Mutex
	started   bool
	exhausted bool
}

type Pager struct {
	loader   Loader
	cache    Cache
	pageSize int
	prefetch int

	mu     sync.Mutex
	labels map[entities.Label]*labelState
}

// New creates a Pager.
func New(loader Loader, cache Cache, cfg Config) *Pager {
	if cfg.PageSize <= 0 {
		cfg.PageSize = mediator.DefaultPageSize
	}
	if cfg.PrefetchDistance < 0 {
		cfg.PrefetchDistance = 0
	} else if cfg.PrefetchDistance == 0 {
		cfg.PrefetchDistance = DefaultPrefetchDistance
	}
	return &Pager{
		loader:   loader,
		cache:    cache,
		pageSize: cfg.PageSize,
		prefetch: cfg.PrefetchDistance,
		labels:   make(map[entities.Label]*labelState),
	}
}

// Window returns up to limit cached items of label starting at offset. On
// first use of a label the mediator's initialization policy runs; when the
// window reaches within the prefetch distance of the cached end, pages are
// appended before reading.
func (p *Pager) Window(ctx context.Context, label entities.Label, offset, limit int) (*Window, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = p.pageSize
	}

	st := p.state(label)
	st.mu.Lock()
	defer st.mu.Unlock()

	var loadErr *LoadError
	if !st.started {
		loadErr = p.start(ctx, label, st)
	}

	count, err := p.cache.Count(ctx, label)
	if err != nil {
		return nil, err
	}

	for i := 0; loadErr == nil && !st.exhausted && i < maxAppendsPerWindow; i++ {
		if int64(offset+limit+p.prefetch) <= count {
			break
		}
		result := p.loader.Load(ctx, label, mediator.Append, p.pageSize)
		if !result.Success {
			loadErr = newLoadError(result)
			break
		}
		st.exhausted = result.Exhausted
		if result.Signal == mediator.Refresh {
			st.started = true
		}
		if count, err = p.cache.Count(ctx, label); err != nil {
			return nil, err
		}
		if result.Fetched == 0 {
			break
		}
	}

	rows, err := p.cache.Window(ctx, label, offset, limit)
	if err != nil {
		return nil, err
	}
	metrics.PagerWindowReadsTotal.WithLabelValues(label.String()).Inc()

	return &Window{
		Label:      label,
		Items:      rows,
		Offset:     offset,
		Limit:      limit,
		Total:      count,
		EndReached: st.exhausted && int64(offset+len(rows)) >= count,
		LoadError:  loadErr,
	}, nil
}

// Load forwards signal for label to the mediator, serialized with every other
// load of the same label.
func (p *Pager) Load(ctx context.Context, label entities.Label, signal mediator.LoadSignal) mediator.Result {
	st := p.state(label)
	st.mu.Lock()
	defer st.mu.Unlock()

	result := p.loader.Load(ctx, label, signal, p.pageSize)
	if result.Success {
		if result.Signal == mediator.Refresh {
			st.started = true
			st.exhausted = result.Exhausted
		} else if result.Signal == mediator.Append {
			st.exhausted = result.Exhausted
		}
	}
	return result
}

// Status reports the cached row count and paging state of label.
func (p *Pager) Status(ctx context.Context, label entities.Label) (*Status, error) {
	st := p.state(label)
	st.mu.Lock()
	defer st.mu.Unlock()

	count, err := p.cache.Count(ctx, label)
	if err != nil {
		return nil, err
	}
	return &Status{Label: label, Cached: count, Started: st.started, Exhausted: st.exhausted}, nil
}

func (p *Pager) start(ctx context.Context, label entities.Label, st *labelState) *LoadError {
	if p.loader.Initialize(ctx, label) == mediator.SkipInitialRefresh {
		st.started = true
		return nil
	}

	result := p.loader.Load(ctx, label, mediator.Refresh, p.pageSize)
	if !result.Success {
		log.Warn().Err(result.Err).Str("label", label.String()).Msg("initial refresh failed")
		return newLoadError(result)
	}
	st.started = true
	st.exhausted = result.Exhausted
	return nil
}

func (p *Pager) state(label entities.Label) *labelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.labels[label]
	if !ok {
		st = &labelState{}
		p.labels[label] = st
	}
	return st
}

func newLoadError(result mediator.Result) *LoadError {
	e := &LoadError{Signal: result.Signal.String(), Kind: result.Kind, Err: result.Err}
	if result.Err != nil {
		e.Message = result.Err.Error()
	}
	return e
}
