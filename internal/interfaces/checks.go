package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/holonet/internal/database"
	"github.com/mrlokans/holonet/internal/http"
	"github.com/mrlokans/holonet/internal/mediator"
	"github.com/mrlokans/holonet/internal/pager"
	"github.com/mrlokans/holonet/internal/scheduler"
	"github.com/mrlokans/holonet/internal/swapi"
	"github.com/mrlokans/holonet/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Store and Clock implementations
var _ mediator.Store = (*database.SyncStore)(nil)
var _ mediator.Clock = (*database.SyncClock)(nil)

// Cache implementations
var _ pager.Cache = (*database.Database)(nil)

// FavouritesStore implementations
var _ http.FavouritesStore = (*database.Database)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// SyncStateReader implementations
var _ http.SyncStateReader = struct {
	*database.SyncStore
	*database.SyncClock
}{}

// =============================================================================
// External Services
// =============================================================================

// RemoteSource implementations
var _ mediator.RemoteSource = (*swapi.Client)(nil)

// =============================================================================
// Sync Pipeline
// =============================================================================

// Loader implementations
var _ pager.Loader = (*mediator.Mediator)(nil)
var _ tasks.Loader = (*pager.Pager)(nil)
var _ http.ListPager = (*pager.Pager)(nil)
var _ scheduler.StalenessChecker = (*mediator.Mediator)(nil)

// TaskQueue implementations
var _ http.TaskQueue = (*tasks.Client)(nil)
