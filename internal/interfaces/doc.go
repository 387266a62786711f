// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - mediator.Store: Transactional cache and bookmark write-back (internal/mediator/mediator.go)
//   - mediator.Clock: Last refresh time per list (internal/mediator/mediator.go)
//   - pager.Cache: Windowed reads of cached lists (internal/pager/pager.go)
//   - http.FavouritesStore: Favourite tracking (internal/http/favourites.go)
//   - http.SyncStateReader: Bookmark and last refresh for status (internal/http/lists.go)
//
// ## External Service Interfaces
//
//   - mediator.RemoteSource: One page of a remote list (internal/mediator/mediator.go)
//
// ## Sync Pipeline Interfaces
//
//   - pager.Loader: Mediator surface used by the pager (internal/pager/pager.go)
//   - tasks.Loader: Serialized loads used by background tasks (internal/tasks/sync.go)
//   - http.ListPager: Pager surface used by the HTTP API (internal/http/lists.go)
//   - scheduler.StalenessChecker: Staleness policy for scheduled refreshes (internal/scheduler/refresh.go)
//   - scheduler.Dispatcher: Starts one refresh, inline or queued (internal/scheduler/refresh.go)
//   - http.TaskQueue: Background task submission and status (internal/http/tasks.go)
//
// # Adding a New Remote List
//
//  1. Add the label to internal/entities/item.go and AllLabels
//  2. Map it to its connection field in internal/swapi/queries.go
//  3. Add it to SYNC_LABELS to include it in scheduled refreshes
//
// Compile-time checks for every implementation live in checks.go.
package interfaces
