package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/mediator"
	"github.com/mrlokans/holonet/internal/pager"
)

// ListPager serves windows of cached lists and serialized mediator loads.
type ListPager interface {
	Window(ctx context.Context, label entities.Label, offset, limit int) (*pager.Window, error)
	Load(ctx context.Context, label entities.Label, signal mediator.LoadSignal) mediator.Result
	Status(ctx context.Context, label entities.Label) (*pager.Status, error)
}

// SyncStateReader exposes the persisted sync state of a label.
type SyncStateReader interface {
	Bookmark(ctx context.Context, label entities.Label) (*entities.Bookmark, error)
	LastSyncTime(ctx context.Context, label entities.Label) (*time.Time, error)
}

type ListsController struct {
	pager  ListPager
	state  SyncStateReader
	labels []entities.Label
}

func NewListsController(p ListPager, state SyncStateReader, labels []entities.Label) *ListsController {
	return &ListsController{pager: p, state: state, labels: labels}
}

// WindowResponse is one page of a cached list.
type WindowResponse struct {
	PaginatedResponse
	Label      entities.Label   `json:"label"`
	EndReached bool             `json:"end_reached"`
	LoadError  *pager.LoadError `json:"load_error,omitempty"`
}

// ListStatus is the sync state of one list.
type ListStatus struct {
	Label      entities.Label `json:"label"`
	Cached     int64          `json:"cached"`
	Exhausted  bool           `json:"exhausted"`
	NextKey    *string        `json:"next_key"`
	LastSyncAt *time.Time     `json:"last_sync_at"`
}

// LoadResponse reports a successful mediator load.
type LoadResponse struct {
	Label     entities.Label `json:"label"`
	Signal    string         `json:"signal"`
	Exhausted bool           `json:"exhausted"`
	Fetched   int            `json:"fetched"`
}

// GetItems returns a window of a cached list, loading more pages as needed.
// GET /api/lists/:label/items?offset=0&limit=20
func (lc *ListsController) GetItems(c *gin.Context) {
	label, ok := parseLabelParam(c, "label")
	if !ok {
		return
	}
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	window, err := lc.pager.Window(c.Request.Context(), label, offset, limit)
	if err != nil {
		respondInternalError(c, err, "read list window")
		return
	}

	c.JSON(http.StatusOK, WindowResponse{
		PaginatedResponse: PaginatedResponse{
			Data:    window.Items,
			Total:   window.Total,
			Limit:   window.Limit,
			Offset:  window.Offset,
			HasMore: !window.EndReached,
		},
		Label:      label,
		EndReached: window.EndReached,
		LoadError:  window.LoadError,
	})
}

// Load runs one load signal for a list and waits for it.
// POST /api/lists/:label/load/:signal
func (lc *ListsController) Load(c *gin.Context) {
	label, ok := parseLabelParam(c, "label")
	if !ok {
		return
	}
	signal, err := mediator.ParseLoadSignal(c.Param("signal"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result := lc.pager.Load(c.Request.Context(), label, signal)
	if !result.Success {
		respondLoadFailure(c, result)
		return
	}

	c.JSON(http.StatusOK, LoadResponse{
		Label:     label,
		Signal:    result.Signal.String(),
		Exhausted: result.Exhausted,
		Fetched:   result.Fetched,
	})
}

// GetStatus returns the sync state of one list.
// GET /api/lists/:label/status
func (lc *ListsController) GetStatus(c *gin.Context) {
	label, ok := parseLabelParam(c, "label")
	if !ok {
		return
	}

	status, err := lc.status(c.Request.Context(), label)
	if err != nil {
		respondInternalError(c, err, "list status")
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListAll returns the sync state of every configured list.
// GET /api/lists
func (lc *ListsController) ListAll(c *gin.Context) {
	statuses := make([]ListStatus, 0, len(lc.labels))
	for _, label := range lc.labels {
		status, err := lc.status(c.Request.Context(), label)
		if err != nil {
			respondInternalError(c, err, "list status")
			return
		}
		statuses = append(statuses, *status)
	}
	c.JSON(http.StatusOK, gin.H{"lists": statuses})
}

func (lc *ListsController) status(ctx context.Context, label entities.Label) (*ListStatus, error) {
	ps, err := lc.pager.Status(ctx, label)
	if err != nil {
		return nil, err
	}
	bookmark, err := lc.state.Bookmark(ctx, label)
	if err != nil {
		return nil, err
	}
	lastSync, err := lc.state.LastSyncTime(ctx, label)
	if err != nil {
		return nil, err
	}

	status := &ListStatus{
		Label:      label,
		Cached:     ps.Cached,
		Exhausted:  ps.Exhausted,
		LastSyncAt: lastSync,
	}
	if bookmark != nil {
		status.NextKey = bookmark.NextKey
	}
	return status, nil
}
