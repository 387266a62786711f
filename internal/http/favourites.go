package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/holonet/internal/entities"
)

// FavouritesStore defines database operations for favourites management.
type FavouritesStore interface {
	SetFavourite(ctx context.Context, label entities.Label, id string, isFavourite bool) error
	GetItem(ctx context.Context, label entities.Label, id string) (*entities.ListItem, error)
	GetFavourites(ctx context.Context, label entities.Label, limit, offset int) ([]entities.ListItem, int64, error)
	GetFavouriteCount(ctx context.Context, label entities.Label) (int64, error)
}

type FavouritesController struct {
	store FavouritesStore
}

func NewFavouritesController(store FavouritesStore) *FavouritesController {
	return &FavouritesController{store: store}
}

// GetItem returns one cached item.
// GET /api/lists/:label/items/:id
func (fc *FavouritesController) GetItem(c *gin.Context) {
	label, ok := parseLabelParam(c, "label")
	if !ok {
		return
	}

	item, err := fc.store.GetItem(c.Request.Context(), label, c.Param("id"))
	if err != nil {
		if isNotFound(err) {
			respondNotFound(c, "item")
			return
		}
		respondInternalError(c, err, "get item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// AddFavourite marks an item as favourite.
// POST /api/lists/:label/items/:id/favourite
func (fc *FavouritesController) AddFavourite(c *gin.Context) {
	fc.setFavourite(c, true, "favourite added")
}

// RemoveFavourite removes an item from favourites.
// DELETE /api/lists/:label/items/:id/favourite
func (fc *FavouritesController) RemoveFavourite(c *gin.Context) {
	fc.setFavourite(c, false, "favourite removed")
}

func (fc *FavouritesController) setFavourite(c *gin.Context, value bool, message string) {
	label, ok := parseLabelParam(c, "label")
	if !ok {
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()

	if err := fc.store.SetFavourite(ctx, label, id, value); err != nil {
		if isNotFound(err) {
			respondNotFound(c, "item")
			return
		}
		respondInternalError(c, err, message)
		return
	}

	item, err := fc.store.GetItem(ctx, label, id)
	if err != nil {
		respondSuccess(c, message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "item": item})
}

// ListFavourites returns favourite items with pagination, optionally for one list.
// GET /api/favourites?label=persons&limit=20&offset=0
func (fc *FavouritesController) ListFavourites(c *gin.Context) {
	label, ok := parseOptionalLabelQuery(c, "label")
	if !ok {
		return
	}
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	items, total, err := fc.store.GetFavourites(c.Request.Context(), label, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list favourites")
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       items,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(items)) < total,
		TotalPages: totalPages,
	})
}

// GetFavouriteCount returns the number of favourite items.
// GET /api/favourites/count?label=persons
func (fc *FavouritesController) GetFavouriteCount(c *gin.Context) {
	label, ok := parseOptionalLabelQuery(c, "label")
	if !ok {
		return
	}

	count, err := fc.store.GetFavouriteCount(c.Request.Context(), label)
	if err != nil {
		respondInternalError(c, err, "count favourites")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
