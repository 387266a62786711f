package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CorrelationMiddleware())
	router.Use(RequestLogger())

	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// List endpoints
	if cfg.Pager != nil {
		lists := NewListsController(cfg.Pager, cfg.State, cfg.Labels)
		router.GET("/api/lists", lists.ListAll)
		router.GET("/api/lists/:label/items", lists.GetItems)
		router.GET("/api/lists/:label/status", lists.GetStatus)
		router.POST("/api/lists/:label/load/:signal", lists.Load)
	}

	// Task endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/lists/:label/refresh", tasksController.EnqueueRefresh)
		router.POST("/api/lists/:label/sync", tasksController.EnqueueSync)
	}

	// Favourites endpoints
	if cfg.FavouritesStore != nil {
		favouritesController := NewFavouritesController(cfg.FavouritesStore)
		router.GET("/api/lists/:label/items/:id", favouritesController.GetItem)
		router.POST("/api/lists/:label/items/:id/favourite", favouritesController.AddFavourite)
		router.DELETE("/api/lists/:label/items/:id/favourite", favouritesController.RemoveFavourite)
		router.GET("/api/favourites", favouritesController.ListFavourites)
		router.GET("/api/favourites/count", favouritesController.GetFavouriteCount)
	}

	return router
}
