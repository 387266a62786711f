package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/holonet/internal/config"
	"github.com/mrlokans/holonet/internal/database"
	"github.com/mrlokans/holonet/internal/entities"
	http_controllers "github.com/mrlokans/holonet/internal/http"
	"github.com/mrlokans/holonet/internal/mediator"
	"github.com/mrlokans/holonet/internal/pager"
	"github.com/mrlokans/holonet/internal/scheduler"
	"github.com/mrlokans/holonet/internal/swapi"
	"github.com/mrlokans/holonet/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Core is the sync stack shared by the server and the CLI commands.
type Core struct {
	DB       *database.Database
	Store    *database.SyncStore
	Clock    *database.SyncClock
	Remote   *swapi.Client
	Mediator *mediator.Mediator
	Pager    *pager.Pager
}

// syncState serves list status reads from the bookmark store and the clock.
type syncState struct {
	*database.SyncStore
	*database.SyncClock
}

// NewCore opens the cache database and wires the remote client, mediator and pager.
func NewCore(cfg *config.Config) (*Core, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store := database.NewSyncStore(db)
	clock := database.NewSyncClock(db)
	remote := swapi.NewClient(swapi.Config{
		Endpoint:   cfg.Remote.URL,
		Timeout:    cfg.Remote.Timeout,
		MaxRetries: cfg.Remote.MaxRetries,
	})
	med := mediator.New(remote, store, clock, mediator.Config{
		StalenessWindow: cfg.Sync.StalenessWindow,
		PageSize:        cfg.Sync.PageSize,
	})
	p := pager.New(med, db, pager.Config{
		PageSize:         cfg.Sync.PageSize,
		PrefetchDistance: cfg.Sync.PrefetchDistance,
	})

	return &Core{
		DB:       db,
		Store:    store,
		Clock:    clock,
		Remote:   remote,
		Mediator: med,
		Pager:    p,
	}, nil
}

// Close releases the cache database.
func (c *Core) Close() error {
	return c.DB.Close()
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT; SIGKILL can't be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Dur("timeout", timeout).Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Info().Str("version", version).Msg("starting holonet")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	core, err := NewCore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize sync stack")
	}
	defer func() {
		if err := core.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewRefreshLabelQueue(core.Pager),
			tasks.NewSyncPagesQueue(core.Pager),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic refresh of stale lists
	var refreshScheduler *scheduler.RefreshScheduler
	if cfg.RefreshSchedule.Enabled {
		refreshScheduler = scheduler.NewRefreshScheduler(
			cfg.RefreshSchedule.Schedule,
			cfg.Sync.Labels,
			core.Mediator,
			refreshDispatcher(core.Pager, taskClient),
		)
		if err := refreshScheduler.Start(context.Background()); err != nil {
			log.Error().Err(err).Msg("refresh scheduler not started")
			refreshScheduler = nil
		}
	} else {
		log.Info().Msg("refresh scheduler disabled")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:        core.DB,
		Pager:           core.Pager,
		State:           syncState{SyncStore: core.Store, SyncClock: core.Clock},
		Labels:          cfg.Sync.Labels,
		FavouritesStore: core.DB,
		Version:         version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if refreshScheduler != nil {
			refreshScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// refreshDispatcher enqueues refresh tasks when the task queue runs and
// refreshes inline otherwise.
func refreshDispatcher(p *pager.Pager, taskClient *tasks.Client) scheduler.Dispatcher {
	if taskClient != nil {
		return scheduler.DispatchFunc(func(_ context.Context, label entities.Label) error {
			_, err := taskClient.Enqueue(tasks.RefreshLabelTask{Label: label.String()})
			return err
		})
	}
	return scheduler.DispatchFunc(func(ctx context.Context, label entities.Label) error {
		result := p.Load(ctx, label, mediator.Refresh)
		if !result.Success {
			return result.Err
		}
		return nil
	})
}
