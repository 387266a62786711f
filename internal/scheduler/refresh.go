package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/mediator"
)

// StalenessChecker reports whether a label needs a refresh.
type StalenessChecker interface {
	Initialize(ctx context.Context, label entities.Label) mediator.InitializeAction
}

// Dispatcher starts a refresh of one label, either inline or via the task queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, label entities.Label) error
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(ctx context.Context, label entities.Label) error

func (f DispatchFunc) Dispatch(ctx context.Context, label entities.Label) error {
	return f(ctx, label)
}

// RefreshScheduler periodically refreshes the labels whose cache went stale.
type RefreshScheduler struct {
	labels     []entities.Label
	schedule   string
	checker    StalenessChecker
	dispatcher Dispatcher

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	// inRound is separate from mu: Stop holds mu while waiting for a round.
	inRound atomic.Bool
}

// NewRefreshScheduler creates a new scheduler instance
func NewRefreshScheduler(schedule string, labels []entities.Label, checker StalenessChecker, dispatcher Dispatcher) *RefreshScheduler {
	return &RefreshScheduler{
		labels:     labels,
		schedule:   schedule,
		checker:    checker,
		dispatcher: dispatcher,
		cron:       cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule, time.Now())
	log.Info().
		Str("schedule", s.schedule).
		Str("description", CronDescription(s.schedule)).
		Time("next_run", *nextRun).
		Msg("refresh scheduler started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running round
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Info().Msg("refresh scheduler stopped")
}

// IsRunning returns whether the scheduler is active
func (s *RefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next round will occur
func (s *RefreshScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// RunOnce dispatches a refresh for every stale label and returns the labels
// it dispatched. Overlapping rounds are skipped.
func (s *RefreshScheduler) RunOnce(ctx context.Context) []entities.Label {
	if !s.inRound.CompareAndSwap(false, true) {
		log.Debug().Msg("refresh round skipped, previous round still running")
		return nil
	}
	defer s.inRound.Store(false)

	var dispatched []entities.Label
	for _, label := range s.labels {
		if ctx.Err() != nil {
			break
		}
		if s.checker.Initialize(ctx, label) == mediator.SkipInitialRefresh {
			continue
		}
		if err := s.dispatcher.Dispatch(ctx, label); err != nil {
			log.Error().Err(err).Str("label", label.String()).Msg("could not dispatch refresh")
			continue
		}
		dispatched = append(dispatched, label)
	}

	if len(dispatched) > 0 {
		log.Info().Int("labels", len(dispatched)).Msg("refresh round dispatched")
	}
	return dispatched
}
