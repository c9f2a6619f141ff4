// Package jobs runs scheduled maintenance tasks of the dispatch service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"courier-dispatch/internal/logx"
)

type offlineMarker interface {
	MarkOffline(ctx context.Context, before time.Time) (int64, error)
}

type notifier interface {
	Notify()
}

const defaultSweepTimeout = 5 * time.Second

// PresenceSweeper flips couriers that stopped reporting to offline and
// broadcasts the change when any courier was affected.
type PresenceSweeper struct {
	repo         offlineMarker
	hub          notifier
	interval     time.Duration
	offlineAfter time.Duration
	timeout      time.Duration
	now          func() time.Time
	cron         *cron.Cron
	logger       logx.Logger
}

// NewPresenceSweeper creates a sweeper. offlineAfter <= 0 disables it.
func NewPresenceSweeper(repo offlineMarker, hub notifier, interval, offlineAfter time.Duration, logger logx.Logger) *PresenceSweeper {
	if logger == nil {
		logger = logx.Nop()
	}
	return &PresenceSweeper{
		repo:         repo,
		hub:          hub,
		interval:     interval,
		offlineAfter: offlineAfter,
		timeout:      defaultSweepTimeout,
		now:          func() time.Time { return time.Now().UTC() },
		cron:         cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:       logger.With(logx.String("component", "presence_sweeper")),
	}
}

// Enabled reports whether the sweeper has anything to do.
func (s *PresenceSweeper) Enabled() bool {
	return s.offlineAfter > 0 && s.interval > 0
}

// Start schedules the sweep. It is a no-op when the sweeper is disabled.
func (s *PresenceSweeper) Start() error {
	if !s.Enabled() {
		s.logger.Info("presence sweeper disabled")
		return nil
	}
	spec := "@every " + s.interval.String()
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("schedule presence sweep %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("presence sweeper started",
		logx.Duration("interval", s.interval),
		logx.Duration("offline_after", s.offlineAfter),
	)
	return nil
}

// Stop unschedules the sweep and waits for a running one to finish or ctx to end.
func (s *PresenceSweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *PresenceSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("presence sweep failed", logx.Err(err))
	}
}

// Sweep marks silent couriers offline once and returns how many changed.
func (s *PresenceSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.offlineAfter)
	n, err := s.repo.MarkOffline(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.hub.Notify()
		s.logger.Info("couriers marked offline",
			logx.Int64("count", n),
			logx.Time("cutoff", cutoff),
		)
	}
	return n, nil
}
