// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"trending-score-service/internal/app/service"
	"trending-score-service/pkg/locker"
)

// RecalcScheduler runs the periodic recalculation sweep with distributed
// locking so only one instance recomputes snapshots at a time.
type RecalcScheduler struct {
	recalcService *service.RecalcService
	interval      time.Duration
	timeout       time.Duration
	logger        *zap.Logger
	locker        locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RecalcConfig holds recalculation scheduler configuration.
type RecalcConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// NewRecalcScheduler creates a new RecalcScheduler with distributed locking
// support.
func NewRecalcScheduler(
	recalcSvc *service.RecalcService,
	cfg RecalcConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *RecalcScheduler {
	return &RecalcScheduler{
		recalcService: recalcSvc,
		interval:      cfg.Interval,
		timeout:       cfg.Timeout,
		logger:        logger,
		locker:        locker,
	}
}

// Start begins the background recalculation job.
func (s *RecalcScheduler) Start(runOnStartup bool) {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting recalculation scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	s.wg.Add(1)
	go s.run(runOnStartup)
}

// Stop gracefully stops the scheduler.
func (s *RecalcScheduler) Stop() {
	s.logger.Info("stopping recalculation scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("recalculation scheduler stopped")
}

// run is the main loop of the scheduler.
func (s *RecalcScheduler) run(runOnStartup bool) {
	defer s.wg.Done()

	if runOnStartup {
		s.executeSweep()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.executeSweep()
		}
	}
}

// executeSweep performs one recalculation sweep with distributed locking and
// timeout.
//
// Locking behavior:
//   - Lock TTL = interval duration (cooldown model, not timeout)
//   - Success: lock held for the full interval to prevent duplicate sweeps
//   - Failure: lock released immediately to allow retry by another instance
func (s *RecalcScheduler) executeSweep() {
	const lockKey = "recalc:scheduler:lock"

	acquired, err := s.locker.Acquire(s.ctx, lockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire distributed lock", zap.Error(err))

		return
	}
	if !acquired {
		s.logger.Debug("another instance is running the sweep, skipping execution")

		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	summary, err := s.recalcService.RecalcAll(ctx)
	if err != nil {
		// Release lock immediately on error (allow immediate retry)
		if relErr := s.locker.Release(s.ctx, lockKey); relErr != nil {
			s.logger.Error("failed to release lock after sweep error", zap.Error(relErr))
		}
		s.logger.Warn("sweep failed, lock released for retry", zap.Error(err))

		return
	}

	// Lock expires naturally after the interval (cooldown period)
	s.logger.Info("sweep completed successfully, lock held for cooldown",
		zap.Int("snapshots_written", summary.SnapshotsWritten),
		zap.Int("listings_skipped", summary.ListingsSkipped),
		zap.Duration("cooldown", s.interval),
	)
}
