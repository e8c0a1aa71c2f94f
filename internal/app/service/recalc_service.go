package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"trending-score-service/internal/domain"
)

// RecalcService runs the full recalculation sweep: every active listing gets
// a fresh precise snapshot for every configured window.
type RecalcService struct {
	listings  domain.ListingRepository
	events    domain.EventRepository
	counters  domain.CounterRepository
	snapshots domain.SnapshotRepository

	aggregator  *domain.Aggregator
	windows     []domain.Window
	concurrency int

	cache  domain.Cache
	logger *zap.Logger

	mu      sync.RWMutex
	lastRun *SweepSummary
}

// NewRecalcService creates a new RecalcService. cache may be nil; when set,
// the feed cache is cleared after each successful sweep so the next feed read
// picks up the fresh snapshots.
func NewRecalcService(
	listings domain.ListingRepository,
	events domain.EventRepository,
	counters domain.CounterRepository,
	snapshots domain.SnapshotRepository,
	cfg domain.ScoringConfig,
	windows []domain.Window,
	concurrency int,
	cache domain.Cache,
	logger *zap.Logger,
) *RecalcService {
	if concurrency < 1 {
		concurrency = 1
	}
	if len(windows) == 0 {
		windows = domain.DefaultWindows()
	}

	return &RecalcService{
		listings:    listings,
		events:      events,
		counters:    counters,
		snapshots:   snapshots,
		aggregator:  domain.NewAggregator(cfg),
		windows:     windows,
		concurrency: concurrency,
		cache:       cache,
		logger:      logger,
	}
}

// SweepSummary holds the result of one recalculation sweep.
type SweepSummary struct {
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	Windows          []string      `json:"windows"`
	ListingsScored   int           `json:"listings_scored"`
	ListingsSkipped  int           `json:"listings_skipped"`
	SnapshotsWritten int           `json:"snapshots_written"`
}

// RecalcAll recomputes snapshots for all active listings across all windows.
//
// The listing set and the shared now timestamp are fixed once at the start,
// so a status flip mid-sweep cannot produce a half-old half-new ranking.
// Listings are scored concurrently up to the configured limit; a failure on
// one listing is logged and skipped without aborting the sweep.
func (s *RecalcService) RecalcAll(ctx context.Context) (*SweepSummary, error) {
	now := time.Now().UTC()
	start := time.Now()

	listings, err := s.listings.ListActive(ctx)
	if err != nil {
		s.logger.Error("listing active listings failed", zap.Error(err))
		return nil, err
	}

	// One event read covers every window: the widest lookback is loaded once
	// and Aggregate applies each window's cutoff itself.
	widest := s.windows[len(s.windows)-1]
	events, err := s.events.EventsForWindow(ctx, now.Add(-widest.Duration))
	if err != nil {
		s.logger.Error("loading engagement events failed", zap.Error(err))
		return nil, err
	}

	eventsByListing := make(map[string][]domain.EngagementEvent)
	for _, event := range events {
		eventsByListing[event.ListingID] = append(eventsByListing[event.ListingID], event)
	}

	s.logger.Info("starting recalculation sweep",
		zap.Int("listings", len(listings)),
		zap.Int("events", len(events)),
		zap.Int("windows", len(s.windows)),
		zap.Int("concurrency", s.concurrency),
	)

	var (
		wg      sync.WaitGroup
		sem     = make(chan struct{}, s.concurrency)
		mu      sync.Mutex
		written int
		skipped int
	)

	for _, listing := range listings {
		wg.Add(1)
		sem <- struct{}{}

		go func(l *domain.Listing) {
			defer wg.Done()
			defer func() { <-sem }()

			count, err := s.recalcListing(ctx, l, eventsByListing[l.ID], now, widest)

			mu.Lock()
			defer mu.Unlock()
			// Snapshots upserted before a mid-listing failure still count
			written += count
			if err != nil {
				skipped++
			}
		}(listing)
	}

	wg.Wait()

	if s.cache != nil && written > 0 {
		if err := s.cache.Clear(ctx); err != nil {
			s.logger.Warn("feed cache clear failed", zap.Error(err))
		}
	}

	windowNames := make([]string, len(s.windows))
	for i, w := range s.windows {
		windowNames[i] = w.Name
	}

	summary := &SweepSummary{
		StartedAt:        now,
		Duration:         time.Since(start),
		Windows:          windowNames,
		ListingsScored:   len(listings) - skipped,
		ListingsSkipped:  skipped,
		SnapshotsWritten: written,
	}

	s.mu.Lock()
	s.lastRun = summary
	s.mu.Unlock()

	s.logger.Info("recalculation sweep completed",
		zap.Duration("duration", summary.Duration),
		zap.Int("listings_scored", summary.ListingsScored),
		zap.Int("listings_skipped", summary.ListingsSkipped),
		zap.Int("snapshots_written", summary.SnapshotsWritten),
	)

	return summary, nil
}

// recalcListing scores one listing across all windows, returning the number
// of snapshots written.
func (s *RecalcService) recalcListing(
	ctx context.Context,
	listing *domain.Listing,
	events []domain.EngagementEvent,
	now time.Time,
	widest domain.Window,
) (int, error) {
	records, err := s.counters.DirectRecords(ctx, listing.ID, now.Add(-widest.Duration))
	if err != nil {
		s.logger.Warn("loading direct records failed, skipping listing",
			zap.String("listing_id", listing.ID),
			zap.Error(err),
		)
		return 0, err
	}

	written := 0
	for _, window := range s.windows {
		snapshot, err := s.aggregator.Aggregate(listing, window, events, records, now)
		if err != nil {
			s.logger.Warn("scoring listing failed, skipping",
				zap.String("listing_id", listing.ID),
				zap.String("window", window.Name),
				zap.Error(err),
			)
			return written, err
		}

		if err := s.snapshots.Upsert(ctx, snapshot); err != nil {
			s.logger.Warn("snapshot upsert failed, skipping listing",
				zap.String("listing_id", listing.ID),
				zap.String("window", window.Name),
				zap.Error(err),
			)
			return written, err
		}
		written++
	}

	return written, nil
}

// LastRun returns the summary of the most recent sweep, or nil if none has
// completed yet.
func (s *RecalcService) LastRun() *SweepSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastRun
}
