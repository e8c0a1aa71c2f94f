// Package service provides application use cases.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"trending-score-service/internal/domain"
)

// FeedService assembles the score-sorted listing feed. Listings with a fresh
// snapshot are ranked by the stored precise score; the rest get an inline
// estimate so the feed never blocks on the recalculation job.
type FeedService struct {
	listings  domain.ListingRepository
	events    domain.EventRepository
	counters  domain.CounterRepository
	snapshots domain.SnapshotRepository

	aggregator *domain.Aggregator
	estimator  *domain.Estimator

	windows []domain.Window
	maxAge  time.Duration

	cache    domain.Cache
	cacheTTL time.Duration

	logger *zap.Logger
}

// NewFeedService creates a new FeedService. cache may be nil to disable
// feed caching.
func NewFeedService(
	listings domain.ListingRepository,
	events domain.EventRepository,
	counters domain.CounterRepository,
	snapshots domain.SnapshotRepository,
	cfg domain.ScoringConfig,
	windows []domain.Window,
	maxAge time.Duration,
	cache domain.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *FeedService {
	if len(windows) == 0 {
		windows = domain.DefaultWindows()
	}

	return &FeedService{
		listings:   listings,
		events:     events,
		counters:   counters,
		snapshots:  snapshots,
		aggregator: domain.NewAggregator(cfg),
		estimator:  domain.NewEstimator(cfg),
		windows:    windows,
		maxAge:     maxAge,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Feed returns one page of the score-sorted feed for the given parameters.
func (s *FeedService) Feed(ctx context.Context, params domain.FeedParams) (*domain.FeedResult, error) {
	params.Normalize()

	window, err := domain.FindWindow(s.windows, params.Window)
	if err != nil {
		return nil, err
	}

	cacheKey := feedCacheKey(params)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			var result domain.FeedResult
			if err := json.Unmarshal(cached, &result); err == nil {
				s.logger.Debug("feed cache hit", zap.String("key", cacheKey))
				return &result, nil
			}
			// Corrupt entry, fall through to rebuild
			_ = s.cache.Delete(ctx, cacheKey)
		}
	}

	sources, err := s.listings.ListFeedSources(ctx)
	if err != nil {
		s.logger.Error("listing feed sources failed", zap.Error(err))
		return nil, err
	}

	ids := make([]string, len(sources))
	for i, src := range sources {
		ids[i] = src.Listing.ID
	}

	snaps, err := s.snapshots.GetForListings(ctx, ids, window.Name)
	if err != nil {
		s.logger.Error("loading snapshots failed", zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]domain.FeedItem, 0, len(sources))
	estimated := 0

	for _, src := range sources {
		snap := snaps[src.Listing.ID]
		if snap.FreshAt(now, s.maxAge) {
			items = append(items, domain.FeedItem{
				Listing:      src.Listing,
				Score:        snap.Total,
				Strategy:     domain.StrategyPreciseBatch,
				CalculatedAt: snap.CalculatedAt,
			})
			continue
		}

		items = append(items, domain.FeedItem{
			Listing:      src.Listing,
			Score:        s.estimator.Estimate(src.Listing, src.Counts, now),
			Strategy:     domain.StrategyFastEstimate,
			CalculatedAt: now,
		})
		estimated++
	}

	sortFeedItems(items, params.SortOrder)

	total := len(items)
	page := paginate(items, params.Offset(), params.PageSize)
	result := domain.NewFeedResult(page, total, params)

	s.logger.Debug("feed assembled",
		zap.String("window", window.Name),
		zap.Int("total", total),
		zap.Int("estimated", estimated),
	)

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL); err != nil {
				s.logger.Warn("feed cache write failed", zap.Error(err))
			}
		}
	}

	return result, nil
}

// GetScore returns the score snapshot for one listing in one window. A stale
// or missing snapshot is recomputed on demand from the event log and written
// through, so the caller always sees a precise, current figure.
// Returns (nil, nil) when the listing does not exist.
func (s *FeedService) GetScore(ctx context.Context, listingID, windowName string) (*domain.ScoreSnapshot, error) {
	window, err := domain.FindWindow(s.windows, windowName)
	if err != nil {
		return nil, err
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, nil
	}

	snap, err := s.snapshots.Get(ctx, listingID, window.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if snap.FreshAt(now, s.maxAge) {
		return snap, nil
	}

	start := now.Add(-window.Duration)

	events, err := s.events.EventsForListing(ctx, listingID, start)
	if err != nil {
		return nil, err
	}

	records, err := s.counters.DirectRecords(ctx, listingID, start)
	if err != nil {
		return nil, err
	}

	fresh, err := s.aggregator.Aggregate(listing, window, events, records, now)
	if err != nil {
		return nil, err
	}

	if err := s.snapshots.Upsert(ctx, fresh); err != nil {
		s.logger.Warn("snapshot write-through failed",
			zap.String("listing_id", listingID),
			zap.Error(err),
		)
	}

	return fresh, nil
}

// Windows returns the configured score windows.
func (s *FeedService) Windows() []domain.Window {
	return s.windows
}

func feedCacheKey(params domain.FeedParams) string {
	return fmt.Sprintf("feed:%s:%s:%d:%d",
		params.Window, params.SortOrder, params.Page, params.PageSize)
}

// sortFeedItems orders items by score with listing id as a deterministic
// tie-breaker.
func sortFeedItems(items []domain.FeedItem, order domain.SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			if order == domain.SortOrderAsc {
				return items[i].Score < items[j].Score
			}
			return items[i].Score > items[j].Score
		}

		return items[i].Listing.ID < items[j].Listing.ID
	})
}

func paginate(items []domain.FeedItem, offset, size int) []domain.FeedItem {
	if offset >= len(items) {
		return []domain.FeedItem{}
	}

	end := offset + size
	if end > len(items) {
		end = len(items)
	}

	return items[offset:end]
}
