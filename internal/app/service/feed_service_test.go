package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trending-score-service/internal/domain"
)

const testMaxAge = 30 * time.Minute

func newFeedService(listings *fakeListingRepo, events *fakeEventRepo, counters *fakeCounterRepo, snapshots *fakeSnapshotRepo, cache domain.Cache) *FeedService {
	return NewFeedService(
		listings, events, counters, snapshots,
		domain.DefaultScoringConfig(), testWindows(), testMaxAge,
		cache, 2*time.Minute, zap.NewNop(),
	)
}

func TestFeed_FreshSnapshotUsesPreciseScore(t *testing.T) {
	now := time.Now().UTC()
	created := now.Add(-72 * time.Hour)

	listings := newFakeListingRepo(
		domain.FeedSource{Listing: testListing("a", domain.VerificationVerified, domain.StageMakingMoney, created)},
	)
	snapshots := newFakeSnapshotRepo()
	require.NoError(t, snapshots.Upsert(context.Background(), &domain.ScoreSnapshot{
		ListingID:    "a",
		Window:       "24h",
		Total:        321.5,
		CalculatedAt: now.Add(-5 * time.Minute),
	}))

	svc := newFeedService(listings, &fakeEventRepo{}, newFakeCounterRepo(), snapshots, nil)

	result, err := svc.Feed(context.Background(), domain.DefaultFeedParams())
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	assert.Equal(t, 321.5, result.Items[0].Score)
	assert.Equal(t, domain.StrategyPreciseBatch, result.Items[0].Strategy)
}

func TestFeed_StaleSnapshotFallsBackToEstimate(t *testing.T) {
	now := time.Now().UTC()
	created := now.Add(-72 * time.Hour)

	listings := newFakeListingRepo(
		domain.FeedSource{
			Listing: testListing("a", domain.VerificationUnverified, domain.StageMakingMoney, created),
			Counts:  domain.EngagementCounts{Upvotes: 10, Comments: 4},
		},
	)
	snapshots := newFakeSnapshotRepo()
	require.NoError(t, snapshots.Upsert(context.Background(), &domain.ScoreSnapshot{
		ListingID:    "a",
		Window:       "24h",
		Total:        500,
		CalculatedAt: now.Add(-2 * time.Hour), // beyond max age
	}))

	svc := newFeedService(listings, &fakeEventRepo{}, newFakeCounterRepo(), snapshots, nil)

	result, err := svc.Feed(context.Background(), domain.DefaultFeedParams())
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	assert.Equal(t, domain.StrategyFastEstimate, result.Items[0].Strategy)
	assert.NotEqual(t, 500.0, result.Items[0].Score)
	assert.Greater(t, result.Items[0].Score, 0.0)
}

func TestFeed_MissingSnapshotUsesEstimate(t *testing.T) {
	now := time.Now().UTC()
	created := now.Add(-72 * time.Hour)

	listings := newFakeListingRepo(
		domain.FeedSource{
			Listing: testListing("a", domain.VerificationUnverified, domain.StageMakingMoney, created),
			Counts:  domain.EngagementCounts{Upvotes: 3},
		},
	)

	svc := newFeedService(listings, &fakeEventRepo{}, newFakeCounterRepo(), newFakeSnapshotRepo(), nil)

	result, err := svc.Feed(context.Background(), domain.DefaultFeedParams())
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, domain.StrategyFastEstimate, result.Items[0].Strategy)
}

func TestFeed_SortsByScore(t *testing.T) {
	now := time.Now().UTC()
	created := now.Add(-72 * time.Hour)

	listings := newFakeListingRepo(
		domain.FeedSource{Listing: testListing("low", domain.VerificationUnverified, domain.StageMakingMoney, created)},
		domain.FeedSource{Listing: testListing("high", domain.VerificationUnverified, domain.StageMakingMoney, created)},
		domain.FeedSource{Listing: testListing("mid", domain.VerificationUnverified, domain.StageMakingMoney, created)},
	)
	snapshots := newFakeSnapshotRepo()
	for id, score := range map[string]float64{"low": 10, "mid": 50, "high": 90} {
		require.NoError(t, snapshots.Upsert(context.Background(), &domain.ScoreSnapshot{
			ListingID:    id,
			Window:       "24h",
			Total:        score,
			CalculatedAt: now,
		}))
	}

	svc := newFeedService(listings, &fakeEventRepo{}, newFakeCounterRepo(), snapshots, nil)

	result, err := svc.Feed(context.Background(), domain.DefaultFeedParams())
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "high", result.Items[0].Listing.ID)
	assert.Equal(t, "mid", result.Items[1].Listing.ID)
	assert.Equal(t, "low", result.Items[2].Listing.ID)

	// Ascending flips the order
	params := domain.DefaultFeedParams()
	params.SortOrder = domain.SortOrderAsc
	result, err = svc.Feed(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "low", result.Items[0].Listing.ID)
}

func TestFeed_Pagination(t *testing.T) {
	now := time.Now().UTC()
	created := now.Add(-72 * time.Hour)

	sources := make([]domain.FeedSource, 0, 5)
	snapshots := newFakeSnapshotRepo()
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		sources = append(sources, domain.FeedSource{
			Listing: testListing(id, domain.VerificationUnverified, domain.StageMakingMoney, created),
		})
		require.NoError(t, snapshots.Upsert(context.Background(), &domain.ScoreSnapshot{
			ListingID:    id,
			Window:       "24h",
			Total:        float64(100 - i*10),
			CalculatedAt: now,
		}))
	}
	listings := newFakeListingRepo(sources...)

	svc := newFeedService(listings, &fakeEventRepo{}, newFakeCounterRepo(), snapshots, nil)

	params := domain.FeedParams{Window: "24h", Page: 2, PageSize: 2}
	result, err := svc.Feed(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "c", result.Items[0].Listing.ID)
	assert.Equal(t, "d", result.Items[1].Listing.ID)

	// Past the end returns an empty page, not an error
	params.Page = 9
	result, err = svc.Feed(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestFeed_UnknownWindow(t *testing.T) {
	svc := newFeedService(newFakeListingRepo(), &fakeEventRepo{}, newFakeCounterRepo(), newFakeSnapshotRepo(), nil)

	params := domain.FeedParams{Window: "90d"}
	_, err := svc.Feed(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown window")
}

func TestFeed_CacheRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	created := now.Add(-72 * time.Hour)

	listings := newFakeListingRepo(
		domain.FeedSource{Listing: testListing("a", domain.VerificationUnverified, domain.StageMakingMoney, created)},
	)
	snapshots := newFakeSnapshotRepo()
	require.NoError(t, snapshots.Upsert(context.Background(), &domain.ScoreSnapshot{
		ListingID:    "a",
		Window:       "24h",
		Total:        42,
		CalculatedAt: now,
	}))
	cache := newFakeCache()

	svc := newFeedService(listings, &fakeEventRepo{}, newFakeCounterRepo(), snapshots, cache)

	first, err := svc.Feed(context.Background(), domain.DefaultFeedParams())
	require.NoError(t, err)

	// Drop the backing data: a second read must come from the cache
	listings.sources = nil

	second, err := svc.Feed(context.Background(), domain.DefaultFeedParams())
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	require.Len(t, second.Items, 1)
	assert.Equal(t, 42.0, second.Items[0].Score)
}

func TestGetScore_NotFound(t *testing.T) {
	svc := newFeedService(newFakeListingRepo(), &fakeEventRepo{}, newFakeCounterRepo(), newFakeSnapshotRepo(), nil)

	snap, err := svc.GetScore(context.Background(), "missing", "24h")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestGetScore_StaleSnapshotRecomputedAndWrittenThrough(t *testing.T) {
	now := time.Now().UTC()
	created := now.Add(-72 * time.Hour)

	listings := newFakeListingRepo(
		domain.FeedSource{Listing: testListing("a", domain.VerificationVerified, domain.StageMakingMoney, created)},
	)
	events := &fakeEventRepo{events: []domain.EngagementEvent{
		{ListingID: "a", Kind: domain.EventUpvote, Timestamp: now.Add(-1 * time.Hour)},
		{ListingID: "a", Kind: domain.EventComment, Timestamp: now.Add(-3 * time.Hour)},
	}}
	snapshots := newFakeSnapshotRepo()
	require.NoError(t, snapshots.Upsert(context.Background(), &domain.ScoreSnapshot{
		ListingID:    "a",
		Window:       "24h",
		Total:        999,
		CalculatedAt: now.Add(-24 * time.Hour),
	}))
	upsertsBefore := snapshots.upserts

	svc := newFeedService(listings, events, newFakeCounterRepo(), snapshots, nil)

	snap, err := svc.GetScore(context.Background(), "a", "24h")
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.NotEqual(t, 999.0, snap.Total)
	assert.Greater(t, snap.Total, 0.0)
	assert.Equal(t, 1.5, snap.StatusMultiplier)
	assert.Equal(t, upsertsBefore+1, snapshots.upserts)

	// The stored snapshot now matches what was returned
	stored, _ := snapshots.Get(context.Background(), "a", "24h")
	assert.Equal(t, snap, stored)
}

func TestGetScore_FreshSnapshotReturnedAsIs(t *testing.T) {
	now := time.Now().UTC()
	created := now.Add(-72 * time.Hour)

	listings := newFakeListingRepo(
		domain.FeedSource{Listing: testListing("a", domain.VerificationUnverified, domain.StageMakingMoney, created)},
	)
	snapshots := newFakeSnapshotRepo()
	require.NoError(t, snapshots.Upsert(context.Background(), &domain.ScoreSnapshot{
		ListingID:    "a",
		Window:       "7d",
		Total:        77.7,
		CalculatedAt: now.Add(-time.Minute),
	}))

	svc := newFeedService(listings, &fakeEventRepo{}, newFakeCounterRepo(), snapshots, nil)

	snap, err := svc.GetScore(context.Background(), "a", "7d")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 77.7, snap.Total)
}
