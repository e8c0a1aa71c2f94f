package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trending-score-service/internal/domain"
)

// In-memory fakes for the domain ports.

type fakeListingRepo struct {
	mu       sync.Mutex
	sources  []domain.FeedSource
	verified map[string]int64
	listErr  error
}

func newFakeListingRepo(sources ...domain.FeedSource) *fakeListingRepo {
	return &fakeListingRepo{
		sources:  sources,
		verified: make(map[string]int64),
	}
}

func (f *fakeListingRepo) ListActive(_ context.Context) ([]*domain.Listing, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	listings := make([]*domain.Listing, len(f.sources))
	for i, src := range f.sources {
		listings[i] = src.Listing
	}
	return listings, nil
}

func (f *fakeListingRepo) ListFeedSources(_ context.Context) ([]domain.FeedSource, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sources, nil
}

func (f *fakeListingRepo) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	for _, src := range f.sources {
		if src.Listing.ID == id {
			return src.Listing, nil
		}
	}
	return nil, nil
}

func (f *fakeListingRepo) MarkVerified(_ context.Context, listingID string, mrrCents int64, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, src := range f.sources {
		if src.Listing.ID == listingID {
			f.verified[listingID] = mrrCents
			return nil
		}
	}
	return fmt.Errorf("listing %s not found", listingID)
}

type fakeEventRepo struct {
	events []domain.EngagementEvent
	err    error
}

func (f *fakeEventRepo) EventsForWindow(_ context.Context, start time.Time) ([]domain.EngagementEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.EngagementEvent
	for _, e := range f.events {
		if !e.Timestamp.Before(start) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) EventsForListing(_ context.Context, listingID string, start time.Time) ([]domain.EngagementEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.EngagementEvent
	for _, e := range f.events {
		if e.ListingID == listingID && !e.Timestamp.Before(start) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeCounterRepo struct {
	records map[string]domain.DirectRecords
	failFor map[string]bool
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{
		records: make(map[string]domain.DirectRecords),
		failFor: make(map[string]bool),
	}
}

func (f *fakeCounterRepo) DirectRecords(_ context.Context, listingID string, _ time.Time) (domain.DirectRecords, error) {
	if f.failFor[listingID] {
		return nil, errors.New("counter read failed")
	}
	return f.records[listingID], nil
}

type fakeSnapshotRepo struct {
	mu         sync.Mutex
	snapshots  map[string]*domain.ScoreSnapshot
	upserts    int
	upsertErr  error
	failWindow string
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snapshots: make(map[string]*domain.ScoreSnapshot)}
}

func snapKey(listingID, window string) string {
	return listingID + "/" + window
}

func (f *fakeSnapshotRepo) Upsert(_ context.Context, snapshot *domain.ScoreSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.failWindow != "" && snapshot.Window == f.failWindow {
		return errors.New("upsert failed for window " + snapshot.Window)
	}
	f.snapshots[snapKey(snapshot.ListingID, snapshot.Window)] = snapshot
	f.upserts++
	return nil
}

func (f *fakeSnapshotRepo) Get(_ context.Context, listingID, window string) (*domain.ScoreSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.snapshots[snapKey(listingID, window)], nil
}

func (f *fakeSnapshotRepo) GetForListings(_ context.Context, listingIDs []string, window string) (map[string]*domain.ScoreSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]*domain.ScoreSnapshot)
	for _, id := range listingIDs {
		if snap, ok := f.snapshots[snapKey(id, window)]; ok {
			out[id] = snap
		}
	}
	return out, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	clears  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.entries[key], nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.entries, key)
	return nil
}

func (f *fakeCache) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = make(map[string][]byte)
	f.clears++
	return nil
}

type fakeVerifier struct {
	name      string
	records   []domain.VerifiedRevenue
	fetchErr  error
	healthErr error
}

func (f *fakeVerifier) Name() string { return f.name }

func (f *fakeVerifier) Fetch(_ context.Context) ([]domain.VerifiedRevenue, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records, nil
}

func (f *fakeVerifier) HealthCheck(_ context.Context) error {
	return f.healthErr
}

func testListing(id string, status domain.VerificationStatus, stage domain.Stage, createdAt time.Time) *domain.Listing {
	return &domain.Listing{
		ID:                 id,
		Name:               "listing " + id,
		VerificationStatus: status,
		Stage:              stage,
		CreatedAt:          createdAt,
	}
}
