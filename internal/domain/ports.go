package domain

import (
	"context"
	"time"
)

// ListingRepository defines listing persistence operations.
// Implementations: internal/infra/postgres/listing_repository.go
type ListingRepository interface {
	// ListActive returns all listings eligible for scoring, reflecting the
	// latest verification status and stage at the instant of the read.
	ListActive(ctx context.Context) ([]*Listing, error)

	// ListFeedSources returns active listings joined with their direct
	// engagement counters, in one query, for feed assembly.
	ListFeedSources(ctx context.Context) ([]FeedSource, error)

	// GetByID retrieves a single listing. Returns nil when not found.
	GetByID(ctx context.Context, id string) (*Listing, error)

	// MarkVerified records a provider-verified MRR figure and flips the
	// listing's verification status to VERIFIED.
	MarkVerified(ctx context.Context, listingID string, mrrCents int64, verifiedAt time.Time) error
}

// EventRepository defines read access to the append-only engagement event log.
type EventRepository interface {
	// EventsForWindow returns all events with timestamps at or after start,
	// across all listings.
	EventsForWindow(ctx context.Context, start time.Time) ([]EngagementEvent, error)

	// EventsForListing returns a single listing's events at or after start.
	EventsForListing(ctx context.Context, listingID string, start time.Time) ([]EngagementEvent, error)
}

// CounterRepository defines read access to direct engagement records, the
// fallback/cross-check source against the event log.
type CounterRepository interface {
	// DirectRecords returns per-category timestamps of direct rows (upvote
	// rows, comment rows, ...) for a listing at or after start.
	DirectRecords(ctx context.Context, listingID string, start time.Time) (DirectRecords, error)
}

// SnapshotRepository defines score snapshot persistence.
// Implementations: internal/infra/postgres/snapshot_repository.go
type SnapshotRepository interface {
	// Upsert overwrites the snapshot for (snapshot.ListingID, snapshot.Window)
	// or inserts it. Idempotent; concurrent upserts for different listings
	// must not block each other.
	Upsert(ctx context.Context, snapshot *ScoreSnapshot) error

	// Get returns the live snapshot for a (listing, window) key, or nil.
	Get(ctx context.Context, listingID, window string) (*ScoreSnapshot, error)

	// GetForListings returns the live snapshots for the given listings in one
	// window, keyed by listing id. Missing listings are absent from the map.
	GetForListings(ctx context.Context, listingIDs []string, window string) (map[string]*ScoreSnapshot, error)
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}

// VerifiedRevenue is the opaque output of a revenue verification provider:
// a verified MRR figure and the moment it was verified.
type VerifiedRevenue struct {
	ListingID  string
	MRRCents   int64
	VerifiedAt time.Time
}

// RevenueVerifier defines the interface to an external revenue verification
// provider. The scoring engine itself only ever consumes the resulting
// verification status on the listing.
// Implementations: internal/infra/verifier/stripe/, internal/infra/verifier/paddle/
type RevenueVerifier interface {
	// Name returns the unique identifier for this provider.
	Name() string

	// Fetch retrieves verified revenue figures from the provider.
	Fetch(ctx context.Context) ([]VerifiedRevenue, error)

	// HealthCheck verifies the provider is accessible.
	HealthCheck(ctx context.Context) error
}
