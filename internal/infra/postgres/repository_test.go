package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"trending-score-service/internal/domain"
	"trending-score-service/internal/infra/postgres/migrations"
)

const (
	listingA = "11111111-1111-4111-8111-111111111111"
	listingB = "22222222-2222-4222-8222-222222222222"
	userX    = "33333333-3333-4333-8333-333333333333"
)

// setupTestConn creates a PostgreSQL testcontainer and returns a connected
// GORM DB without any schema applied
//
// Prerequisites:
//   - Docker must be running
//   - OR skip integration tests with: go test -short
func setupTestConn(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: nil, // Silent logger for tests
	})
	require.NoError(t, err, "Failed to connect to test database")

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

// setupTestDB returns a connected GORM DB with the model schema applied.
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	db, cleanup := setupTestConn(t)

	err := db.AutoMigrate(
		&ListingModel{},
		&EngagementEventModel{},
		&UpvoteModel{},
		&CommentModel{},
		&GuessModel{},
		&IntroRequestModel{},
		&ScoreSnapshotModel{},
	)
	require.NoError(t, err, "Failed to run migrations")

	return db, cleanup
}

func seedListing(t *testing.T, db *gorm.DB, id string, status domain.VerificationStatus, stage domain.Stage) {
	t.Helper()

	err := db.Create(&ListingModel{
		ID:                 id,
		Name:               "Listing " + id[:8],
		Tags:               []string{"saas", "bootstrap"},
		VerificationStatus: string(status),
		Stage:              string(stage),
	}).Error
	require.NoError(t, err)
}

func testSnapshot(listingID, window string, total float64, at time.Time) *domain.ScoreSnapshot {
	return &domain.ScoreSnapshot{
		ListingID: listingID,
		Window:    window,
		Total:     total,
		SubScores: domain.SubScores{
			Upvote:  total / 2,
			Comment: total / 2,
		},
		StatusMultiplier: 1.0,
		CalculatedAt:     at,
	}
}

// TestMigrations_SnapshotRoundTrip applies the production DDL (not
// AutoMigrate) and exercises the snapshot read and write paths through the
// migrated schema, so any identifier the raw SQL uses is checked against the
// real PostgreSQL grammar.
func TestMigrations_SnapshotRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestConn(t)
	defer cleanup()

	require.NoError(t, migrations.Run(db), "Production migrations must apply cleanly")

	seedListing(t, db, listingA, domain.VerificationUnverified, domain.StageMakingMoney)

	repo := NewSnapshotRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, testSnapshot(listingA, "24h", 42, now)))

	snap, err := repo.Get(ctx, listingA, "24h")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 42.0, snap.Total)

	snaps, err := repo.GetForListings(ctx, []string{listingA}, "24h")
	require.NoError(t, err)
	assert.Contains(t, snaps, listingA)
}

// TestSnapshotUpsert_InsertThenOverwrite verifies that a second upsert for the
// same (listing, window) key leaves exactly one row holding the new values.
func TestSnapshotUpsert_InsertThenOverwrite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedListing(t, db, listingA, domain.VerificationUnverified, domain.StageMakingMoney)

	repo := NewSnapshotRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, repo.Upsert(ctx, testSnapshot(listingA, "24h", 100, now.Add(-time.Hour))))
	require.NoError(t, repo.Upsert(ctx, testSnapshot(listingA, "24h", 250, now)))

	var count int64
	require.NoError(t, db.Model(&ScoreSnapshotModel{}).
		Where("listing_id = ? AND window_name = ?", listingA, "24h").
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "Overwrite must not leave a second row")

	snap, err := repo.Get(ctx, listingA, "24h")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 250.0, snap.Total)
	assert.Equal(t, 125.0, snap.SubScores.Upvote)
}

// TestSnapshotGet_DistinctWindows verifies window isolation for one listing.
func TestSnapshotGet_DistinctWindows(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedListing(t, db, listingA, domain.VerificationUnverified, domain.StageMakingMoney)

	repo := NewSnapshotRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, testSnapshot(listingA, "24h", 10, now)))
	require.NoError(t, repo.Upsert(ctx, testSnapshot(listingA, "7d", 70, now)))

	short, err := repo.Get(ctx, listingA, "24h")
	require.NoError(t, err)
	long, err := repo.Get(ctx, listingA, "7d")
	require.NoError(t, err)

	assert.Equal(t, 10.0, short.Total)
	assert.Equal(t, 70.0, long.Total)
}

// TestSnapshotGetForListings verifies the batch read used by feed assembly.
func TestSnapshotGetForListings(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedListing(t, db, listingA, domain.VerificationUnverified, domain.StageMakingMoney)
	seedListing(t, db, listingB, domain.VerificationUnverified, domain.StageMakingMoney)

	repo := NewSnapshotRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, testSnapshot(listingA, "24h", 10, now)))
	// listingB deliberately has no snapshot

	snaps, err := repo.GetForListings(ctx, []string{listingA, listingB}, "24h")
	require.NoError(t, err)

	require.Contains(t, snaps, listingA)
	assert.Equal(t, 10.0, snaps[listingA].Total)
	assert.NotContains(t, snaps, listingB, "Missing listings are absent, not nil entries")
}

// TestMarkVerified verifies status flip and MRR write.
func TestMarkVerified(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedListing(t, db, listingA, domain.VerificationUnverified, domain.StageMakingMoney)

	repo := NewListingRepository(db)
	ctx := context.Background()
	verifiedAt := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, repo.MarkVerified(ctx, listingA, 420000, verifiedAt))

	listing, err := repo.GetByID(ctx, listingA)
	require.NoError(t, err)
	require.NotNil(t, listing)
	assert.True(t, listing.IsVerified())
	assert.Equal(t, int64(420000), listing.VerifiedMRRCents)

	// Unknown id is an error, not a silent no-op
	err = repo.MarkVerified(ctx, listingB, 100, verifiedAt)
	require.Error(t, err)
}

// TestListFeedSources verifies the single-round-trip counter join.
func TestListFeedSources(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedListing(t, db, listingA, domain.VerificationUnverified, domain.StageMakingMoney)
	seedListing(t, db, listingB, domain.VerificationUnverified, domain.StageForSale)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&UpvoteModel{ListingID: listingA, UserID: userX, CreatedAt: now}).Error)
	}
	require.NoError(t, db.Create(&CommentModel{ListingID: listingA, UserID: userX, CreatedAt: now}).Error)
	require.NoError(t, db.Create(&GuessModel{ListingID: listingB, UserID: userX, CreatedAt: now}).Error)

	repo := NewListingRepository(db)

	sources, err := repo.ListFeedSources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)

	byID := make(map[string]domain.FeedSource)
	for _, src := range sources {
		byID[src.Listing.ID] = src
	}

	assert.Equal(t, domain.EngagementCounts{Upvotes: 3, Comments: 1}, byID[listingA].Counts)
	assert.Equal(t, domain.EngagementCounts{Guesses: 1}, byID[listingB].Counts)
}

// TestEventsForWindow verifies the lookback cutoff and ordering.
func TestEventsForWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedListing(t, db, listingA, domain.VerificationUnverified, domain.StageMakingMoney)

	now := time.Now().UTC().Truncate(time.Microsecond)
	inWindow := now.Add(-2 * time.Hour)
	outOfWindow := now.Add(-48 * time.Hour)

	for _, row := range []EngagementEventModel{
		{ListingID: listingA, UserID: userX, Kind: "upvote", CreatedAt: inWindow},
		{ListingID: listingA, UserID: userX, Kind: "comment", CreatedAt: now.Add(-time.Hour)},
		{ListingID: listingA, UserID: userX, Kind: "upvote", CreatedAt: outOfWindow},
	} {
		require.NoError(t, db.Create(&row).Error)
	}

	repo := NewEngagementRepository(db)

	events, err := repo.EventsForWindow(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2, "Events before the cutoff must not be returned")

	// Ascending by timestamp
	assert.True(t, events[0].Timestamp.Before(events[1].Timestamp))
	assert.Equal(t, domain.EventUpvote, events[0].Kind)
}

// TestDirectRecords verifies the per-category counter timestamps, including
// accepted intros keyed on accepted_at.
func TestDirectRecords(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedListing(t, db, listingA, domain.VerificationUnverified, domain.StageMakingMoney)

	now := time.Now().UTC().Truncate(time.Microsecond)
	acceptedAt := now.Add(-time.Hour)

	require.NoError(t, db.Create(&UpvoteModel{ListingID: listingA, UserID: userX, CreatedAt: now.Add(-3 * time.Hour)}).Error)
	require.NoError(t, db.Create(&UpvoteModel{ListingID: listingA, UserID: userX, CreatedAt: now.Add(-30 * time.Hour)}).Error)
	require.NoError(t, db.Create(&CommentModel{ListingID: listingA, UserID: userX, CreatedAt: now.Add(-2 * time.Hour)}).Error)
	require.NoError(t, db.Create(&IntroRequestModel{
		ListingID: listingA, BuyerID: userX, Status: "pending",
		CreatedAt: now.Add(-4 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&IntroRequestModel{
		ListingID: listingA, BuyerID: userX, Status: "accepted",
		CreatedAt: now.Add(-6 * time.Hour), AcceptedAt: &acceptedAt,
	}).Error)

	repo := NewEngagementRepository(db)

	records, err := repo.DirectRecords(context.Background(), listingA, now.Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Len(t, records[domain.CategoryUpvote], 1, "Out-of-range upvote must be excluded")
	assert.Len(t, records[domain.CategoryComment], 1)
	assert.Empty(t, records[domain.CategoryGuess])
	// Both intro rows count as requests; only the accepted one carries the bonus
	assert.Len(t, records[domain.CategoryIntroRequest], 2)
	require.Len(t, records[domain.CategoryIntroAccepted], 1)
	assert.WithinDuration(t, acceptedAt, records[domain.CategoryIntroAccepted][0], time.Second)
}
