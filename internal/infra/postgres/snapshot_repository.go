package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trending-score-service/internal/domain"
)

// SnapshotRepository implements domain.SnapshotRepository using PostgreSQL.
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new PostgreSQL snapshot repository.
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert overwrites the snapshot for (listing_id, window_name) or inserts a
// new row. The ON CONFLICT target is the unique (listing_id, window_name)
// index, so
// repeated recomputation is idempotent and concurrent upserts for different
// listings never block each other; the database serializes writes to the
// same key (last write wins, which is safe because inputs are re-derived
// from the source of truth each run).
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot *domain.ScoreSnapshot) error {
	model := snapshotFromDomain(snapshot)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}, {Name: "window_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total",
			"sub_upvote", "sub_comment", "sub_guess",
			"sub_intro_request", "sub_intro_accepted",
			"status_multiplier", "calculated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("upserting score snapshot: %w", err)
	}

	return nil
}

// Get returns the live snapshot for a (listing, window) key, or nil.
func (r *SnapshotRepository) Get(ctx context.Context, listingID, window string) (*domain.ScoreSnapshot, error) {
	var model ScoreSnapshotModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND window_name = ?", listingID, window).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}

		return nil, fmt.Errorf("getting score snapshot: %w", err)
	}

	return model.ToDomain(), nil
}

// GetForListings returns the live snapshots for the given listings in one
// window, keyed by listing id.
func (r *SnapshotRepository) GetForListings(ctx context.Context, listingIDs []string, window string) (map[string]*domain.ScoreSnapshot, error) {
	if len(listingIDs) == 0 {
		return map[string]*domain.ScoreSnapshot{}, nil
	}

	var models []ScoreSnapshotModel
	err := r.db.WithContext(ctx).
		Where("listing_id IN ? AND window_name = ?", listingIDs, window).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("getting score snapshots: %w", err)
	}

	snapshots := make(map[string]*domain.ScoreSnapshot, len(models))
	for i := range models {
		snapshots[models[i].ListingID] = models[i].ToDomain()
	}

	return snapshots, nil
}
