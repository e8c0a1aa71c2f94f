package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"trending-score-service/internal/domain"
)

// ListingRepository implements domain.ListingRepository using PostgreSQL.
type ListingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new PostgreSQL listing repository.
func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// ListActive returns all listings eligible for scoring. The sweep reads this
// once per run so verification status and stage stay consistent across
// windows within the run.
func (r *ListingRepository) ListActive(ctx context.Context) ([]*domain.Listing, error) {
	var models []ListingModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing active listings: %w", err)
	}

	listings := make([]*domain.Listing, len(models))
	for i, m := range models {
		listings[i] = m.ToDomain()
	}

	return listings, nil
}

// feedRow is the scan target for the feed query: a listing plus its direct
// engagement counters, fetched in one round trip.
type feedRow struct {
	ListingModel
	UpvoteCount  int
	CommentCount int
	GuessCount   int
}

// ListFeedSources returns active listings joined with their direct counters.
// The counters ride along so the inline estimator never needs an extra
// data-store round trip during feed assembly.
func (r *ListingRepository) ListFeedSources(ctx context.Context) ([]domain.FeedSource, error) {
	var rows []feedRow
	err := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Select(`listings.*,
			(SELECT COUNT(*) FROM upvotes u WHERE u.listing_id = listings.id) AS upvote_count,
			(SELECT COUNT(*) FROM comments c WHERE c.listing_id = listings.id) AS comment_count,
			(SELECT COUNT(*) FROM guesses g WHERE g.listing_id = listings.id) AS guess_count`).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing feed sources: %w", err)
	}

	sources := make([]domain.FeedSource, len(rows))
	for i, row := range rows {
		sources[i] = domain.FeedSource{
			Listing: row.ListingModel.ToDomain(),
			Counts: domain.EngagementCounts{
				Upvotes:  row.UpvoteCount,
				Comments: row.CommentCount,
				Guesses:  row.GuessCount,
			},
		}
	}

	return sources, nil
}

// GetByID retrieves a single listing by id. Returns nil when not found.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var model ListingModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}

		return nil, fmt.Errorf("getting listing by id: %w", err)
	}

	return model.ToDomain(), nil
}

// MarkVerified records a provider-verified MRR figure and flips the
// verification status to VERIFIED.
func (r *ListingRepository) MarkVerified(ctx context.Context, listingID string, mrrCents int64, verifiedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Where("id = ?", listingID).
		Updates(map[string]interface{}{
			"verification_status": string(domain.VerificationVerified),
			"verified_mrr_cents":  mrrCents,
			"verified_at":         verifiedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("marking listing verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("marking listing verified: listing %s not found", listingID)
	}

	return nil
}
