package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"trending-score-service/internal/domain"
)

// EngagementRepository implements domain.EventRepository and
// domain.CounterRepository using PostgreSQL. The event log is the primary
// scoring input; the direct record tables are the cross-check fallback.
type EngagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new PostgreSQL engagement repository.
func NewEngagementRepository(db *gorm.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// EventsForWindow returns all engagement events at or after start, across
// all listings.
func (r *EngagementRepository) EventsForWindow(ctx context.Context, start time.Time) ([]domain.EngagementEvent, error) {
	var models []EngagementEventModel
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", start).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("fetching events for window: %w", err)
	}

	return toDomainEvents(models), nil
}

// EventsForListing returns a single listing's events at or after start.
func (r *EngagementRepository) EventsForListing(ctx context.Context, listingID string, start time.Time) ([]domain.EngagementEvent, error) {
	var models []EngagementEventModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND created_at >= ?", listingID, start).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("fetching events for listing: %w", err)
	}

	return toDomainEvents(models), nil
}

func toDomainEvents(models []EngagementEventModel) []domain.EngagementEvent {
	events := make([]domain.EngagementEvent, len(models))
	for i, m := range models {
		events[i] = m.ToDomain()
	}

	return events
}

// DirectRecords returns the in-window timestamps of direct engagement rows
// per category for one listing. Intro requests contribute their creation
// times to the intro-request category and their acceptance times to the
// intro-accepted category.
func (r *EngagementRepository) DirectRecords(ctx context.Context, listingID string, start time.Time) (domain.DirectRecords, error) {
	records := domain.DirectRecords{}

	type timestampQuery struct {
		category domain.Category
		model    interface{}
		column   string
	}

	queries := []timestampQuery{
		{domain.CategoryUpvote, &UpvoteModel{}, "created_at"},
		{domain.CategoryComment, &CommentModel{}, "created_at"},
		{domain.CategoryGuess, &GuessModel{}, "created_at"},
		{domain.CategoryIntroRequest, &IntroRequestModel{}, "created_at"},
	}

	for _, q := range queries {
		var timestamps []time.Time
		err := r.db.WithContext(ctx).
			Model(q.model).
			Where("listing_id = ? AND "+q.column+" >= ?", listingID, start).
			Pluck(q.column, &timestamps).Error
		if err != nil {
			return nil, fmt.Errorf("fetching %s records: %w", q.category, err)
		}
		if len(timestamps) > 0 {
			records[q.category] = timestamps
		}
	}

	// Accepted intros keyed by acceptance time
	var accepted []time.Time
	err := r.db.WithContext(ctx).
		Model(&IntroRequestModel{}).
		Where("listing_id = ? AND status = ? AND accepted_at >= ?", listingID, "accepted", start).
		Pluck("accepted_at", &accepted).Error
	if err != nil {
		return nil, fmt.Errorf("fetching accepted intro records: %w", err)
	}
	if len(accepted) > 0 {
		records[domain.CategoryIntroAccepted] = accepted
	}

	return records, nil
}
