package postgres

import (
	"time"

	"github.com/lib/pq"

	"trending-score-service/internal/domain"
)

// ListingModel is the GORM model for the listings table.
type ListingModel struct {
	ID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string         `gorm:"type:varchar(200);not null"`
	Tags pq.StringArray `gorm:"type:text[]"`

	VerificationStatus string `gorm:"type:varchar(20);not null;default:'UNVERIFIED';index"`
	Stage              string `gorm:"type:varchar(20);not null;default:'MAKING_MONEY';index"`

	VerifiedMRRCents int64      `gorm:"column:verified_mrr_cents;default:0"`
	VerifiedAt       *time.Time ``

	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	LaunchedAt *time.Time ``
}

// TableName returns the table name for ListingModel.
func (ListingModel) TableName() string {
	return "listings"
}

// ToDomain converts ListingModel to domain.Listing.
func (m *ListingModel) ToDomain() *domain.Listing {
	return &domain.Listing{
		ID:                 m.ID,
		Name:               m.Name,
		Tags:               m.Tags,
		VerificationStatus: domain.VerificationStatus(m.VerificationStatus),
		Stage:              domain.Stage(m.Stage),
		VerifiedMRRCents:   m.VerifiedMRRCents,
		VerifiedAt:         m.VerifiedAt,
		CreatedAt:          m.CreatedAt,
		LaunchedAt:         m.LaunchedAt,
	}
}

// EngagementEventModel is the GORM model for the append-only event log.
// Rows are inserted when the underlying user action occurs and are never
// updated or deleted.
type EngagementEventModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ListingID string    `gorm:"type:uuid;not null;index:idx_events_listing_time"`
	UserID    string    `gorm:"type:uuid;not null"`
	Kind      string    `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_events_listing_time;index"`
}

// TableName returns the table name for EngagementEventModel.
func (EngagementEventModel) TableName() string {
	return "engagement_events"
}

// ToDomain converts EngagementEventModel to domain.EngagementEvent.
func (m *EngagementEventModel) ToDomain() domain.EngagementEvent {
	return domain.EngagementEvent{
		ListingID: m.ListingID,
		UserID:    m.UserID,
		Kind:      domain.EventKind(m.Kind),
		Timestamp: m.CreatedAt,
	}
}

// UpvoteModel is a direct engagement record, the cross-check source for the
// upvote category.
type UpvoteModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ListingID string    `gorm:"type:uuid;not null;index"`
	UserID    string    `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (UpvoteModel) TableName() string { return "upvotes" }

// CommentModel is a direct engagement record for the comment category. Only
// the columns scoring reads are modeled; comment bodies live with the
// marketplace CRUD, outside this service.
type CommentModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ListingID string    `gorm:"type:uuid;not null;index"`
	UserID    string    `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (CommentModel) TableName() string { return "comments" }

// GuessModel is a direct engagement record for the revenue-guessing game.
type GuessModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ListingID string    `gorm:"type:uuid;not null;index"`
	UserID    string    `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (GuessModel) TableName() string { return "guesses" }

// IntroRequestModel is a direct engagement record for buyer introduction
// requests. AcceptedAt doubles as the timestamp source for the
// intro-accepted bonus category.
type IntroRequestModel struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	ListingID  string     `gorm:"type:uuid;not null;index"`
	BuyerID    string     `gorm:"type:uuid;not null"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt  time.Time  `gorm:"not null;index"`
	AcceptedAt *time.Time ``
}

func (IntroRequestModel) TableName() string { return "intro_requests" }

// ScoreSnapshotModel is the GORM model for persisted score snapshots, keyed
// uniquely by (listing_id, window).
type ScoreSnapshotModel struct {
	ID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ListingID string `gorm:"type:uuid;not null;index:idx_snapshot_listing_window,unique"`
	// Column is window_name because window is a reserved keyword in
	// PostgreSQL and the repository uses it in raw WHERE clauses.
	Window string `gorm:"column:window_name;type:varchar(20);not null;index:idx_snapshot_listing_window,unique"`

	Total            float64 `gorm:"type:decimal(12,2);default:0;index"`
	SubUpvote        float64 `gorm:"type:decimal(12,2);default:0"`
	SubComment       float64 `gorm:"type:decimal(12,2);default:0"`
	SubGuess         float64 `gorm:"type:decimal(12,2);default:0"`
	SubIntroRequest  float64 `gorm:"type:decimal(12,2);default:0"`
	SubIntroAccepted float64 `gorm:"type:decimal(12,2);default:0"`
	StatusMultiplier float64 `gorm:"type:decimal(6,4);default:1"`

	CalculatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for ScoreSnapshotModel.
func (ScoreSnapshotModel) TableName() string {
	return "score_snapshots"
}

// ToDomain converts ScoreSnapshotModel to domain.ScoreSnapshot.
func (m *ScoreSnapshotModel) ToDomain() *domain.ScoreSnapshot {
	return &domain.ScoreSnapshot{
		ListingID: m.ListingID,
		Window:    m.Window,
		Total:     m.Total,
		SubScores: domain.SubScores{
			Upvote:        m.SubUpvote,
			Comment:       m.SubComment,
			Guess:         m.SubGuess,
			IntroRequest:  m.SubIntroRequest,
			IntroAccepted: m.SubIntroAccepted,
		},
		StatusMultiplier: m.StatusMultiplier,
		CalculatedAt:     m.CalculatedAt,
	}
}

// snapshotFromDomain creates a ScoreSnapshotModel from domain.ScoreSnapshot.
func snapshotFromDomain(s *domain.ScoreSnapshot) *ScoreSnapshotModel {
	return &ScoreSnapshotModel{
		ListingID:        s.ListingID,
		Window:           s.Window,
		Total:            s.Total,
		SubUpvote:        s.SubScores.Upvote,
		SubComment:       s.SubScores.Comment,
		SubGuess:         s.SubScores.Guess,
		SubIntroRequest:  s.SubScores.IntroRequest,
		SubIntroAccepted: s.SubScores.IntroAccepted,
		StatusMultiplier: s.StatusMultiplier,
		CalculatedAt:     s.CalculatedAt,
	}
}
