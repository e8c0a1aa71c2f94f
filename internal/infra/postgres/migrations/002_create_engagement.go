package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createEngagement creates the append-only event log and the direct
// engagement record tables (the counter sources).
func createEngagement() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_create_engagement",
		Migrate: func(tx *gorm.DB) error {
			statements := []string{
				`CREATE TABLE IF NOT EXISTS engagement_events (
					id BIGSERIAL PRIMARY KEY,
					listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
					user_id UUID NOT NULL,
					kind VARCHAR(50) NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);`,
				`CREATE INDEX IF NOT EXISTS idx_events_listing_time ON engagement_events(listing_id, created_at);`,
				`CREATE INDEX IF NOT EXISTS idx_events_created_at ON engagement_events(created_at);`,

				`CREATE TABLE IF NOT EXISTS upvotes (
					id BIGSERIAL PRIMARY KEY,
					listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
					user_id UUID NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);`,
				`CREATE INDEX IF NOT EXISTS idx_upvotes_listing ON upvotes(listing_id);`,

				`CREATE TABLE IF NOT EXISTS comments (
					id BIGSERIAL PRIMARY KEY,
					listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
					user_id UUID NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);`,
				`CREATE INDEX IF NOT EXISTS idx_comments_listing ON comments(listing_id);`,

				`CREATE TABLE IF NOT EXISTS guesses (
					id BIGSERIAL PRIMARY KEY,
					listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
					user_id UUID NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);`,
				`CREATE INDEX IF NOT EXISTS idx_guesses_listing ON guesses(listing_id);`,

				`CREATE TABLE IF NOT EXISTS intro_requests (
					id BIGSERIAL PRIMARY KEY,
					listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
					buyer_id UUID NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					accepted_at TIMESTAMP
				);`,
				`CREATE INDEX IF NOT EXISTS idx_intro_requests_listing ON intro_requests(listing_id);`,
			}

			for _, stmt := range statements {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			tables := []string{"intro_requests", "guesses", "comments", "upvotes", "engagement_events"}
			for _, table := range tables {
				if err := tx.Exec("DROP TABLE IF EXISTS " + table + ";").Error; err != nil {
					return err
				}
			}

			return nil
		},
	}
}
