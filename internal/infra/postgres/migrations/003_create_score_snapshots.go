package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createScoreSnapshots creates the score snapshot cache table. The unique
// (listing_id, window_name) index is the upsert conflict target and enforces
// the at-most-one-live-snapshot invariant. The column is window_name, not
// window, which PostgreSQL reserves.
func createScoreSnapshots() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "003_create_score_snapshots",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS score_snapshots (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
					window_name VARCHAR(20) NOT NULL,

					total DECIMAL(12,2) DEFAULT 0,
					sub_upvote DECIMAL(12,2) DEFAULT 0,
					sub_comment DECIMAL(12,2) DEFAULT 0,
					sub_guess DECIMAL(12,2) DEFAULT 0,
					sub_intro_request DECIMAL(12,2) DEFAULT 0,
					sub_intro_accepted DECIMAL(12,2) DEFAULT 0,
					status_multiplier DECIMAL(6,4) DEFAULT 1,

					calculated_at TIMESTAMP NOT NULL,

					CONSTRAINT uq_snapshot_listing_window UNIQUE (listing_id, window_name)
				);
			`).Error
			if err != nil {
				return err
			}

			return tx.Exec(
				"CREATE INDEX IF NOT EXISTS idx_snapshots_window_total ON score_snapshots(window_name, total DESC);",
			).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS score_snapshots;").Error
		},
	}
}
