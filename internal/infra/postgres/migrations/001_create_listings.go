package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createListings creates the listings table with its indexes.
func createListings() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_listings",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS listings (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					name VARCHAR(200) NOT NULL,
					tags TEXT[],

					verification_status VARCHAR(20) NOT NULL DEFAULT 'UNVERIFIED',
					stage VARCHAR(20) NOT NULL DEFAULT 'MAKING_MONEY',

					verified_mrr_cents BIGINT DEFAULT 0,
					verified_at TIMESTAMP,

					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					launched_at TIMESTAMP
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_listings_verification_status ON listings(verification_status);",
				"CREATE INDEX IF NOT EXISTS idx_listings_stage ON listings(stage);",
			}
			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS listings;").Error
		},
	}
}
