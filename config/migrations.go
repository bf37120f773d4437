package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/linkfolio/linkfolio-backend/models"
	"gorm.io/gorm"
)

func GetMigrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20260301_init_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.User{},
					&models.Link{},
					&models.Click{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				// Drop tables in reverse dependency order
				return tx.Migrator().DropTable("clicks", "links", "users")
			},
		},
		{
			ID: "20260315_click_aggregation_indexes",
			Migrate: func(tx *gorm.DB) error {
				// Composite indexes matching the aggregation query shapes:
				// per-user and per-link windows filtered on created_at.
				return tx.Exec(`
					CREATE INDEX IF NOT EXISTS idx_clicks_user_created ON clicks(user_id, created_at);
					CREATE INDEX IF NOT EXISTS idx_clicks_link_created ON clicks(link_id, created_at);
				`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec(`
					DROP INDEX IF EXISTS idx_clicks_user_created;
					DROP INDEX IF EXISTS idx_clicks_link_created;
				`).Error
			},
		},
		{
			ID: "20260402_link_og_metadata_columns",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`
					ALTER TABLE links
					ADD COLUMN IF NOT EXISTS og_title VARCHAR(300),
					ADD COLUMN IF NOT EXISTS og_description VARCHAR(500),
					ADD COLUMN IF NOT EXISTS og_image TEXT,
					ADD COLUMN IF NOT EXISTS og_checked_at TIMESTAMP
				`).Error; err != nil {
					return err
				}

				// Partial index so the staleness sweep only scans rows that
				// have been checked at least once.
				return tx.Exec(`
					CREATE INDEX IF NOT EXISTS idx_links_og_checked_at
					ON links(og_checked_at)
					WHERE og_checked_at IS NOT NULL
				`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Exec(`
					DROP INDEX IF EXISTS idx_links_og_checked_at
				`).Error; err != nil {
					return err
				}

				return tx.Exec(`
					ALTER TABLE links
					DROP COLUMN IF EXISTS og_title,
					DROP COLUMN IF EXISTS og_description,
					DROP COLUMN IF EXISTS og_image,
					DROP COLUMN IF EXISTS og_checked_at
				`).Error
			},
		},
		{
			ID: "20260410_public_read_index",
			Migrate: func(tx *gorm.DB) error {
				// The public resolver reads active links ordered by display_order.
				return tx.Exec(`
					CREATE INDEX IF NOT EXISTS idx_links_user_active_order
					ON links(user_id, display_order)
					WHERE active = true
				`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec(`DROP INDEX IF EXISTS idx_links_user_active_order`).Error
			},
		},
	}
}
