package db

import (
	"tipster/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.EventOutcome{},
		&models.Position{},
		&models.Expert{},
		&models.ExpertStatistics{},
		&models.SystemSetting{},
	)
}
