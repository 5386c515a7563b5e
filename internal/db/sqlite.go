package db

import (
	"github.com/glebarez/sqlite"
	"github.com/pulsefit/pulsefit-server/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB initializes the SQLite database connection and runs migrations.
func InitDB(dbPath string) (*gorm.DB, error) {
	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate all models
	if err := database.AutoMigrate(
		&models.User{},
		&models.HealthStat{},
		&models.FitbitToken{},
	); err != nil {
		return nil, err
	}

	return database, nil
}
