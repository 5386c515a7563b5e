package handlers

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/pulsefit/pulsefit-server/internal/db/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := database.AutoMigrate(&models.User{}, &models.HealthStat{}, &models.FitbitToken{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}
