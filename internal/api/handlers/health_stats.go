package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pulsefit/pulsefit-server/internal/db/models"
	"gorm.io/gorm"
)

// ListHealthStatsHandler returns a user's health records ordered by date,
// optionally bounded by from/to query params (YYYY-MM-DD).
func ListHealthStatsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := db.Where("user_id = ?", chi.URLParam(r, "userID")).Order("date")

		if from := r.URL.Query().Get("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
				return
			}
			q = q.Where("date >= ?", t)
		}
		if to := r.URL.Query().Get("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
				return
			}
			q = q.Where("date <= ?", t)
		}

		var stats []models.HealthStat
		if err := q.Find(&stats).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list health stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func CreateHealthStatHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var stat models.HealthStat
		if err := json.NewDecoder(r.Body).Decode(&stat); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if stat.UserID == "" {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}

		stat.ID = uuid.New().String()
		if stat.Date.IsZero() {
			stat.Date = time.Now().UTC().Truncate(24 * time.Hour)
		}

		if err := db.Create(&stat).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create health stat")
			return
		}
		writeJSON(w, http.StatusCreated, stat)
	}
}

func GetHealthStatHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var stat models.HealthStat
		err := db.First(&stat, "id = ?", chi.URLParam(r, "id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "health stat not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load health stat")
			return
		}
		writeJSON(w, http.StatusOK, stat)
	}
}

func UpdateHealthStatHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var stat models.HealthStat
		err := db.First(&stat, "id = ?", chi.URLParam(r, "id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "health stat not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load health stat")
			return
		}

		// Decode over the loaded record so omitted fields keep their values.
		id, userID, createdAt := stat.ID, stat.UserID, stat.CreatedAt
		if err := json.NewDecoder(r.Body).Decode(&stat); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		stat.ID, stat.UserID, stat.CreatedAt = id, userID, createdAt

		if err := db.Save(&stat).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update health stat")
			return
		}
		writeJSON(w, http.StatusOK, stat)
	}
}

func DeleteHealthStatHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := db.Delete(&models.HealthStat{}, "id = ?", chi.URLParam(r, "id"))
		if res.Error != nil {
			writeError(w, http.StatusInternalServerError, "failed to delete health stat")
			return
		}
		if res.RowsAffected == 0 {
			writeError(w, http.StatusNotFound, "health stat not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Health stat deleted successfully"})
	}
}
