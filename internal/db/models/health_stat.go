package models

import "time"

// HealthStat is one dated health record for a user, either entered manually
// or synced from Fitbit.
type HealthStat struct {
	ID     string    `gorm:"primaryKey" json:"id"` // UUID
	UserID string    `gorm:"index:idx_user_date" json:"userId"`
	Date   time.Time `gorm:"index:idx_user_date" json:"date"`

	RestingHeartRate int `json:"restingHeartRate,omitempty"`
	MaxHeartRate     int `json:"maxHeartRate,omitempty"`
	MinHeartRate     int `json:"minHeartRate,omitempty"`
	AverageHeartRate int `json:"averageHeartRate,omitempty"`

	SleepDuration int `json:"sleepDuration,omitempty"` // minutes
	SleepQuality  int `json:"sleepQuality,omitempty"`  // 1-10
	DeepSleepMins int `json:"deepSleepMinutes,omitempty"`
	RemSleepMins  int `json:"remSleepMinutes,omitempty"`

	Steps          int `json:"steps,omitempty"`
	CaloriesBurned int `json:"caloriesBurned,omitempty"`
	ActiveMinutes  int `json:"activeMinutes,omitempty"`

	Weight  float64 `json:"weight,omitempty"`  // kg
	BodyFat float64 `json:"bodyFat,omitempty"` // percentage

	SystolicBP  int `json:"systolicBP,omitempty"`
	DiastolicBP int `json:"diastolicBP,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
