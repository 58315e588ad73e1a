package exercise

import (
	"time"

	"github.com/gogofit/backend/internal/auth"
)

type ExerciseLog struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index:idx_exercise_logs_user_exercised,priority:1" json:"user_id"`
	User            *auth.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ActivityName    string     `gorm:"size:255;not null" json:"activity_name"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	CaloriesBurned  int        `gorm:"not null" json:"calories_burned"`
	ExercisedAt     time.Time  `gorm:"not null;index:idx_exercise_logs_user_exercised,priority:2" json:"exercised_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
