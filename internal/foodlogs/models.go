package foodlogs

import (
	"time"

	"github.com/gogofit/backend/internal/auth"
)

// FoodLog is a snapshot of what a user ate. Nutrition values are copied
// at log time and never follow later catalog edits.
type FoodLog struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index:idx_food_logs_user_consumed,priority:1" json:"user_id"`
	User          *auth.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	Calories      float64    `gorm:"not null" json:"calories"`
	Fat           float64    `gorm:"not null" json:"fat"`
	SaturatedFat  float64    `gorm:"not null" json:"saturated_fat"`
	Carbohydrates float64    `gorm:"not null" json:"carbohydrates"`
	Protein       float64    `gorm:"not null" json:"protein"`
	Sugar         float64    `gorm:"not null" json:"sugar"`
	MealType      string     `gorm:"size:64;not null" json:"meal_type"`
	ConsumedAt    time.Time  `gorm:"not null;index:idx_food_logs_user_consumed,priority:2" json:"consumed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
