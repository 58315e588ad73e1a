package foods

import "time"

// Food is a catalog entry. Nutrition values are per serving.
type Food struct {
	ID            uint      `gorm:"primaryKey" json:"id" yaml:"-"`
	Name          string    `gorm:"size:255;not null;uniqueIndex" json:"name" yaml:"name"`
	Calories      float64   `gorm:"not null" json:"calories" yaml:"calories"`
	Sugar         float64   `gorm:"not null" json:"sugar" yaml:"sugar"`
	Protein       float64   `gorm:"not null" json:"protein" yaml:"protein"`
	Carbohydrates float64   `gorm:"not null" json:"carbohydrates" yaml:"carbohydrates"`
	Fat           float64   `gorm:"not null" json:"fat" yaml:"fat"`
	SaturatedFat  float64   `gorm:"not null" json:"saturated_fat" yaml:"saturated_fat"`
	Image         *string   `gorm:"size:2048" json:"image" yaml:"image"`
	CreatedAt     time.Time `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"-"`
}
