package foodlogs

import (
	"fmt"

	"gorm.io/gorm"
)

// Init migrates food_logs. The users table must already exist.
func Init(d *gorm.DB) error {
	if err := d.AutoMigrate(&FoodLog{}); err != nil {
		return fmt.Errorf("foodlogs: auto-migrate: %w", err)
	}
	return nil
}
