package exercise

import (
	"fmt"

	"gorm.io/gorm"
)

func Init(d *gorm.DB) error {
	if err := d.AutoMigrate(&ExerciseLog{}); err != nil {
		return fmt.Errorf("exercise: auto-migrate: %w", err)
	}
	return nil
}
