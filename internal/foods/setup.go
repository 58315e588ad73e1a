package foods

import (
	"fmt"

	"gorm.io/gorm"
)

func Init(d *gorm.DB) error {
	if err := d.AutoMigrate(&Food{}); err != nil {
		return fmt.Errorf("foods: auto-migrate: %w", err)
	}
	return nil
}
