package notifications

import (
	"fmt"

	"gorm.io/gorm"
)

func Init(d *gorm.DB) error {
	if err := d.AutoMigrate(&Notification{}); err != nil {
		return fmt.Errorf("notifications: auto-migrate: %w", err)
	}
	return nil
}
