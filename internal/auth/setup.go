package auth

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Models lists the tables owned by this package.
func Models() []any {
	return []any{&User{}, &PersonalAccessToken{}, &PasswordResetToken{}}
}

func Init(d *gorm.DB) error {
	if err := d.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auth: auto-migrate: %w", err)
	}
	log.Info().Msg("Auth module initialized")
	return nil
}
