package auth

import "time"

type User struct {
	ID            uint       `gorm:"primaryKey"`
	Name          string     `gorm:"size:255;not null"`
	Email         string     `gorm:"size:255;not null;uniqueIndex"`
	Password      string     `gorm:"size:255;not null"`
	Gender        *Gender    `gorm:"size:16"`
	BirthDate     *time.Time `gorm:"type:date"`
	Height        *float64
	Weight        *float64
	TargetWeight  *float64
	Goal          *Goal          `gorm:"size:32"`
	ActivityLevel *ActivityLevel `gorm:"size:32"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Tokens []PersonalAccessToken `gorm:"constraint:OnDelete:CASCADE"`
}

// PersonalAccessToken stores the SHA-256 of a bearer token secret.
type PersonalAccessToken struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"not null;index"`
	Name       string `gorm:"size:255;not null"`
	Token      string `gorm:"size:64;not null;uniqueIndex"`
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type PasswordResetToken struct {
	Email     string `gorm:"primaryKey;size:255"`
	Token     string `gorm:"size:64;not null"`
	CreatedAt time.Time
}

// Profile is the public view of a User. The password hash never leaves
// the package.
type Profile struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Gender        *Gender        `json:"gender"`
	BirthDate     *string        `json:"birth_date"`
	Height        *float64       `json:"height"`
	Weight        *float64       `json:"weight"`
	TargetWeight  *float64       `json:"target_weight"`
	Goal          *Goal          `json:"goal"`
	ActivityLevel *ActivityLevel `json:"activity_level"`
}

func (u User) Profile() Profile {
	p := Profile{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Gender:        u.Gender,
		Height:        u.Height,
		Weight:        u.Weight,
		TargetWeight:  u.TargetWeight,
		Goal:          u.Goal,
		ActivityLevel: u.ActivityLevel,
	}
	if u.BirthDate != nil {
		d := u.BirthDate.Format("2006-01-02")
		p.BirthDate = &d
	}
	return p
}
