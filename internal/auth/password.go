package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gogofit/backend/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcryptCost is lowered by tests.
var bcryptCost = bcrypt.DefaultCost

var ErrEmailTaken = errors.New("auth: email already taken")

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(b), nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// checkPassword compares in constant time. A nil user is compared against
// a throwaway hash so unknown emails cost the same as wrong passwords.
func checkPassword(u *User, password string) bool {
	if u == nil {
		dummyOnce.Do(func() {
			dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gogofit-dummy-password"), bcryptCost)
		})
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func emailTaken(ctx context.Context, d *gorm.DB, email string, exceptID uint) (bool, error) {
	q := d.WithContext(ctx).Model(&User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateUser stores a bare account. It is used by operator tooling; the
// HTTP registration flow also issues a token.
func CreateUser(ctx context.Context, d *gorm.DB, name, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	taken, err := emailTaken(ctx, d, email, 0)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	u := User{Name: strings.TrimSpace(name), Email: email, Password: hash}
	if err := d.WithContext(ctx).Create(&u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("auth: create user: %w", err)
	}
	return u, nil
}
