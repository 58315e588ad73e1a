package foodlogs

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("foodlogs: not found")

type Store struct {
	DB *gorm.DB
}

func NewStore(d *gorm.DB) *Store {
	return &Store{DB: d}
}

// ListBetween returns the logs of userID consumed in [from, to), oldest first.
func (s *Store) ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]FoodLog, error) {
	var out []FoodLog
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND consumed_at >= ? AND consumed_at < ?", userID, from, to).
		Order("consumed_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// Get loads a log regardless of owner. Callers check ownership.
func (s *Store) Get(ctx context.Context, id uint) (FoodLog, error) {
	var l FoodLog
	err := s.DB.WithContext(ctx).First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FoodLog{}, ErrNotFound
	}
	return l, err
}

func (s *Store) Create(ctx context.Context, l *FoodLog) error {
	return s.DB.WithContext(ctx).Create(l).Error
}

func (s *Store) Save(ctx context.Context, l *FoodLog) error {
	return s.DB.WithContext(ctx).Save(l).Error
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&FoodLog{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
