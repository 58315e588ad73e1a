package exercise

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("exercise: not found")

type Store struct {
	DB *gorm.DB
}

func NewStore(d *gorm.DB) *Store {
	return &Store{DB: d}
}

func (s *Store) ListBetween(ctx context.Context, userID uint, from, to time.Time) ([]ExerciseLog, error) {
	var out []ExerciseLog
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND exercised_at >= ? AND exercised_at < ?", userID, from, to).
		Order("exercised_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (s *Store) Get(ctx context.Context, id uint) (ExerciseLog, error) {
	var l ExerciseLog
	err := s.DB.WithContext(ctx).First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ExerciseLog{}, ErrNotFound
	}
	return l, err
}

func (s *Store) Create(ctx context.Context, l *ExerciseLog) error {
	return s.DB.WithContext(ctx).Create(l).Error
}

func (s *Store) Save(ctx context.Context, l *ExerciseLog) error {
	return s.DB.WithContext(ctx).Save(l).Error
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&ExerciseLog{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
