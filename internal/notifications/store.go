package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("notifications: not found")

type Store struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewStore(d *gorm.DB) *Store {
	return &Store{DB: d, Now: time.Now}
}

// Notify stores a notification for userID.
func (s *Store) Notify(ctx context.Context, userID uint, kind string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("notifications: encode data: %w", err)
	}
	n := Notification{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   kind,
		Data:   string(raw),
	}
	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("notifications: create: %w", err)
	}
	return nil
}

// Unread returns the unread notifications of userID, newest first.
func (s *Store) Unread(ctx context.Context, userID uint) ([]Notification, error) {
	var out []Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND read_at IS NULL", userID).
		Order("created_at DESC, id").
		Find(&out).Error
	return out, err
}

// MarkAsRead sets read_at on a notification owned by userID. Marking an
// already read notification keeps its original read_at.
func (s *Store) MarkAsRead(ctx context.Context, userID uint, id string) error {
	var n Notification
	err := s.DB.WithContext(ctx).First(&n, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if n.ReadAt != nil {
		return nil
	}
	now := s.Now().UTC().Truncate(time.Second)
	return s.DB.WithContext(ctx).Model(&n).Update("read_at", now).Error
}
