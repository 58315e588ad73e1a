package notifications

import (
	"encoding/json"
	"time"
)

// Notification is a per-user message. Data holds a JSON object.
type Notification struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    uint   `gorm:"not null;index"`
	Type      string `gorm:"size:255;not null"`
	Data      string `gorm:"type:text;not null"`
	ReadAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type View struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	ReadAt    *time.Time      `json:"read_at"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (n Notification) View() View {
	data := json.RawMessage(n.Data)
	if !json.Valid(data) {
		data = json.RawMessage("{}")
	}
	return View{
		ID:        n.ID,
		Type:      n.Type,
		Data:      data,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
