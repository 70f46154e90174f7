package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification outcome levels.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notification is a persisted record of a mutation outcome addressed to the
// actor who performed it: "class created", "failed to enroll student". It is
// also pushed live over Redis pub/sub to the websocket stream.
type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	EntityType string    `gorm:"size:50;not null" json:"entity_type"` // cache entity tag of the mutated table
	EntityID   uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	Level      string    `gorm:"size:10;not null" json:"level"` // success or error
	Message    string    `gorm:"type:text;not null" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
