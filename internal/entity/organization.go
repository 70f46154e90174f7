package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization categories.
const (
	OrgCollege   = "college"
	OrgSchool    = "school"
	OrgCoaching  = "coaching"
	OrgInstitute = "institute"
	OrgTraining  = "training"
)

type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Category  string    `gorm:"size:30;not null" json:"category"`
	LogoURL   *string   `gorm:"type:text" json:"logo_url,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
