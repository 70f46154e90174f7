package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParentStudentLink authorizes a parent's read access to a student's
// records. Both sides are profile ids.
type ParentStudentLink struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID     uuid.UUID `gorm:"type:uuid;index:idx_parent_student,unique;not null" json:"parent_id"`
	StudentID    uuid.UUID `gorm:"type:uuid;index:idx_parent_student,unique;not null" json:"student_id"`
	Relationship string    `gorm:"size:30;not null;default:guardian" json:"relationship"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Student      *Profile  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (l *ParentStudentLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
