package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Class struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID    uuid.UUID `gorm:"type:uuid;index;not null" json:"teacher_id"`
	Name         string    `gorm:"size:150;not null" json:"name"`
	Subject      string    `gorm:"size:100;not null" json:"subject"`
	GradeLevel   *string   `gorm:"size:30" json:"grade_level,omitempty"`
	RoomNumber   *string   `gorm:"size:30" json:"room_number,omitempty"`
	Description  *string   `gorm:"type:text" json:"description,omitempty"`
	Schedule     *string   `gorm:"type:jsonb" json:"schedule,omitempty"`
	AcademicYear string    `gorm:"size:20;not null" json:"academic_year"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Enrollment statuses. Dropping never deletes the row; the status flips to
// dropped so attendance and grade history stays attached to something.
const (
	EnrollmentActive  = "active"
	EnrollmentDropped = "dropped"
)

type ClassEnrollment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID    uuid.UUID `gorm:"type:uuid;index;not null" json:"class_id"`
	StudentID  uuid.UUID `gorm:"type:uuid;index;not null" json:"student_id"`
	Status     string    `gorm:"size:20;not null;default:active" json:"status"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`
	Student    *Profile  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (e *ClassEnrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
