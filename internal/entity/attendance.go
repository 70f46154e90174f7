package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// Attendance holds one record per (class, student, date). Re-recording a day
// updates the existing row instead of inserting a second one.
type Attendance struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID    uuid.UUID  `gorm:"type:uuid;index:idx_class_student_date,unique;not null" json:"class_id"`
	StudentID  uuid.UUID  `gorm:"type:uuid;index:idx_class_student_date,unique;not null" json:"student_id"`
	Date       time.Time  `gorm:"type:date;index:idx_class_student_date,unique;not null" json:"date"`
	Status     string     `gorm:"size:20;not null;default:present" json:"status"`
	Notes      *string    `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy *uuid.UUID `gorm:"type:uuid" json:"recorded_by,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Student    *Profile   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
