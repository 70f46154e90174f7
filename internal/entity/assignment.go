package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment types.
const (
	AssignmentHomework = "homework"
	AssignmentQuiz     = "quiz"
	AssignmentExam     = "exam"
	AssignmentProject  = "project"
	AssignmentLab      = "lab"
)

type Assignment struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"class_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	Type        string     `gorm:"size:20;not null;default:homework" json:"type"`
	MaxScore    float64    `gorm:"not null;default:100" json:"max_score"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Grade struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID  `gorm:"type:uuid;index:idx_assignment_student,unique;not null" json:"assignment_id"`
	StudentID    uuid.UUID  `gorm:"type:uuid;index:idx_assignment_student,unique;not null" json:"student_id"`
	Score        *float64   `json:"score,omitempty"`
	Feedback     *string    `gorm:"type:text" json:"feedback,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
	GradedBy     *uuid.UUID `gorm:"type:uuid" json:"graded_by,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Student      *Profile   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (g *Grade) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
