package dto

import "time"

type UpsertGradeRequest struct {
	StudentID   string     `json:"student_id" binding:"required,uuid"`
	Score       *float64   `json:"score" binding:"omitempty,min=0"`
	Feedback    *string    `json:"feedback"`
	SubmittedAt *time.Time `json:"submitted_at"`
}
