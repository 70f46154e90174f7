package dto

import "time"

type CreateAssignmentRequest struct {
	Title       string     `json:"title" binding:"required,min=2"`
	Description *string    `json:"description"`
	Type        string     `json:"type" binding:"omitempty,oneof=homework quiz exam project lab"`
	MaxScore    *float64   `json:"max_score" binding:"omitempty,min=1"`
	DueDate     *time.Time `json:"due_date"`
	// ClassID and CreatedBy are forced from the route and the actor.
}
