package dto

import "github.com/google/uuid"

type CreateLinkRequest struct {
	ParentID     uuid.UUID `json:"parent_id" binding:"required"`
	StudentID    uuid.UUID `json:"student_id" binding:"required"`
	Relationship string    `json:"relationship" binding:"omitempty,oneof=mother father guardian"`
}
