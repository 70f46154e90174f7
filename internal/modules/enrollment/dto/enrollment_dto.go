package dto

import (
	"time"

	commonDto "anoa.com/akademia/pkg/dto"
	"github.com/google/uuid"
)

type EnrollRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}

// EnrollmentResponse is the composed record for roster views: the
// enrollment row plus the embedded minimal student projection.
type EnrollmentResponse struct {
	ID         uuid.UUID                `json:"id"`
	ClassID    uuid.UUID                `json:"class_id"`
	Status     string                   `json:"status"`
	EnrolledAt time.Time                `json:"enrolled_at"`
	Student    commonDto.ProfileSummary `json:"student"`
}

type RosterImportResult struct {
	Enrolled int      `json:"enrolled"`
	Skipped  []string `json:"skipped,omitempty"`
}
