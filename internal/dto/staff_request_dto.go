package dto

import (
	"time"

	"github.com/noah-isme/maestro-api/internal/models"
)

// StaffRequestCreateRequest is the payload a mentor submits to join a
// classroom's teaching staff.
type StaffRequestCreateRequest struct {
	MentorID    uint   `json:"mentor_id" validate:"required,gt=0"`
	ClassroomID uint   `json:"classroom_id" validate:"required,gt=0"`
	Message     string `json:"message" validate:"required,min=10"`
}

// StaffRequestDecisionRequest decides a pending staff request.
type StaffRequestDecisionRequest struct {
	Status     string `json:"status" validate:"required,oneof=approved rejected"`
	AdminNotes string `json:"admin_notes" validate:"omitempty,max=2000"`
}

// StaffRequestResponse serializes a staff request for API clients.
type StaffRequestResponse struct {
	ID          uint       `json:"id"`
	MentorID    uint       `json:"mentor_id"`
	ClassroomID uint       `json:"classroom_id"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	AdminNotes  string     `json:"admin_notes,omitempty"`
	ReviewedBy  *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewStaffRequestResponse converts the model into its API representation.
func NewStaffRequestResponse(req models.StaffRequest) StaffRequestResponse {
	return StaffRequestResponse{
		ID:          req.ID,
		MentorID:    req.MentorID,
		ClassroomID: req.ClassroomID,
		Message:     req.Message,
		Status:      string(req.Status),
		AdminNotes:  req.AdminNotes,
		ReviewedBy:  req.ReviewedBy,
		ReviewedAt:  req.ReviewedAt,
		CreatedAt:   req.CreatedAt,
	}
}

// NewStaffRequestResponses converts a slice of models.
func NewStaffRequestResponses(reqs []models.StaffRequest) []StaffRequestResponse {
	out := make([]StaffRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, NewStaffRequestResponse(req))
	}
	return out
}
