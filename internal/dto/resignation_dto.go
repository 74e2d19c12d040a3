package dto

import (
	"time"

	"github.com/noah-isme/maestro-api/internal/models"
)

// ResignationCreateRequest is the payload a staff mentor submits to leave a
// classroom's teaching team.
type ResignationCreateRequest struct {
	MentorID    uint   `json:"mentor_id" validate:"required,gt=0"`
	ClassroomID uint   `json:"classroom_id" validate:"required,gt=0"`
	Reason      string `json:"reason" validate:"required,min=10"`
}

// ResignationDecisionRequest decides a pending resignation request.
type ResignationDecisionRequest struct {
	Status      string `json:"status" validate:"required,oneof=approved rejected"`
	MasterNotes string `json:"master_notes" validate:"omitempty,max=2000"`
}

// ResignationResponse serializes a resignation request for API clients.
type ResignationResponse struct {
	ID          uint       `json:"id"`
	MentorID    uint       `json:"mentor_id"`
	ClassroomID uint       `json:"classroom_id"`
	Reason      string     `json:"reason"`
	MasterNotes string     `json:"master_notes,omitempty"`
	Status      string     `json:"status"`
	ReviewedBy  *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewResignationResponse converts the model into its API representation.
func NewResignationResponse(req models.ResignationRequest) ResignationResponse {
	return ResignationResponse{
		ID:          req.ID,
		MentorID:    req.MentorID,
		ClassroomID: req.ClassroomID,
		Reason:      req.Reason,
		MasterNotes: req.MasterNotes,
		Status:      string(req.Status),
		ReviewedBy:  req.ReviewedBy,
		ReviewedAt:  req.ReviewedAt,
		CreatedAt:   req.CreatedAt,
	}
}

// NewResignationResponses converts a slice of models.
func NewResignationResponses(reqs []models.ResignationRequest) []ResignationResponse {
	out := make([]ResignationResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, NewResignationResponse(req))
	}
	return out
}
