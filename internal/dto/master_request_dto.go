package dto

import (
	"time"

	"github.com/noah-isme/maestro-api/internal/models"
)

// MasterRoleCreateRequest is the payload a mentor submits to apply for the
// master role. The minimum lengths guarantee reviewers receive substantive
// justification; they are a content-quality bar, not a security boundary.
type MasterRoleCreateRequest struct {
	MentorID          uint              `json:"mentor_id" validate:"required,gt=0"`
	Reason            string            `json:"reason" validate:"required,min=50"`
	Experience        string            `json:"experience" validate:"required,min=30"`
	PlannedClassrooms string            `json:"planned_classrooms" validate:"required,min=30"`
	Qualifications    map[string]string `json:"qualifications" validate:"omitempty,dive,keys,required,endkeys,required"`
}

// MasterRoleDecisionRequest decides a pending master-role request.
type MasterRoleDecisionRequest struct {
	Status     string `json:"status" validate:"required,oneof=approved rejected"`
	AdminNotes string `json:"admin_notes" validate:"omitempty,max=2000"`
}

// MasterRoleResponse serializes a master-role request for API clients.
type MasterRoleResponse struct {
	ID                uint                   `json:"id"`
	MentorID          uint                   `json:"mentor_id"`
	Reason            string                 `json:"reason"`
	Experience        string                 `json:"experience"`
	PlannedClassrooms string                 `json:"planned_classrooms"`
	Qualifications    map[string]interface{} `json:"qualifications,omitempty"`
	Status            string                 `json:"status"`
	AdminNotes        string                 `json:"admin_notes,omitempty"`
	ReviewedBy        *uint                  `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time             `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// NewMasterRoleResponse converts the model into its API representation.
func NewMasterRoleResponse(req models.MasterRoleRequest) MasterRoleResponse {
	return MasterRoleResponse{
		ID:                req.ID,
		MentorID:          req.MentorID,
		Reason:            req.Reason,
		Experience:        req.Experience,
		PlannedClassrooms: req.PlannedClassrooms,
		Qualifications:    req.Qualifications,
		Status:            string(req.Status),
		AdminNotes:        req.AdminNotes,
		ReviewedBy:        req.ReviewedBy,
		ReviewedAt:        req.ReviewedAt,
		CreatedAt:         req.CreatedAt,
	}
}

// NewMasterRoleResponses converts a slice of models.
func NewMasterRoleResponses(reqs []models.MasterRoleRequest) []MasterRoleResponse {
	out := make([]MasterRoleResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, NewMasterRoleResponse(req))
	}
	return out
}
