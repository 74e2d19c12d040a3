package dto

import (
	"time"

	"github.com/noah-isme/maestro-api/internal/models"
)

// EnrollmentCreateRequest is the payload a student submits to enroll into a
// classroom. The classroom id comes from the route.
type EnrollmentCreateRequest struct {
	StudentID uint `json:"student_id" validate:"required,gt=0"`
}

// MembershipDecisionRequest admits or rejects a pending membership.
type MembershipDecisionRequest struct {
	Status string `json:"status" validate:"required,oneof=active rejected"`
}

// MembershipResponse serializes a membership for API clients.
type MembershipResponse struct {
	ID             uint       `json:"id"`
	ActorID        uint       `json:"actor_id"`
	ClassroomID    uint       `json:"classroom_id"`
	MembershipRole string     `json:"membership_role"`
	Status         string     `json:"status"`
	ReviewedBy     *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewMembershipResponse converts the model into its API representation.
func NewMembershipResponse(m models.Membership) MembershipResponse {
	return MembershipResponse{
		ID:             m.ID,
		ActorID:        m.ActorID,
		ClassroomID:    m.ClassroomID,
		MembershipRole: string(m.MembershipRole),
		Status:         string(m.Status),
		ReviewedBy:     m.ReviewedBy,
		ReviewedAt:     m.ReviewedAt,
		CreatedAt:      m.CreatedAt,
	}
}

// NewMembershipResponses converts a slice of models.
func NewMembershipResponses(memberships []models.Membership) []MembershipResponse {
	out := make([]MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, NewMembershipResponse(m))
	}
	return out
}
