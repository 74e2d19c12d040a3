package models

import "time"

// MembershipRole distinguishes students from teaching staff within a classroom.
type MembershipRole string

// Membership roles.
const (
	MembershipRoleStudent MembershipRole = "student"
	MembershipRoleStaff   MembershipRole = "staff"
)

// MembershipStatus tracks the admission state of a membership.
type MembershipStatus string

// Membership statuses.
const (
	MembershipStatusPending  MembershipStatus = "pending"
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusRejected MembershipStatus = "rejected"
)

// Membership is the durable relationship between an actor and a classroom.
// At most one non-rejected row may exist per (actor, classroom) pair — the
// partial unique index enforces that even when two enrollments for the same
// pair race. Rows are removed only when a resignation is approved.
type Membership struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	ActorID        uint             `gorm:"not null;index:idx_membership_pair;uniqueIndex:uniq_membership_live,where:status <> 'rejected'" json:"actor_id"`
	ClassroomID    uint             `gorm:"not null;index:idx_membership_pair;uniqueIndex:uniq_membership_live" json:"classroom_id"`
	MembershipRole MembershipRole   `gorm:"size:32;not null" json:"membership_role"`
	Status         MembershipStatus `gorm:"size:32;not null;default:pending" json:"status"`
	ReviewedBy     *uint            `json:"reviewed_by"`
	ReviewedAt     *time.Time       `json:"reviewed_at"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
