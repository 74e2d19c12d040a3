package models

import (
	"time"

	"gorm.io/datatypes"
)

// RequestStatus is the shared lifecycle of every workflow request: created
// pending, decided exactly once, never re-entering pending.
type RequestStatus string

// Request statuses.
const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Terminal reports whether the status admits no further transition.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// MasterRoleRequest is a mentor's application to become a master (classroom
// owner). At most one pending request may exist per mentor; only an admin
// may decide it. Approval flips the mentor's master flag.
//
// The partial unique index makes the one-pending-per-mentor rule hold under
// concurrent submissions; the repository's pre-check alone does not, since
// two transactions can both count zero before either commits.
type MasterRoleRequest struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	MentorID          uint              `gorm:"not null;index;uniqueIndex:uniq_master_role_pending,where:status = 'pending'" json:"mentor_id"`
	Reason            string            `gorm:"type:text;not null" json:"reason"`
	Experience        string            `gorm:"type:text;not null" json:"experience"`
	PlannedClassrooms string            `gorm:"type:text;not null" json:"planned_classrooms"`
	Qualifications    datatypes.JSONMap `gorm:"type:json" json:"qualifications"`
	Status            RequestStatus     `gorm:"size:32;not null;default:pending;index" json:"status"`
	AdminNotes        string            `gorm:"type:text" json:"admin_notes"`
	ReviewedBy        *uint             `json:"reviewed_by"`
	ReviewedAt        *time.Time        `json:"reviewed_at"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// StaffRequest is a mentor's application to join a classroom's teaching
// staff. At most one pending request per (mentor, classroom) pair; only the
// classroom's owner may decide it. Approval creates or reactivates an active
// staff membership.
type StaffRequest struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	MentorID    uint          `gorm:"not null;index:idx_staff_request_pair;uniqueIndex:uniq_staff_request_pending,where:status = 'pending'" json:"mentor_id"`
	ClassroomID uint          `gorm:"not null;index:idx_staff_request_pair;uniqueIndex:uniq_staff_request_pending" json:"classroom_id"`
	Message     string        `gorm:"type:text;not null" json:"message"`
	Status      RequestStatus `gorm:"size:32;not null;default:pending;index" json:"status"`
	AdminNotes  string        `gorm:"type:text" json:"admin_notes"`
	ReviewedBy  *uint         `json:"reviewed_by"`
	ReviewedAt  *time.Time    `json:"reviewed_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ResignationRequest is a staff member's application to leave a classroom's
// teaching team. It requires an active staff membership both at submission
// and at decision time. Approval deletes the membership.
type ResignationRequest struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	MentorID    uint          `gorm:"not null;index:idx_resignation_pair;uniqueIndex:uniq_resignation_pending,where:status = 'pending'" json:"mentor_id"`
	ClassroomID uint          `gorm:"not null;index:idx_resignation_pair;uniqueIndex:uniq_resignation_pending" json:"classroom_id"`
	Reason      string        `gorm:"type:text;not null" json:"reason"`
	MasterNotes string        `gorm:"type:text" json:"master_notes"`
	Status      RequestStatus `gorm:"size:32;not null;default:pending;index" json:"status"`
	ReviewedBy  *uint         `json:"reviewed_by"`
	ReviewedAt  *time.Time    `json:"reviewed_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
