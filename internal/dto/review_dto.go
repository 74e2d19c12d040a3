package dto

// ReviewFilter narrows review-surface queries.
type ReviewFilter struct {
	Search string `query:"search"`
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// ReviewCounts summarises a review surface for badge rendering.
type ReviewCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// ClassroomReviewResponse partitions a classroom's requests into decision
// buckets for the reviewing master.
type ClassroomReviewResponse struct {
	ClassroomID        uint                 `json:"classroom_id"`
	StaffRequests      ReviewBuckets        `json:"staff_requests"`
	Resignations       ResignationBuckets   `json:"resignations"`
	PendingEnrollments []MembershipResponse `json:"pending_enrollments"`
	Counts             ReviewCounts         `json:"counts"`
}

// ReviewBuckets groups staff requests by decision state.
type ReviewBuckets struct {
	Pending  []StaffRequestResponse `json:"pending"`
	Approved []StaffRequestResponse `json:"approved"`
	Rejected []StaffRequestResponse `json:"rejected"`
}

// ResignationBuckets groups resignation requests by decision state.
type ResignationBuckets struct {
	Pending  []ResignationResponse `json:"pending"`
	Approved []ResignationResponse `json:"approved"`
	Rejected []ResignationResponse `json:"rejected"`
}

// MasterRoleBuckets groups master-role requests by decision state for the
// admin review surface.
type MasterRoleBuckets struct {
	Pending  []MasterRoleResponse `json:"pending"`
	Approved []MasterRoleResponse `json:"approved"`
	Rejected []MasterRoleResponse `json:"rejected"`
	Counts   ReviewCounts         `json:"counts"`
}

// MentorRequestsResponse aggregates a mentor's own submissions.
type MentorRequestsResponse struct {
	MentorID      uint                   `json:"mentor_id"`
	StaffRequests []StaffRequestResponse `json:"staff_requests"`
	Resignations  []ResignationResponse  `json:"resignations"`
}
