package service

import "errors"

// Workflow error taxonomy. Handlers map these onto HTTP statuses; every
// write failure leaves prior state untouched.
var (
	// ErrConflict indicates a uniqueness invariant would be violated.
	ErrConflict = errors.New("a conflicting request already exists")
	// ErrForbidden indicates the acting reviewer lacks decision authority.
	ErrForbidden = errors.New("reviewer is not authorized for this request")
	// ErrSelfReview indicates an applicant attempted to decide their own request.
	ErrSelfReview = errors.New("applicants may not decide their own request")
	// ErrAlreadyReviewed indicates the request reached a terminal state earlier.
	ErrAlreadyReviewed = errors.New("request was already reviewed")
	// ErrStaleRequest indicates the membership a resignation refers to is gone.
	ErrStaleRequest = errors.New("request no longer matches an active membership")
	// ErrNotFound indicates a dangling identifier.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyMaster indicates the applicant already holds the master role.
	ErrAlreadyMaster = errors.New("mentor already holds the master role")
	// ErrClassroomInactive indicates the targeted classroom was deactivated.
	ErrClassroomInactive = errors.New("classroom is not active")
	// ErrClassroomFull indicates admission would exceed classroom capacity.
	ErrClassroomFull = errors.New("classroom is at capacity")
	// ErrNoStaffMembership indicates a resignation without an active staff membership.
	ErrNoStaffMembership = errors.New("no active staff membership for classroom")
	// ErrInvalidApplicant indicates the applicant's platform role does not fit the request kind.
	ErrInvalidApplicant = errors.New("applicant role does not permit this request")
)
