package repository

import (
	"errors"
	"time"

	"github.com/noah-isme/maestro-api/internal/models"
)

// ErrDuplicatePending signals that a pending request already exists for the
// uniqueness key (mentor for master-role requests, mentor+classroom pair
// otherwise). Raised inside the create transaction so exactly one of two
// concurrent submissions succeeds.
var ErrDuplicatePending = errors.New("pending request already exists")

// ErrNotPending signals a transition on a request that is no longer pending.
// Raised inside the decide transaction so exactly one of two concurrent
// decisions succeeds.
var ErrNotPending = errors.New("request is not pending")

// ErrStaleMembership signals that the staff membership a resignation refers
// to no longer exists at decision time.
var ErrStaleMembership = errors.New("staff membership no longer exists")

// ErrDuplicateMembership signals a second non-rejected membership for the
// same (actor, classroom) pair.
var ErrDuplicateMembership = errors.New("membership already exists for classroom")

// ErrClassroomFull signals that admitting a student would exceed the
// classroom's capacity.
var ErrClassroomFull = errors.New("classroom is at capacity")

// Decision carries the reviewer's verdict applied during a status transition.
type Decision struct {
	Status     models.RequestStatus
	ReviewerID uint
	Notes      string
	DecidedAt  time.Time
}

// RequestFilter narrows request list queries. A zero Status matches all.
type RequestFilter struct {
	Status models.RequestStatus
}
