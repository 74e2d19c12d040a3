package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/maestro-api/internal/dto"
	"github.com/noah-isme/maestro-api/internal/models"
	"github.com/noah-isme/maestro-api/internal/repository"
	"github.com/noah-isme/maestro-api/internal/session"
)

// ReviewService is the reviewer-facing read model: it partitions requests
// into decision buckets, filters them over applicant display fields and
// exposes badge counts. It always re-reads the request store, so a reviewer
// querying after their own decision sees it immediately; only badge counts
// are cached, and every write invalidates them.
type ReviewService interface {
	ClassroomRequests(ctx context.Context, reviewer session.Actor, classroomID uint, filter dto.ReviewFilter) (dto.ClassroomReviewResponse, error)
	ClassroomCounts(ctx context.Context, reviewer session.Actor, classroomID uint) (dto.ReviewCounts, error)
	MasterRoleRequests(ctx context.Context, reviewer session.Actor, filter dto.ReviewFilter) (dto.MasterRoleBuckets, error)
	MentorRequests(ctx context.Context, mentorID uint) (dto.MentorRequestsResponse, error)
}

type reviewService struct {
	masterRequests repository.MasterRequestRepository
	staffRequests  repository.StaffRequestRepository
	resignations   repository.ResignationRepository
	memberships    repository.MembershipRepository
	actors         repository.ActorRepository
	classrooms     repository.ClassroomRepository
	validator      *validator.Validate
	cache          *ReviewCache
	logger         zerolog.Logger
	tracer         trace.Tracer
}

// NewReviewService constructs the review surface service.
func NewReviewService(
	masterRequests repository.MasterRequestRepository,
	staffRequests repository.StaffRequestRepository,
	resignations repository.ResignationRepository,
	memberships repository.MembershipRepository,
	actors repository.ActorRepository,
	classrooms repository.ClassroomRepository,
	validate *validator.Validate,
	cache *ReviewCache,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		masterRequests: masterRequests,
		staffRequests:  staffRequests,
		resignations:   resignations,
		memberships:    memberships,
		actors:         actors,
		classrooms:     classrooms,
		validator:      validate,
		cache:          cache,
		logger:         logger.With().Str("component", "review_service").Logger(),
		tracer:         otel.Tracer("github.com/noah-isme/maestro-api/internal/service/review"),
	}
}

func (s *reviewService) ClassroomRequests(ctx context.Context, reviewer session.Actor, classroomID uint, filter dto.ReviewFilter) (dto.ClassroomReviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.classroom",
		trace.WithAttributes(attribute.Int64("review.classroom_id", int64(classroomID))))
	defer span.End()

	if err := s.validator.Struct(filter); err != nil {
		return dto.ClassroomReviewResponse{}, err
	}

	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassroomReviewResponse{}, ErrNotFound
		}
		return dto.ClassroomReviewResponse{}, err
	}
	if reviewer.Role != models.RoleMentor || !reviewer.IsMaster || classroom.OwnerID != reviewer.ID {
		return dto.ClassroomReviewResponse{}, ErrForbidden
	}

	staff, err := s.staffRequests.ListByClassroom(ctx, classroomID, repository.RequestFilter{})
	if err != nil {
		return dto.ClassroomReviewResponse{}, err
	}
	resignations, err := s.resignations.ListByClassroom(ctx, classroomID, repository.RequestFilter{})
	if err != nil {
		return dto.ClassroomReviewResponse{}, err
	}
	pendingEnrollments, err := s.memberships.ListByClassroom(ctx, classroomID, models.MembershipStatusPending)
	if err != nil {
		return dto.ClassroomReviewResponse{}, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	names := s.displayFields(ctx, mentorIDs(staff, resignations))

	response := dto.ClassroomReviewResponse{ClassroomID: classroomID}
	for _, req := range staff {
		if !matches(search, names[req.MentorID], req.Message) {
			continue
		}
		item := dto.NewStaffRequestResponse(req)
		switch req.Status {
		case models.RequestStatusPending:
			response.StaffRequests.Pending = append(response.StaffRequests.Pending, item)
		case models.RequestStatusApproved:
			response.StaffRequests.Approved = append(response.StaffRequests.Approved, item)
		case models.RequestStatusRejected:
			response.StaffRequests.Rejected = append(response.StaffRequests.Rejected, item)
		}
	}
	for _, req := range resignations {
		if !matches(search, names[req.MentorID], req.Reason) {
			continue
		}
		item := dto.NewResignationResponse(req)
		switch req.Status {
		case models.RequestStatusPending:
			response.Resignations.Pending = append(response.Resignations.Pending, item)
		case models.RequestStatusApproved:
			response.Resignations.Approved = append(response.Resignations.Approved, item)
		case models.RequestStatusRejected:
			response.Resignations.Rejected = append(response.Resignations.Rejected, item)
		}
	}
	response.PendingEnrollments = dto.NewMembershipResponses(pendingEnrollments)
	response.Counts = s.classroomCounts(ctx, classroomID, staff, resignations, len(pendingEnrollments))

	return response, nil
}

func (s *reviewService) MasterRoleRequests(ctx context.Context, reviewer session.Actor, filter dto.ReviewFilter) (dto.MasterRoleBuckets, error) {
	ctx, span := s.tracer.Start(ctx, "review.master_role")
	defer span.End()

	if reviewer.Role != models.RoleAdmin {
		return dto.MasterRoleBuckets{}, ErrForbidden
	}
	if err := s.validator.Struct(filter); err != nil {
		return dto.MasterRoleBuckets{}, err
	}

	requests, err := s.masterRequests.List(ctx, repository.RequestFilter{})
	if err != nil {
		return dto.MasterRoleBuckets{}, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	names := s.displayFields(ctx, masterMentorIDs(requests))

	var buckets dto.MasterRoleBuckets
	counts := dto.ReviewCounts{}
	for _, req := range requests {
		switch req.Status {
		case models.RequestStatusPending:
			counts.Pending++
		case models.RequestStatusApproved:
			counts.Approved++
		case models.RequestStatusRejected:
			counts.Rejected++
		}

		if !matches(search, names[req.MentorID], req.Reason) {
			continue
		}
		item := dto.NewMasterRoleResponse(req)
		switch req.Status {
		case models.RequestStatusPending:
			buckets.Pending = append(buckets.Pending, item)
		case models.RequestStatusApproved:
			buckets.Approved = append(buckets.Approved, item)
		case models.RequestStatusRejected:
			buckets.Rejected = append(buckets.Rejected, item)
		}
	}
	buckets.Counts = counts
	s.cache.SetCounts(ctx, MasterRoleCountsKey(), counts)

	return buckets, nil
}

func (s *reviewService) MentorRequests(ctx context.Context, mentorID uint) (dto.MentorRequestsResponse, error) {
	staff, err := s.staffRequests.ListByMentor(ctx, mentorID, repository.RequestFilter{})
	if err != nil {
		return dto.MentorRequestsResponse{}, err
	}
	resignations, err := s.resignations.ListByMentor(ctx, mentorID, repository.RequestFilter{})
	if err != nil {
		return dto.MentorRequestsResponse{}, err
	}

	return dto.MentorRequestsResponse{
		MentorID:      mentorID,
		StaffRequests: dto.NewStaffRequestResponses(staff),
		Resignations:  dto.NewResignationResponses(resignations),
	}, nil
}

// ClassroomCounts serves badge counts, preferring the cached entry. Cache
// misses recompute from the request store and write through.
func (s *reviewService) ClassroomCounts(ctx context.Context, reviewer session.Actor, classroomID uint) (dto.ReviewCounts, error) {
	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewCounts{}, ErrNotFound
		}
		return dto.ReviewCounts{}, err
	}
	if reviewer.Role != models.RoleMentor || !reviewer.IsMaster || classroom.OwnerID != reviewer.ID {
		return dto.ReviewCounts{}, ErrForbidden
	}

	if counts, ok := s.cache.GetCounts(ctx, ClassroomCountsKey(classroomID)); ok {
		return counts, nil
	}

	staff, err := s.staffRequests.ListByClassroom(ctx, classroomID, repository.RequestFilter{})
	if err != nil {
		return dto.ReviewCounts{}, err
	}
	resignations, err := s.resignations.ListByClassroom(ctx, classroomID, repository.RequestFilter{})
	if err != nil {
		return dto.ReviewCounts{}, err
	}
	pendingEnrollments, err := s.memberships.ListByClassroom(ctx, classroomID, models.MembershipStatusPending)
	if err != nil {
		return dto.ReviewCounts{}, err
	}

	return s.classroomCounts(ctx, classroomID, staff, resignations, len(pendingEnrollments)), nil
}

// classroomCounts recomputes badge counts from fresh lists and writes the
// result through the cache.
func (s *reviewService) classroomCounts(ctx context.Context, classroomID uint, staff []models.StaffRequest, resignations []models.ResignationRequest, pendingEnrollments int) dto.ReviewCounts {
	counts := dto.ReviewCounts{Pending: pendingEnrollments}
	for _, req := range staff {
		bumpCounts(&counts, req.Status)
	}
	for _, req := range resignations {
		bumpCounts(&counts, req.Status)
	}
	s.cache.SetCounts(ctx, ClassroomCountsKey(classroomID), counts)
	return counts
}

// displayFields loads applicant display names and emails for free-text
// filtering. A missing actor only disables name matching for that row.
func (s *reviewService) displayFields(ctx context.Context, ids []uint) map[uint]string {
	fields := make(map[uint]string, len(ids))
	for _, id := range ids {
		actor, err := s.actors.GetByID(ctx, id)
		if err != nil {
			continue
		}
		fields[id] = strings.ToLower(actor.DisplayName + " " + actor.Email)
	}
	return fields
}

func bumpCounts(counts *dto.ReviewCounts, status models.RequestStatus) {
	switch status {
	case models.RequestStatusPending:
		counts.Pending++
	case models.RequestStatusApproved:
		counts.Approved++
	case models.RequestStatusRejected:
		counts.Rejected++
	}
}

func matches(search, displayFields, text string) bool {
	if search == "" {
		return true
	}
	if strings.Contains(displayFields, search) {
		return true
	}
	return strings.Contains(strings.ToLower(text), search)
}

func mentorIDs(staff []models.StaffRequest, resignations []models.ResignationRequest) []uint {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, req := range staff {
		if _, ok := seen[req.MentorID]; !ok {
			seen[req.MentorID] = struct{}{}
			ids = append(ids, req.MentorID)
		}
	}
	for _, req := range resignations {
		if _, ok := seen[req.MentorID]; !ok {
			seen[req.MentorID] = struct{}{}
			ids = append(ids, req.MentorID)
		}
	}
	return ids
}

func masterMentorIDs(requests []models.MasterRoleRequest) []uint {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, req := range requests {
		if _, ok := seen[req.MentorID]; !ok {
			seen[req.MentorID] = struct{}{}
			ids = append(ids, req.MentorID)
		}
	}
	return ids
}
