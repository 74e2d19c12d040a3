package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/maestro-api/internal/dto"
	"github.com/noah-isme/maestro-api/internal/models"
	"github.com/noah-isme/maestro-api/internal/observability"
	"github.com/noah-isme/maestro-api/internal/repository"
	"github.com/noah-isme/maestro-api/internal/session"
)

// StaffRequestService runs the staff-join workflow: a mentor applies to a
// classroom's teaching team, the classroom's owner decides, approval creates
// or reactivates an active staff membership.
type StaffRequestService interface {
	Submit(ctx context.Context, payload dto.StaffRequestCreateRequest) (dto.StaffRequestResponse, error)
	ListByMentor(ctx context.Context, mentorID uint, filter dto.ReviewFilter) ([]dto.StaffRequestResponse, error)
	Decide(ctx context.Context, id uint, reviewer session.Actor, payload dto.StaffRequestDecisionRequest) (dto.StaffRequestResponse, error)
}

type staffRequestService struct {
	requests   repository.StaffRequestRepository
	actors     repository.ActorRepository
	classrooms repository.ClassroomRepository
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	activity   ActivityRecorder
	publisher  DecisionPublisher
	cache      *ReviewCache
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewStaffRequestService constructs the staff-join workflow service.
func NewStaffRequestService(
	requests repository.StaffRequestRepository,
	actors repository.ActorRepository,
	classrooms repository.ClassroomRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	publisher DecisionPublisher,
	cache *ReviewCache,
	logger zerolog.Logger,
) StaffRequestService {
	return &staffRequestService{
		requests:   requests,
		actors:     actors,
		classrooms: classrooms,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		activity:   activity,
		publisher:  publisher,
		cache:      cache,
		logger:     logger.With().Str("component", "staff_request_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/maestro-api/internal/service/staff_request"),
		now:        time.Now,
	}
}

func (s *staffRequestService) Submit(ctx context.Context, payload dto.StaffRequestCreateRequest) (dto.StaffRequestResponse, error) {
	ctx, span := s.tracer.Start(ctx, "staff_request.submit", trace.WithAttributes(
		attribute.Int64("request.mentor_id", int64(payload.MentorID)),
		attribute.Int64("request.classroom_id", int64(payload.ClassroomID)),
	))
	defer span.End()

	// Sanitize before validating so the length floor applies to the text
	// that will actually be stored.
	payload.Message = strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.StaffRequestResponse{}, err
	}

	applicant, err := s.actors.GetByID(ctx, payload.MentorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StaffRequestResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.StaffRequestResponse{}, err
	}
	if applicant.Role != models.RoleMentor {
		observability.WorkflowSubmissions().WithLabelValues("staff_request", "invalid_applicant").Inc()
		return dto.StaffRequestResponse{}, ErrInvalidApplicant
	}

	classroom, err := s.classrooms.GetByID(ctx, payload.ClassroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StaffRequestResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.StaffRequestResponse{}, err
	}
	if !classroom.IsActive {
		observability.WorkflowSubmissions().WithLabelValues("staff_request", "conflict").Inc()
		return dto.StaffRequestResponse{}, ErrClassroomInactive
	}

	request := models.StaffRequest{
		MentorID:    payload.MentorID,
		ClassroomID: payload.ClassroomID,
		Message:     payload.Message,
		Status:      models.RequestStatusPending,
	}

	if err := s.requests.Create(ctx, &request); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			observability.WorkflowSubmissions().WithLabelValues("staff_request", "conflict").Inc()
			return dto.StaffRequestResponse{}, ErrConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence_failed")
		return dto.StaffRequestResponse{}, err
	}

	observability.WorkflowSubmissions().WithLabelValues("staff_request", "accepted").Inc()
	s.recordActivity(ctx, applicant.ID, string(applicant.Role), "staff_request.submitted", request.ID, map[string]interface{}{
		"classroom_id": request.ClassroomID,
	})
	s.logger.Info().
		Uint("request_id", request.ID).
		Uint("mentor_id", request.MentorID).
		Uint("classroom_id", request.ClassroomID).
		Msg("staff request submitted")

	return dto.NewStaffRequestResponse(request), nil
}

func (s *staffRequestService) ListByMentor(ctx context.Context, mentorID uint, filter dto.ReviewFilter) ([]dto.StaffRequestResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	requests, err := s.requests.ListByMentor(ctx, mentorID, repository.RequestFilter{Status: models.RequestStatus(filter.Status)})
	if err != nil {
		return nil, err
	}
	return dto.NewStaffRequestResponses(requests), nil
}

func (s *staffRequestService) Decide(ctx context.Context, id uint, reviewer session.Actor, payload dto.StaffRequestDecisionRequest) (dto.StaffRequestResponse, error) {
	ctx, span := s.tracer.Start(ctx, "staff_request.decide", trace.WithAttributes(
		attribute.Int64("request.id", int64(id)),
		attribute.Int64("request.reviewer_id", int64(reviewer.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.StaffRequestResponse{}, err
	}

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StaffRequestResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.StaffRequestResponse{}, err
	}

	if err := s.authorizeReviewer(ctx, reviewer, request.MentorID, request.ClassroomID, request.ID); err != nil {
		return dto.StaffRequestResponse{}, err
	}

	decided, err := s.requests.Decide(ctx, id, repository.Decision{
		Status:     models.RequestStatus(payload.Status),
		ReviewerID: reviewer.ID,
		Notes:      strings.TrimSpace(s.sanitizer.Sanitize(payload.AdminNotes)),
		DecidedAt:  s.now().UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotPending):
			observability.WorkflowDecisions().WithLabelValues("staff_request", payload.Status, "already_reviewed").Inc()
			return dto.StaffRequestResponse{}, ErrAlreadyReviewed
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.StaffRequestResponse{}, ErrNotFound
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "transition_failed")
			return dto.StaffRequestResponse{}, err
		}
	}

	observability.WorkflowDecisions().WithLabelValues("staff_request", payload.Status, "applied").Inc()
	s.cache.Invalidate(ctx, ClassroomCountsKey(decided.ClassroomID))
	s.recordActivity(ctx, reviewer.ID, string(reviewer.Role), "staff_request."+payload.Status, decided.ID, map[string]interface{}{
		"mentor_id":    decided.MentorID,
		"classroom_id": decided.ClassroomID,
	})
	if s.publisher != nil {
		s.publisher.PublishDecision(ctx, DecisionEvent{
			Kind:       "staff_request",
			RequestID:  decided.ID,
			SubjectID:  decided.MentorID,
			Status:     payload.Status,
			ReviewerID: reviewer.ID,
			DecidedAt:  *decided.ReviewedAt,
		})
	}

	s.logger.Info().Uint("request_id", decided.ID).Str("status", payload.Status).Msg("staff request decided")
	span.SetStatus(codes.Ok, "decided")

	return dto.NewStaffRequestResponse(decided), nil
}

// authorizeReviewer enforces that only the targeted classroom's owning
// master decides, and that applicants never decide their own request.
func (s *staffRequestService) authorizeReviewer(ctx context.Context, reviewer session.Actor, applicantID, classroomID, requestID uint) error {
	if reviewer.Role != models.RoleMentor || !reviewer.IsMaster {
		s.rejectReviewer(ctx, reviewer, requestID)
		return ErrForbidden
	}

	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if classroom.OwnerID != reviewer.ID {
		s.rejectReviewer(ctx, reviewer, requestID)
		return ErrForbidden
	}
	if applicantID == reviewer.ID {
		s.rejectReviewer(ctx, reviewer, requestID)
		return ErrSelfReview
	}
	return nil
}

func (s *staffRequestService) rejectReviewer(ctx context.Context, reviewer session.Actor, requestID uint) {
	observability.ForbiddenReviews().WithLabelValues("staff_request").Inc()
	s.logger.Warn().
		Uint("request_id", requestID).
		Uint("reviewer_id", reviewer.ID).
		Str("reviewer_role", string(reviewer.Role)).
		Msg("unauthorized review attempt")
	s.recordActivity(ctx, reviewer.ID, string(reviewer.Role), "staff_request.review_forbidden", requestID, nil)
}

func (s *staffRequestService) recordActivity(ctx context.Context, actorID uint, role, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		ActorRole:  role,
		Action:     action,
		EntityType: "staff_request",
		EntityID:   &id,
		Metadata:   metadata,
	})
}
