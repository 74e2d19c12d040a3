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

// ResignationService runs the staff resignation workflow: an active staff
// mentor asks to leave, the classroom's owner decides, approval removes the
// membership. The membership precondition is re-checked at decision time.
type ResignationService interface {
	Submit(ctx context.Context, payload dto.ResignationCreateRequest) (dto.ResignationResponse, error)
	ListByMentor(ctx context.Context, mentorID uint, filter dto.ReviewFilter) ([]dto.ResignationResponse, error)
	Decide(ctx context.Context, id uint, reviewer session.Actor, payload dto.ResignationDecisionRequest) (dto.ResignationResponse, error)
}

type resignationService struct {
	requests    repository.ResignationRepository
	memberships repository.MembershipRepository
	classrooms  repository.ClassroomRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	publisher   DecisionPublisher
	cache       *ReviewCache
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewResignationService constructs the resignation workflow service.
func NewResignationService(
	requests repository.ResignationRepository,
	memberships repository.MembershipRepository,
	classrooms repository.ClassroomRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	publisher DecisionPublisher,
	cache *ReviewCache,
	logger zerolog.Logger,
) ResignationService {
	return &resignationService{
		requests:    requests,
		memberships: memberships,
		classrooms:  classrooms,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		activity:    activity,
		publisher:   publisher,
		cache:       cache,
		logger:      logger.With().Str("component", "resignation_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/maestro-api/internal/service/resignation"),
		now:         time.Now,
	}
}

func (s *resignationService) Submit(ctx context.Context, payload dto.ResignationCreateRequest) (dto.ResignationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "resignation.submit", trace.WithAttributes(
		attribute.Int64("request.mentor_id", int64(payload.MentorID)),
		attribute.Int64("request.classroom_id", int64(payload.ClassroomID)),
	))
	defer span.End()

	// Sanitize before validating so the length floor applies to the text
	// that will actually be stored.
	payload.Reason = strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ResignationResponse{}, err
	}

	// An active staff membership must exist when the request is submitted.
	if _, err := s.memberships.FindActiveStaff(ctx, payload.MentorID, payload.ClassroomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.WorkflowSubmissions().WithLabelValues("resignation", "no_membership").Inc()
			return dto.ResignationResponse{}, ErrNoStaffMembership
		}
		span.RecordError(err)
		return dto.ResignationResponse{}, err
	}

	request := models.ResignationRequest{
		MentorID:    payload.MentorID,
		ClassroomID: payload.ClassroomID,
		Reason:      payload.Reason,
		Status:      models.RequestStatusPending,
	}

	if err := s.requests.Create(ctx, &request); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			observability.WorkflowSubmissions().WithLabelValues("resignation", "conflict").Inc()
			return dto.ResignationResponse{}, ErrConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence_failed")
		return dto.ResignationResponse{}, err
	}

	observability.WorkflowSubmissions().WithLabelValues("resignation", "accepted").Inc()
	s.recordActivity(ctx, request.MentorID, string(models.RoleMentor), "resignation.submitted", request.ID, map[string]interface{}{
		"classroom_id": request.ClassroomID,
	})
	s.logger.Info().
		Uint("request_id", request.ID).
		Uint("mentor_id", request.MentorID).
		Uint("classroom_id", request.ClassroomID).
		Msg("resignation request submitted")

	return dto.NewResignationResponse(request), nil
}

func (s *resignationService) ListByMentor(ctx context.Context, mentorID uint, filter dto.ReviewFilter) ([]dto.ResignationResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	requests, err := s.requests.ListByMentor(ctx, mentorID, repository.RequestFilter{Status: models.RequestStatus(filter.Status)})
	if err != nil {
		return nil, err
	}
	return dto.NewResignationResponses(requests), nil
}

func (s *resignationService) Decide(ctx context.Context, id uint, reviewer session.Actor, payload dto.ResignationDecisionRequest) (dto.ResignationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "resignation.decide", trace.WithAttributes(
		attribute.Int64("request.id", int64(id)),
		attribute.Int64("request.reviewer_id", int64(reviewer.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ResignationResponse{}, err
	}

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResignationResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.ResignationResponse{}, err
	}

	if err := s.authorizeReviewer(ctx, reviewer, request.MentorID, request.ClassroomID, request.ID); err != nil {
		return dto.ResignationResponse{}, err
	}

	decided, err := s.requests.Decide(ctx, id, repository.Decision{
		Status:     models.RequestStatus(payload.Status),
		ReviewerID: reviewer.ID,
		Notes:      strings.TrimSpace(s.sanitizer.Sanitize(payload.MasterNotes)),
		DecidedAt:  s.now().UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotPending):
			observability.WorkflowDecisions().WithLabelValues("resignation", payload.Status, "already_reviewed").Inc()
			return dto.ResignationResponse{}, ErrAlreadyReviewed
		case errors.Is(err, repository.ErrStaleMembership):
			observability.WorkflowDecisions().WithLabelValues("resignation", payload.Status, "stale").Inc()
			return dto.ResignationResponse{}, ErrStaleRequest
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.ResignationResponse{}, ErrNotFound
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "transition_failed")
			return dto.ResignationResponse{}, err
		}
	}

	observability.WorkflowDecisions().WithLabelValues("resignation", payload.Status, "applied").Inc()
	s.cache.Invalidate(ctx, ClassroomCountsKey(decided.ClassroomID))
	s.recordActivity(ctx, reviewer.ID, string(reviewer.Role), "resignation."+payload.Status, decided.ID, map[string]interface{}{
		"mentor_id":    decided.MentorID,
		"classroom_id": decided.ClassroomID,
	})
	if s.publisher != nil {
		s.publisher.PublishDecision(ctx, DecisionEvent{
			Kind:       "resignation",
			RequestID:  decided.ID,
			SubjectID:  decided.MentorID,
			Status:     payload.Status,
			ReviewerID: reviewer.ID,
			DecidedAt:  *decided.ReviewedAt,
		})
	}

	s.logger.Info().Uint("request_id", decided.ID).Str("status", payload.Status).Msg("resignation request decided")
	span.SetStatus(codes.Ok, "decided")

	return dto.NewResignationResponse(decided), nil
}

func (s *resignationService) authorizeReviewer(ctx context.Context, reviewer session.Actor, applicantID, classroomID, requestID uint) error {
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

func (s *resignationService) rejectReviewer(ctx context.Context, reviewer session.Actor, requestID uint) {
	observability.ForbiddenReviews().WithLabelValues("resignation").Inc()
	s.logger.Warn().
		Uint("request_id", requestID).
		Uint("reviewer_id", reviewer.ID).
		Str("reviewer_role", string(reviewer.Role)).
		Msg("unauthorized review attempt")
	s.recordActivity(ctx, reviewer.ID, string(reviewer.Role), "resignation.review_forbidden", requestID, nil)
}

func (s *resignationService) recordActivity(ctx context.Context, actorID uint, role, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		ActorRole:  role,
		Action:     action,
		EntityType: "resignation_request",
		EntityID:   &id,
		Metadata:   metadata,
	})
}
