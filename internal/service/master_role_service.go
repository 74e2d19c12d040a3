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

// MasterRoleService runs the master-role application workflow: a mentor who
// is not yet a master applies, an admin decides, approval flips the master
// flag.
type MasterRoleService interface {
	Submit(ctx context.Context, payload dto.MasterRoleCreateRequest) (dto.MasterRoleResponse, error)
	List(ctx context.Context, reviewer session.Actor, filter dto.ReviewFilter) ([]dto.MasterRoleResponse, error)
	Decide(ctx context.Context, id uint, reviewer session.Actor, payload dto.MasterRoleDecisionRequest) (dto.MasterRoleResponse, error)
}

type masterRoleService struct {
	requests  repository.MasterRequestRepository
	actors    repository.ActorRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	publisher DecisionPublisher
	cache     *ReviewCache
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewMasterRoleService constructs the master-role workflow service.
func NewMasterRoleService(
	requests repository.MasterRequestRepository,
	actors repository.ActorRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	publisher DecisionPublisher,
	cache *ReviewCache,
	logger zerolog.Logger,
) MasterRoleService {
	return &masterRoleService{
		requests:  requests,
		actors:    actors,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		activity:  activity,
		publisher: publisher,
		cache:     cache,
		logger:    logger.With().Str("component", "master_role_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/maestro-api/internal/service/master_role"),
		now:       time.Now,
	}
}

func (s *masterRoleService) Submit(ctx context.Context, payload dto.MasterRoleCreateRequest) (dto.MasterRoleResponse, error) {
	ctx, span := s.tracer.Start(ctx, "master_role.submit",
		trace.WithAttributes(attribute.Int64("request.mentor_id", int64(payload.MentorID))))
	defer span.End()

	// Sanitize before validating: the minimum-length floors apply to the
	// text that will actually be stored, not to markup that is stripped.
	payload.Reason = s.cleanText(payload.Reason)
	payload.Experience = s.cleanText(payload.Experience)
	payload.PlannedClassrooms = s.cleanText(payload.PlannedClassrooms)

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.MasterRoleResponse{}, err
	}

	applicant, err := s.actors.GetByID(ctx, payload.MentorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MasterRoleResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.MasterRoleResponse{}, err
	}
	if applicant.Role != models.RoleMentor {
		observability.WorkflowSubmissions().WithLabelValues("master_role", "invalid_applicant").Inc()
		return dto.MasterRoleResponse{}, ErrInvalidApplicant
	}
	if applicant.IsMaster {
		observability.WorkflowSubmissions().WithLabelValues("master_role", "conflict").Inc()
		return dto.MasterRoleResponse{}, ErrAlreadyMaster
	}

	request := models.MasterRoleRequest{
		MentorID:          payload.MentorID,
		Reason:            payload.Reason,
		Experience:        payload.Experience,
		PlannedClassrooms: payload.PlannedClassrooms,
		Qualifications:    qualificationsMap(payload.Qualifications),
		Status:            models.RequestStatusPending,
	}

	if err := s.requests.Create(ctx, &request); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			observability.WorkflowSubmissions().WithLabelValues("master_role", "conflict").Inc()
			return dto.MasterRoleResponse{}, ErrConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence_failed")
		return dto.MasterRoleResponse{}, err
	}

	observability.WorkflowSubmissions().WithLabelValues("master_role", "accepted").Inc()
	s.recordActivity(ctx, applicant.ID, string(applicant.Role), "master_role.submitted", request.ID, nil)
	s.logger.Info().Uint("request_id", request.ID).Uint("mentor_id", request.MentorID).Msg("master-role request submitted")

	return dto.NewMasterRoleResponse(request), nil
}

func (s *masterRoleService) List(ctx context.Context, reviewer session.Actor, filter dto.ReviewFilter) ([]dto.MasterRoleResponse, error) {
	if reviewer.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	requests, err := s.requests.List(ctx, repository.RequestFilter{Status: models.RequestStatus(filter.Status)})
	if err != nil {
		return nil, err
	}
	return dto.NewMasterRoleResponses(requests), nil
}

func (s *masterRoleService) Decide(ctx context.Context, id uint, reviewer session.Actor, payload dto.MasterRoleDecisionRequest) (dto.MasterRoleResponse, error) {
	ctx, span := s.tracer.Start(ctx, "master_role.decide", trace.WithAttributes(
		attribute.Int64("request.id", int64(id)),
		attribute.Int64("request.reviewer_id", int64(reviewer.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.MasterRoleResponse{}, err
	}

	// Only admins decide master-role requests.
	if reviewer.Role != models.RoleAdmin {
		s.rejectReviewer(ctx, reviewer, id, "master_role")
		return dto.MasterRoleResponse{}, ErrForbidden
	}

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MasterRoleResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.MasterRoleResponse{}, err
	}

	// Admins are never the applicant for their own master-role request, but
	// the invariant is checked explicitly rather than assumed.
	if request.MentorID == reviewer.ID {
		s.rejectReviewer(ctx, reviewer, id, "master_role")
		return dto.MasterRoleResponse{}, ErrSelfReview
	}

	decided, err := s.requests.Decide(ctx, id, repository.Decision{
		Status:     models.RequestStatus(payload.Status),
		ReviewerID: reviewer.ID,
		Notes:      s.cleanText(payload.AdminNotes),
		DecidedAt:  s.now().UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotPending):
			observability.WorkflowDecisions().WithLabelValues("master_role", payload.Status, "already_reviewed").Inc()
			return dto.MasterRoleResponse{}, ErrAlreadyReviewed
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.MasterRoleResponse{}, ErrNotFound
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "transition_failed")
			return dto.MasterRoleResponse{}, err
		}
	}

	observability.WorkflowDecisions().WithLabelValues("master_role", payload.Status, "applied").Inc()
	s.cache.Invalidate(ctx, MasterRoleCountsKey())
	s.recordActivity(ctx, reviewer.ID, string(reviewer.Role), "master_role."+payload.Status, decided.ID, map[string]interface{}{
		"mentor_id": decided.MentorID,
	})
	s.publishDecision(ctx, DecisionEvent{
		Kind:       "master_role",
		RequestID:  decided.ID,
		SubjectID:  decided.MentorID,
		Status:     payload.Status,
		ReviewerID: reviewer.ID,
		DecidedAt:  *decided.ReviewedAt,
	})

	s.logger.Info().Uint("request_id", decided.ID).Str("status", payload.Status).Msg("master-role request decided")
	span.SetStatus(codes.Ok, "decided")

	return dto.NewMasterRoleResponse(decided), nil
}

func (s *masterRoleService) publishDecision(ctx context.Context, event DecisionEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishDecision(ctx, event)
}

func (s *masterRoleService) rejectReviewer(ctx context.Context, reviewer session.Actor, requestID uint, kind string) {
	observability.ForbiddenReviews().WithLabelValues(kind).Inc()
	s.logger.Warn().
		Uint("request_id", requestID).
		Uint("reviewer_id", reviewer.ID).
		Str("reviewer_role", string(reviewer.Role)).
		Msg("unauthorized review attempt")
	s.recordActivity(ctx, reviewer.ID, string(reviewer.Role), kind+".review_forbidden", requestID, nil)
}

func (s *masterRoleService) recordActivity(ctx context.Context, actorID uint, role, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		ActorRole:  role,
		Action:     action,
		EntityType: "master_role_request",
		EntityID:   &id,
		Metadata:   metadata,
	})
}

func (s *masterRoleService) cleanText(input string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(input))
}

func qualificationsMap(values map[string]string) map[string]interface{} {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
