package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
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

// EnrollmentService runs student admission: a student submits a pending
// membership, the classroom's owner admits or rejects it.
type EnrollmentService interface {
	Submit(ctx context.Context, classroomID uint, payload dto.EnrollmentCreateRequest) (dto.MembershipResponse, error)
	ListByClassroom(ctx context.Context, reviewer session.Actor, classroomID uint, status string) ([]dto.MembershipResponse, error)
	Decide(ctx context.Context, membershipID uint, reviewer session.Actor, payload dto.MembershipDecisionRequest) (dto.MembershipResponse, error)
}

type enrollmentService struct {
	memberships repository.MembershipRepository
	actors      repository.ActorRepository
	classrooms  repository.ClassroomRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	cache       *ReviewCache
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewEnrollmentService constructs the enrollment workflow service.
func NewEnrollmentService(
	memberships repository.MembershipRepository,
	actors repository.ActorRepository,
	classrooms repository.ClassroomRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	cache *ReviewCache,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		memberships: memberships,
		actors:      actors,
		classrooms:  classrooms,
		validator:   validate,
		activity:    activity,
		cache:       cache,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/maestro-api/internal/service/enrollment"),
		now:         time.Now,
	}
}

func (s *enrollmentService) Submit(ctx context.Context, classroomID uint, payload dto.EnrollmentCreateRequest) (dto.MembershipResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.submit", trace.WithAttributes(
		attribute.Int64("enrollment.student_id", int64(payload.StudentID)),
		attribute.Int64("enrollment.classroom_id", int64(classroomID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.MembershipResponse{}, err
	}

	student, err := s.actors.GetByID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MembershipResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.MembershipResponse{}, err
	}
	if student.Role != models.RoleStudent {
		observability.WorkflowSubmissions().WithLabelValues("enrollment", "invalid_applicant").Inc()
		return dto.MembershipResponse{}, ErrInvalidApplicant
	}

	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MembershipResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.MembershipResponse{}, err
	}
	if !classroom.IsActive {
		observability.WorkflowSubmissions().WithLabelValues("enrollment", "conflict").Inc()
		return dto.MembershipResponse{}, ErrClassroomInactive
	}

	membership := models.Membership{
		ActorID:        payload.StudentID,
		ClassroomID:    classroomID,
		MembershipRole: models.MembershipRoleStudent,
		Status:         models.MembershipStatusPending,
	}

	if err := s.memberships.CreateEnrollment(ctx, &membership); err != nil {
		if errors.Is(err, repository.ErrDuplicateMembership) {
			observability.WorkflowSubmissions().WithLabelValues("enrollment", "conflict").Inc()
			return dto.MembershipResponse{}, ErrConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence_failed")
		return dto.MembershipResponse{}, err
	}

	observability.WorkflowSubmissions().WithLabelValues("enrollment", "accepted").Inc()
	s.recordActivity(ctx, student.ID, string(student.Role), "enrollment.submitted", membership.ID, map[string]interface{}{
		"classroom_id": classroomID,
	})
	s.logger.Info().
		Uint("membership_id", membership.ID).
		Uint("student_id", membership.ActorID).
		Uint("classroom_id", membership.ClassroomID).
		Msg("enrollment submitted")

	return dto.NewMembershipResponse(membership), nil
}

func (s *enrollmentService) ListByClassroom(ctx context.Context, reviewer session.Actor, classroomID uint, status string) ([]dto.MembershipResponse, error) {
	if err := s.authorizeOwner(ctx, reviewer, classroomID); err != nil {
		return nil, err
	}

	memberships, err := s.memberships.ListByClassroom(ctx, classroomID, models.MembershipStatus(status))
	if err != nil {
		return nil, err
	}
	return dto.NewMembershipResponses(memberships), nil
}

func (s *enrollmentService) Decide(ctx context.Context, membershipID uint, reviewer session.Actor, payload dto.MembershipDecisionRequest) (dto.MembershipResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.decide", trace.WithAttributes(
		attribute.Int64("membership.id", int64(membershipID)),
		attribute.Int64("membership.reviewer_id", int64(reviewer.ID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.MembershipResponse{}, err
	}

	membership, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MembershipResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.MembershipResponse{}, err
	}

	if err := s.authorizeOwner(ctx, reviewer, membership.ClassroomID); err != nil {
		return dto.MembershipResponse{}, err
	}
	if membership.ActorID == reviewer.ID {
		s.rejectReviewer(ctx, reviewer, membershipID)
		return dto.MembershipResponse{}, ErrSelfReview
	}

	decided, err := s.memberships.Decide(ctx, membershipID, models.MembershipStatus(payload.Status), reviewer.ID, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotPending):
			observability.WorkflowDecisions().WithLabelValues("enrollment", payload.Status, "already_reviewed").Inc()
			return dto.MembershipResponse{}, ErrAlreadyReviewed
		case errors.Is(err, repository.ErrClassroomFull):
			observability.WorkflowDecisions().WithLabelValues("enrollment", payload.Status, "capacity").Inc()
			return dto.MembershipResponse{}, ErrClassroomFull
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.MembershipResponse{}, ErrNotFound
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "transition_failed")
			return dto.MembershipResponse{}, err
		}
	}

	observability.WorkflowDecisions().WithLabelValues("enrollment", payload.Status, "applied").Inc()
	s.cache.Invalidate(ctx, ClassroomCountsKey(decided.ClassroomID))
	s.recordActivity(ctx, reviewer.ID, string(reviewer.Role), "enrollment."+payload.Status, decided.ID, map[string]interface{}{
		"student_id":   decided.ActorID,
		"classroom_id": decided.ClassroomID,
	})

	s.logger.Info().Uint("membership_id", decided.ID).Str("status", payload.Status).Msg("enrollment decided")
	span.SetStatus(codes.Ok, "decided")

	return dto.NewMembershipResponse(decided), nil
}

func (s *enrollmentService) authorizeOwner(ctx context.Context, reviewer session.Actor, classroomID uint) error {
	if reviewer.Role != models.RoleMentor || !reviewer.IsMaster {
		s.rejectReviewer(ctx, reviewer, classroomID)
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
		s.rejectReviewer(ctx, reviewer, classroomID)
		return ErrForbidden
	}
	return nil
}

func (s *enrollmentService) rejectReviewer(ctx context.Context, reviewer session.Actor, entityID uint) {
	observability.ForbiddenReviews().WithLabelValues("enrollment").Inc()
	s.logger.Warn().
		Uint("entity_id", entityID).
		Uint("reviewer_id", reviewer.ID).
		Str("reviewer_role", string(reviewer.Role)).
		Msg("unauthorized review attempt")
	s.recordActivity(ctx, reviewer.ID, string(reviewer.Role), "enrollment.review_forbidden", entityID, nil)
}

func (s *enrollmentService) recordActivity(ctx context.Context, actorID uint, role, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := entityID
	_ = s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		ActorRole:  role,
		Action:     action,
		EntityType: "membership",
		EntityID:   &id,
		Metadata:   metadata,
	})
}
