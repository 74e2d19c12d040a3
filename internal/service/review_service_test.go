package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/maestro-api/internal/dto"
	"github.com/noah-isme/maestro-api/internal/models"
	"github.com/noah-isme/maestro-api/internal/repository"
	"github.com/noah-isme/maestro-api/internal/session"
)

func newReviewService(t *testing.T, db *gorm.DB, redisClient *redis.Client) ReviewService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewReviewService(
		repository.NewMasterRequestRepository(db),
		repository.NewStaffRequestRepository(db),
		repository.NewResignationRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewActorRepository(db),
		repository.NewClassroomRepository(db),
		validate,
		NewReviewCache(redisClient, time.Minute, zerolog.Nop()),
		zerolog.Nop(),
	)
}

func TestClassroomRequestsOwnerGated(t *testing.T) {
	db := setupServiceDB(t)
	svc := newReviewService(t, db, nil)
	ctx := context.Background()

	classroom := models.Classroom{ID: 500, Name: "Choir", OwnerID: 50, MaxCapacity: 30, IsActive: true}
	require.NoError(t, db.Create(&classroom).Error)

	stranger := session.Actor{ID: 51, Role: models.RoleMentor, IsMaster: true}
	_, err := svc.ClassroomRequests(ctx, stranger, classroom.ID, dto.ReviewFilter{})
	require.ErrorIs(t, err, ErrForbidden)

	student := session.Actor{ID: 50, Role: models.RoleStudent}
	_, err = svc.ClassroomRequests(ctx, student, classroom.ID, dto.ReviewFilter{})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestClassroomRequestsBucketsAndSearch(t *testing.T) {
	db := setupServiceDB(t)
	svc := newReviewService(t, db, nil)
	ctx := context.Background()

	classroom := models.Classroom{ID: 501, Name: "Brass", OwnerID: 52, MaxCapacity: 30, IsActive: true}
	alice := models.Actor{ID: 53, DisplayName: "Alice Reed", Email: "alice@example.com", Role: models.RoleMentor}
	bruno := models.Actor{ID: 54, DisplayName: "Bruno Keys", Email: "bruno@example.com", Role: models.RoleMentor}
	require.NoError(t, db.Create(&classroom).Error)
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bruno).Error)

	pending := models.StaffRequest{MentorID: alice.ID, ClassroomID: classroom.ID, Message: "trumpet sectional help", Status: models.RequestStatusPending}
	approved := models.StaffRequest{MentorID: bruno.ID, ClassroomID: classroom.ID, Message: "keyboard accompaniment", Status: models.RequestStatusApproved}
	require.NoError(t, db.Create(&pending).Error)
	require.NoError(t, db.Create(&approved).Error)

	resignation := models.ResignationRequest{MentorID: bruno.ID, ClassroomID: classroom.ID, Reason: "schedule conflict", Status: models.RequestStatusPending}
	require.NoError(t, db.Create(&resignation).Error)

	enrollment := models.Membership{ActorID: 55, ClassroomID: classroom.ID, MembershipRole: models.MembershipRoleStudent, Status: models.MembershipStatusPending}
	require.NoError(t, db.Create(&enrollment).Error)

	reviewer := session.Actor{ID: 52, Role: models.RoleMentor, IsMaster: true}
	response, err := svc.ClassroomRequests(ctx, reviewer, classroom.ID, dto.ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, response.StaffRequests.Pending, 1)
	require.Len(t, response.StaffRequests.Approved, 1)
	require.Len(t, response.Resignations.Pending, 1)
	require.Len(t, response.PendingEnrollments, 1)

	// Counts cover requests regardless of the text filter.
	require.Equal(t, 3, response.Counts.Pending, "staff + resignation + enrollment")
	require.Equal(t, 1, response.Counts.Approved)

	// Free-text search matches applicant names.
	filtered, err := svc.ClassroomRequests(ctx, reviewer, classroom.ID, dto.ReviewFilter{Search: "alice"})
	require.NoError(t, err)
	require.Len(t, filtered.StaffRequests.Pending, 1)
	require.Empty(t, filtered.StaffRequests.Approved)
	require.Empty(t, filtered.Resignations.Pending)

	// And message bodies.
	byText, err := svc.ClassroomRequests(ctx, reviewer, classroom.ID, dto.ReviewFilter{Search: "schedule"})
	require.NoError(t, err)
	require.Empty(t, byText.StaffRequests.Pending)
	require.Len(t, byText.Resignations.Pending, 1)
}

func TestClassroomCountsUsesCacheUntilInvalidated(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := setupServiceDB(t)
	svc := newReviewService(t, db, redisClient)
	ctx := context.Background()

	classroom := models.Classroom{ID: 502, Name: "Strings", OwnerID: 56, MaxCapacity: 30, IsActive: true}
	require.NoError(t, db.Create(&classroom).Error)

	req := models.StaffRequest{MentorID: 57, ClassroomID: classroom.ID, Message: "violin support", Status: models.RequestStatusPending}
	require.NoError(t, db.Create(&req).Error)

	reviewer := session.Actor{ID: 56, Role: models.RoleMentor, IsMaster: true}
	counts, err := svc.ClassroomCounts(ctx, reviewer, classroom.ID)
	require.NoError(t, err)
	require.Equal(t, 1, counts.Pending)
	require.True(t, mini.Exists(ClassroomCountsKey(classroom.ID)), "miss must write through")

	// New rows are invisible while the cached entry lives.
	more := models.StaffRequest{MentorID: 58, ClassroomID: classroom.ID, Message: "viola support", Status: models.RequestStatusPending}
	require.NoError(t, db.Create(&more).Error)

	cached, err := svc.ClassroomCounts(ctx, reviewer, classroom.ID)
	require.NoError(t, err)
	require.Equal(t, 1, cached.Pending)

	// After invalidation the counts are recomputed.
	mini.Del(ClassroomCountsKey(classroom.ID))
	fresh, err := svc.ClassroomCounts(ctx, reviewer, classroom.ID)
	require.NoError(t, err)
	require.Equal(t, 2, fresh.Pending)
}

func TestMasterRoleRequestsAdminOnly(t *testing.T) {
	db := setupServiceDB(t)
	svc := newReviewService(t, db, nil)
	ctx := context.Background()

	mentor := session.Actor{ID: 60, Role: models.RoleMentor, IsMaster: true}
	_, err := svc.MasterRoleRequests(ctx, mentor, dto.ReviewFilter{})
	require.ErrorIs(t, err, ErrForbidden)

	req := models.MasterRoleRequest{MentorID: 61, Reason: "lead classrooms", Experience: "e", PlannedClassrooms: "p", Status: models.RequestStatusPending}
	require.NoError(t, db.Create(&req).Error)

	admin := session.Actor{ID: 62, Role: models.RoleAdmin}
	buckets, err := svc.MasterRoleRequests(ctx, admin, dto.ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, buckets.Pending, 1)
	require.Equal(t, 1, buckets.Counts.Pending)
}

func TestMentorRequestsAggregatesOwnSubmissions(t *testing.T) {
	db := setupServiceDB(t)
	svc := newReviewService(t, db, nil)
	ctx := context.Background()

	staff := models.StaffRequest{MentorID: 70, ClassroomID: 700, Message: "m", Status: models.RequestStatusPending}
	resignation := models.ResignationRequest{MentorID: 70, ClassroomID: 701, Reason: "r", Status: models.RequestStatusApproved}
	other := models.StaffRequest{MentorID: 71, ClassroomID: 700, Message: "m", Status: models.RequestStatusPending}
	require.NoError(t, db.Create(&staff).Error)
	require.NoError(t, db.Create(&resignation).Error)
	require.NoError(t, db.Create(&other).Error)

	response, err := svc.MentorRequests(ctx, 70)
	require.NoError(t, err)
	require.Equal(t, uint(70), response.MentorID)
	require.Len(t, response.StaffRequests, 1)
	require.Len(t, response.Resignations, 1)
}
