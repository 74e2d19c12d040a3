package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/maestro-api/internal/dto"
	"github.com/noah-isme/maestro-api/internal/models"
	"github.com/noah-isme/maestro-api/internal/repository"
	"github.com/noah-isme/maestro-api/internal/session"
)

func newResignationService(t *testing.T, db *gorm.DB) ResignationService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewResignationService(
		repository.NewResignationRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewClassroomRepository(db),
		validate,
		nil,
		nil,
		NewReviewCache(nil, 0, zerolog.Nop()),
		zerolog.Nop(),
	)
}

func TestResignationSubmitRequiresActiveStaffMembership(t *testing.T) {
	db := setupServiceDB(t)
	svc := newResignationService(t, db)

	_, err := svc.Submit(context.Background(), dto.ResignationCreateRequest{
		MentorID:    30,
		ClassroomID: 300,
		Reason:      "relocating abroad",
	})
	require.ErrorIs(t, err, ErrNoStaffMembership)
}

func TestResignationDecideApprovalRemovesMembership(t *testing.T) {
	db := setupServiceDB(t)
	svc := newResignationService(t, db)
	ctx := context.Background()

	owner := models.Actor{ID: 31, DisplayName: "Mona", Email: "mona@example.com", Role: models.RoleMentor, IsMaster: true}
	classroom := models.Classroom{ID: 301, Name: "Drums I", OwnerID: owner.ID, MaxCapacity: 20, IsActive: true}
	membership := models.Membership{ActorID: 32, ClassroomID: classroom.ID, MembershipRole: models.MembershipRoleStaff, Status: models.MembershipStatusActive}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&classroom).Error)
	require.NoError(t, db.Create(&membership).Error)

	created, err := svc.Submit(ctx, dto.ResignationCreateRequest{
		MentorID:    32,
		ClassroomID: classroom.ID,
		Reason:      "relocating abroad",
	})
	require.NoError(t, err)

	reviewer := session.Actor{ID: owner.ID, Role: models.RoleMentor, IsMaster: true}
	decided, err := svc.Decide(ctx, created.ID, reviewer, dto.ResignationDecisionRequest{Status: "approved", MasterNotes: "good luck"})
	require.NoError(t, err)
	require.Equal(t, "approved", decided.Status)

	var count int64
	require.NoError(t, db.Model(&models.Membership{}).Where("actor_id = ?", 32).Count(&count).Error)
	require.Zero(t, count)
}

func TestResignationDecideSurfacesStaleMembership(t *testing.T) {
	db := setupServiceDB(t)
	svc := newResignationService(t, db)
	ctx := context.Background()

	owner := models.Actor{ID: 33, DisplayName: "Lior", Email: "lior@example.com", Role: models.RoleMentor, IsMaster: true}
	classroom := models.Classroom{ID: 302, Name: "Bass I", OwnerID: owner.ID, MaxCapacity: 20, IsActive: true}
	membership := models.Membership{ActorID: 34, ClassroomID: classroom.ID, MembershipRole: models.MembershipRoleStaff, Status: models.MembershipStatusActive}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&classroom).Error)
	require.NoError(t, db.Create(&membership).Error)

	created, err := svc.Submit(ctx, dto.ResignationCreateRequest{
		MentorID:    34,
		ClassroomID: classroom.ID,
		Reason:      "relocating abroad",
	})
	require.NoError(t, err)

	// The membership disappears before the decision.
	require.NoError(t, db.Delete(&models.Membership{}, membership.ID).Error)

	reviewer := session.Actor{ID: owner.ID, Role: models.RoleMentor, IsMaster: true}
	_, err = svc.Decide(ctx, created.ID, reviewer, dto.ResignationDecisionRequest{Status: "approved"})
	require.ErrorIs(t, err, ErrStaleRequest)
}
