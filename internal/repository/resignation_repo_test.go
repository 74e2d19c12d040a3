package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/maestro-api/internal/models"
)

func TestResignationDecideApprovalRemovesMembership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResignationRepository(db)
	ctx := context.Background()

	membership := models.Membership{ActorID: 5, ClassroomID: 50, MembershipRole: models.MembershipRoleStaff, Status: models.MembershipStatusActive}
	require.NoError(t, db.Create(&membership).Error)

	req := models.ResignationRequest{MentorID: 5, ClassroomID: 50, Reason: "moving on", Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, &req))

	decided, err := repo.Decide(ctx, req.ID, Decision{
		Status:     models.RequestStatusApproved,
		ReviewerID: 60,
		Notes:      "thanks",
		DecidedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusApproved, decided.Status)
	require.Equal(t, "thanks", decided.MasterNotes)

	var count int64
	require.NoError(t, db.Model(&models.Membership{}).Where("actor_id = ? AND classroom_id = ?", 5, 50).Count(&count).Error)
	require.Zero(t, count)
}

func TestResignationDecideFailsWhenMembershipGone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResignationRepository(db)
	ctx := context.Background()

	membership := models.Membership{ActorID: 6, ClassroomID: 60, MembershipRole: models.MembershipRoleStaff, Status: models.MembershipStatusActive}
	require.NoError(t, db.Create(&membership).Error)

	req := models.ResignationRequest{MentorID: 6, ClassroomID: 60, Reason: "leaving", Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, &req))

	// Membership removed out-of-band between submission and decision.
	require.NoError(t, db.Delete(&models.Membership{}, membership.ID).Error)

	_, err := repo.Decide(ctx, req.ID, Decision{Status: models.RequestStatusApproved, ReviewerID: 60, DecidedAt: time.Now().UTC()})
	require.ErrorIs(t, err, ErrStaleMembership)

	// The request is still pending so the mentor can be re-reviewed.
	var reloaded models.ResignationRequest
	require.NoError(t, db.First(&reloaded, req.ID).Error)
	require.Equal(t, models.RequestStatusPending, reloaded.Status)
}

func TestResignationDecideRejectionKeepsMembership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResignationRepository(db)
	ctx := context.Background()

	membership := models.Membership{ActorID: 7, ClassroomID: 70, MembershipRole: models.MembershipRoleStaff, Status: models.MembershipStatusActive}
	require.NoError(t, db.Create(&membership).Error)

	req := models.ResignationRequest{MentorID: 7, ClassroomID: 70, Reason: "thinking about it", Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, &req))

	_, err := repo.Decide(ctx, req.ID, Decision{Status: models.RequestStatusRejected, ReviewerID: 60, DecidedAt: time.Now().UTC()})
	require.NoError(t, err)

	var reloaded models.Membership
	require.NoError(t, db.First(&reloaded, membership.ID).Error)
	require.Equal(t, models.MembershipStatusActive, reloaded.Status)
}
