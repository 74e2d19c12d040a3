package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/maestro-api/internal/models"
)

// MembershipRepository stores classroom memberships.
type MembershipRepository interface {
	CreateEnrollment(ctx context.Context, membership *models.Membership) error
	GetByID(ctx context.Context, id uint) (models.Membership, error)
	ListByClassroom(ctx context.Context, classroomID uint, status models.MembershipStatus) ([]models.Membership, error)
	ListByActor(ctx context.Context, actorID uint, status models.MembershipStatus) ([]models.Membership, error)
	FindActiveStaff(ctx context.Context, mentorID, classroomID uint) (models.Membership, error)
	Decide(ctx context.Context, id uint, status models.MembershipStatus, reviewerID uint, decidedAt time.Time) (models.Membership, error)
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository constructs the repository implementation.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// CreateEnrollment inserts a pending membership unless a non-rejected row
// already exists for the (actor, classroom) pair. The pre-check gives the
// common case a clean error; the partial unique index on the pair catches
// the concurrent race.
func (r *membershipRepository) CreateEnrollment(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Membership{}).
			Where("actor_id = ? AND classroom_id = ? AND status <> ?",
				membership.ActorID, membership.ClassroomID, models.MembershipStatusRejected).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateMembership
		}
		if err := tx.Create(membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMembership
			}
			return err
		}
		return nil
	})
}

func (r *membershipRepository) GetByID(ctx context.Context, id uint) (models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).First(&membership, id).Error
	return membership, err
}

func (r *membershipRepository) ListByClassroom(ctx context.Context, classroomID uint, status models.MembershipStatus) ([]models.Membership, error) {
	query := r.db.WithContext(ctx).Where("classroom_id = ?", classroomID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var memberships []models.Membership
	if err := query.Order("created_at DESC").Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepository) ListByActor(ctx context.Context, actorID uint, status models.MembershipStatus) ([]models.Membership, error) {
	query := r.db.WithContext(ctx).Where("actor_id = ?", actorID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var memberships []models.Membership
	if err := query.Order("created_at DESC").Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepository) FindActiveStaff(ctx context.Context, mentorID, classroomID uint) (models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND classroom_id = ? AND membership_role = ? AND status = ?",
			mentorID, classroomID, models.MembershipRoleStaff, models.MembershipStatusActive).
		First(&membership).Error
	return membership, err
}

// Decide admits or rejects a pending membership. Admission re-checks the
// classroom capacity inside the transaction.
func (r *membershipRepository) Decide(ctx context.Context, id uint, status models.MembershipStatus, reviewerID uint, decidedAt time.Time) (models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&membership, id).Error; err != nil {
			return err
		}
		if membership.Status != models.MembershipStatusPending {
			return ErrNotPending
		}

		if status == models.MembershipStatusActive && membership.MembershipRole == models.MembershipRoleStudent {
			// Lock the classroom, not just the membership: two approvals of
			// different pending rows for the same classroom must serialize
			// here or both would pass the capacity count.
			var classroom models.Classroom
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&classroom, membership.ClassroomID).Error; err != nil {
				return err
			}

			var active int64
			if err := tx.Model(&models.Membership{}).
				Where("classroom_id = ? AND membership_role = ? AND status = ?",
					membership.ClassroomID, models.MembershipRoleStudent, models.MembershipStatusActive).
				Count(&active).Error; err != nil {
				return err
			}
			if classroom.MaxCapacity > 0 && active >= int64(classroom.MaxCapacity) {
				return ErrClassroomFull
			}
		}

		result := tx.Model(&models.Membership{}).
			Where("id = ? AND status = ?", id, models.MembershipStatusPending).
			Updates(map[string]interface{}{
				"status":      status,
				"reviewed_by": reviewerID,
				"reviewed_at": decidedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotPending
		}

		membership.Status = status
		reviewer := reviewerID
		at := decidedAt
		membership.ReviewedBy = &reviewer
		membership.ReviewedAt = &at
		return nil
	})
	if err != nil {
		return models.Membership{}, err
	}
	return membership, nil
}
