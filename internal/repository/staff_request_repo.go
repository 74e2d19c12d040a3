package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/maestro-api/internal/models"
)

// StaffRequestRepository stores staff-join applications.
type StaffRequestRepository interface {
	Create(ctx context.Context, req *models.StaffRequest) error
	GetByID(ctx context.Context, id uint) (models.StaffRequest, error)
	ListByClassroom(ctx context.Context, classroomID uint, filter RequestFilter) ([]models.StaffRequest, error)
	ListByMentor(ctx context.Context, mentorID uint, filter RequestFilter) ([]models.StaffRequest, error)
	Decide(ctx context.Context, id uint, decision Decision) (models.StaffRequest, error)
}

type staffRequestRepository struct {
	db *gorm.DB
}

// NewStaffRequestRepository constructs the repository implementation.
func NewStaffRequestRepository(db *gorm.DB) StaffRequestRepository {
	return &staffRequestRepository{db: db}
}

// Create inserts the request unless one is already pending for the same
// (mentor, classroom) pair. The pre-check gives the common case a clean
// error; the partial unique index on the pair catches the concurrent race.
func (r *staffRequestRepository) Create(ctx context.Context, req *models.StaffRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.StaffRequest{}).
			Where("mentor_id = ? AND classroom_id = ? AND status = ?",
				req.MentorID, req.ClassroomID, models.RequestStatusPending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicatePending
		}
		if err := tx.Create(req).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicatePending
			}
			return err
		}
		return nil
	})
}

func (r *staffRequestRepository) GetByID(ctx context.Context, id uint) (models.StaffRequest, error) {
	var req models.StaffRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	return req, err
}

func (r *staffRequestRepository) ListByClassroom(ctx context.Context, classroomID uint, filter RequestFilter) ([]models.StaffRequest, error) {
	query := r.db.WithContext(ctx).Where("classroom_id = ?", classroomID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var reqs []models.StaffRequest
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *staffRequestRepository) ListByMentor(ctx context.Context, mentorID uint, filter RequestFilter) ([]models.StaffRequest, error) {
	query := r.db.WithContext(ctx).Where("mentor_id = ?", mentorID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var reqs []models.StaffRequest
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// Decide applies the terminal transition and, on approval, creates or
// reactivates the staff membership for the (mentor, classroom) pair inside
// the same transaction. Reusing an existing row keeps the one-non-rejected-
// membership-per-pair invariant intact.
func (r *staffRequestRepository) Decide(ctx context.Context, id uint, decision Decision) (models.StaffRequest, error) {
	var req models.StaffRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			return err
		}
		if req.Status != models.RequestStatusPending {
			return ErrNotPending
		}

		result := tx.Model(&models.StaffRequest{}).
			Where("id = ? AND status = ?", id, models.RequestStatusPending).
			Updates(map[string]interface{}{
				"status":      decision.Status,
				"admin_notes": decision.Notes,
				"reviewed_by": decision.ReviewerID,
				"reviewed_at": decision.DecidedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotPending
		}

		if decision.Status == models.RequestStatusApproved {
			if err := upsertStaffMembership(tx, req.MentorID, req.ClassroomID, decision); err != nil {
				return err
			}
		}

		req.Status = decision.Status
		req.AdminNotes = decision.Notes
		reviewer := decision.ReviewerID
		decidedAt := decision.DecidedAt
		req.ReviewedBy = &reviewer
		req.ReviewedAt = &decidedAt
		return nil
	})
	if err != nil {
		return models.StaffRequest{}, err
	}
	return req, nil
}

func upsertStaffMembership(tx *gorm.DB, mentorID, classroomID uint, decision Decision) error {
	var existing models.Membership
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("actor_id = ? AND classroom_id = ?", mentorID, classroomID).
		Order("created_at DESC").
		First(&existing).Error

	reviewer := decision.ReviewerID
	decidedAt := decision.DecidedAt

	switch {
	case err == nil:
		return tx.Model(&models.Membership{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"membership_role": models.MembershipRoleStaff,
				"status":          models.MembershipStatusActive,
				"reviewed_by":     reviewer,
				"reviewed_at":     decidedAt,
			}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		membership := models.Membership{
			ActorID:        mentorID,
			ClassroomID:    classroomID,
			MembershipRole: models.MembershipRoleStaff,
			Status:         models.MembershipStatusActive,
			ReviewedBy:     &reviewer,
			ReviewedAt:     &decidedAt,
		}
		return tx.Create(&membership).Error
	default:
		return err
	}
}
