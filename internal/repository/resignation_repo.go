package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/maestro-api/internal/models"
)

// ResignationRepository stores staff resignation applications.
type ResignationRepository interface {
	Create(ctx context.Context, req *models.ResignationRequest) error
	GetByID(ctx context.Context, id uint) (models.ResignationRequest, error)
	ListByClassroom(ctx context.Context, classroomID uint, filter RequestFilter) ([]models.ResignationRequest, error)
	ListByMentor(ctx context.Context, mentorID uint, filter RequestFilter) ([]models.ResignationRequest, error)
	Decide(ctx context.Context, id uint, decision Decision) (models.ResignationRequest, error)
}

type resignationRepository struct {
	db *gorm.DB
}

// NewResignationRepository constructs the repository implementation.
func NewResignationRepository(db *gorm.DB) ResignationRepository {
	return &resignationRepository{db: db}
}

// Create inserts the request unless one is already pending for the same
// (mentor, classroom) pair. The pre-check gives the common case a clean
// error; the partial unique index on the pair catches the concurrent race.
func (r *resignationRepository) Create(ctx context.Context, req *models.ResignationRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ResignationRequest{}).
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

func (r *resignationRepository) GetByID(ctx context.Context, id uint) (models.ResignationRequest, error) {
	var req models.ResignationRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	return req, err
}

func (r *resignationRepository) ListByClassroom(ctx context.Context, classroomID uint, filter RequestFilter) ([]models.ResignationRequest, error) {
	query := r.db.WithContext(ctx).Where("classroom_id = ?", classroomID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var reqs []models.ResignationRequest
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *resignationRepository) ListByMentor(ctx context.Context, mentorID uint, filter RequestFilter) ([]models.ResignationRequest, error) {
	query := r.db.WithContext(ctx).Where("mentor_id = ?", mentorID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var reqs []models.ResignationRequest
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// Decide applies the terminal transition. Approval re-checks the staff
// membership precondition and deletes the membership inside the same
// transaction; a membership removed out-of-band after submission surfaces as
// ErrStaleMembership instead of a silent success.
func (r *resignationRepository) Decide(ctx context.Context, id uint, decision Decision) (models.ResignationRequest, error) {
	var req models.ResignationRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			return err
		}
		if req.Status != models.RequestStatusPending {
			return ErrNotPending
		}

		if decision.Status == models.RequestStatusApproved {
			var membership models.Membership
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("actor_id = ? AND classroom_id = ? AND membership_role = ? AND status = ?",
					req.MentorID, req.ClassroomID, models.MembershipRoleStaff, models.MembershipStatusActive).
				First(&membership).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStaleMembership
			}
			if err != nil {
				return err
			}
			if err := tx.Delete(&models.Membership{}, membership.ID).Error; err != nil {
				return err
			}
		}

		result := tx.Model(&models.ResignationRequest{}).
			Where("id = ? AND status = ?", id, models.RequestStatusPending).
			Updates(map[string]interface{}{
				"status":       decision.Status,
				"master_notes": decision.Notes,
				"reviewed_by":  decision.ReviewerID,
				"reviewed_at":  decision.DecidedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotPending
		}

		req.Status = decision.Status
		req.MasterNotes = decision.Notes
		reviewer := decision.ReviewerID
		decidedAt := decision.DecidedAt
		req.ReviewedBy = &reviewer
		req.ReviewedAt = &decidedAt
		return nil
	})
	if err != nil {
		return models.ResignationRequest{}, err
	}
	return req, nil
}
