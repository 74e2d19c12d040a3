package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/maestro-api/internal/models"
)

// MasterRequestRepository stores master-role applications.
type MasterRequestRepository interface {
	Create(ctx context.Context, req *models.MasterRoleRequest) error
	GetByID(ctx context.Context, id uint) (models.MasterRoleRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]models.MasterRoleRequest, error)
	ListByMentor(ctx context.Context, mentorID uint) ([]models.MasterRoleRequest, error)
	Decide(ctx context.Context, id uint, decision Decision) (models.MasterRoleRequest, error)
}

type masterRequestRepository struct {
	db *gorm.DB
}

// NewMasterRequestRepository constructs the repository implementation.
func NewMasterRequestRepository(db *gorm.DB) MasterRequestRepository {
	return &masterRequestRepository{db: db}
}

// Create inserts the request unless the mentor already has one pending. The
// pre-check gives the common case a clean error; the partial unique index on
// (mentor_id) WHERE status='pending' catches the race two concurrent
// submissions can slip through it.
func (r *masterRequestRepository) Create(ctx context.Context, req *models.MasterRoleRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MasterRoleRequest{}).
			Where("mentor_id = ? AND status = ?", req.MentorID, models.RequestStatusPending).
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

func (r *masterRequestRepository) GetByID(ctx context.Context, id uint) (models.MasterRoleRequest, error) {
	var req models.MasterRoleRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	return req, err
}

func (r *masterRequestRepository) List(ctx context.Context, filter RequestFilter) ([]models.MasterRoleRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.MasterRoleRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var reqs []models.MasterRoleRequest
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *masterRequestRepository) ListByMentor(ctx context.Context, mentorID uint) ([]models.MasterRoleRequest, error) {
	var reqs []models.MasterRoleRequest
	err := r.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// Decide applies the terminal transition and, on approval, flips the
// mentor's master flag inside the same transaction. A request that is no
// longer pending fails with ErrNotPending and leaves all state untouched.
func (r *masterRequestRepository) Decide(ctx context.Context, id uint, decision Decision) (models.MasterRoleRequest, error) {
	var req models.MasterRoleRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			return err
		}
		if req.Status != models.RequestStatusPending {
			return ErrNotPending
		}

		result := tx.Model(&models.MasterRoleRequest{}).
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
			if err := tx.Model(&models.Actor{}).
				Where("id = ?", req.MentorID).
				Update("is_master", true).Error; err != nil {
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
		return models.MasterRoleRequest{}, err
	}
	return req, nil
}
