package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/maestro-api/internal/models"
)

// ActorRepository reads actor records. Actors are owned by the identity
// service; the workflow engine mutates only the master flag, and does so
// inside the master-request decision transaction.
type ActorRepository interface {
	GetByID(ctx context.Context, id uint) (models.Actor, error)
}

type actorRepository struct {
	db *gorm.DB
}

// NewActorRepository constructs the repository implementation.
func NewActorRepository(db *gorm.DB) ActorRepository {
	return &actorRepository{db: db}
}

func (r *actorRepository) GetByID(ctx context.Context, id uint) (models.Actor, error) {
	var actor models.Actor
	err := r.db.WithContext(ctx).First(&actor, id).Error
	return actor, err
}
