package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/maestro-api/internal/models"
)

// ClassroomRepository reads classroom records. Classrooms are created and
// deactivated by the external catalog service.
type ClassroomRepository interface {
	GetByID(ctx context.Context, id uint) (models.Classroom, error)
}

type classroomRepository struct {
	db *gorm.DB
}

// NewClassroomRepository constructs the repository implementation.
func NewClassroomRepository(db *gorm.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

func (r *classroomRepository) GetByID(ctx context.Context, id uint) (models.Classroom, error) {
	var classroom models.Classroom
	err := r.db.WithContext(ctx).First(&classroom, id).Error
	return classroom, err
}
