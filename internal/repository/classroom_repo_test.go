package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/maestro-api/internal/models"
)

func TestClassroomRepoPersistsZeroValuedFlags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassroomRepository(db)
	ctx := context.Background()

	closed := models.Classroom{ID: 10, Name: "Theory I", OwnerID: 1, MaxCapacity: 0, IsActive: false}
	require.NoError(t, db.Create(&closed).Error)

	found, err := repo.GetByID(ctx, closed.ID)
	require.NoError(t, err)
	require.False(t, found.IsActive, "a deactivated classroom must stay deactivated after insert")
	require.Zero(t, found.MaxCapacity)

	open := models.Classroom{ID: 11, Name: "Theory II", OwnerID: 1, MaxCapacity: 12, IsActive: true}
	require.NoError(t, db.Create(&open).Error)

	found, err = repo.GetByID(ctx, open.ID)
	require.NoError(t, err)
	require.True(t, found.IsActive)
	require.Equal(t, 12, found.MaxCapacity)
}
