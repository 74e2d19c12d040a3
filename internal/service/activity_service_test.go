package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/maestro-api/internal/models"
	"github.com/noah-isme/maestro-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func TestActivityServiceRecordNormalisesFields(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, zerolog.Nop())

	err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  "Admin",
		Action:     "Master_Role.Approved",
		EntityType: "Master_Role_Request",
		EntityID:   ptrUint(5),
		Metadata: map[string]interface{}{
			"verdict": "approved",
			"attempt": 2,
		},
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)

	entry := repo.entries[0]
	require.Equal(t, "admin", entry.ActorRole)
	require.Equal(t, "master_role.approved", entry.Action)
	require.Equal(t, "master_role_request", entry.EntityType)
	require.Equal(t, "approved", entry.Metadata["verdict"])
}

func TestActivityServiceRecordRejectsEmptyAction(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, zerolog.Nop())

	err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  "admin",
		Action:     "   ",
		EntityType: "membership",
	})
	require.Error(t, err)
}

func TestSanitizeMetadataDropsUnsafeValues(t *testing.T) {
	clean := sanitizeMetadata(map[string]interface{}{
		"note":    "kept",
		"count":   3,
		"nested":  map[string]interface{}{"x": 1},
		"channel": make(chan int),
		"  ":      "blank key",
	})

	require.Equal(t, "kept", clean["note"])
	require.Equal(t, 3, clean["count"])
	require.NotContains(t, clean, "nested")
	require.NotContains(t, clean, "channel")
	require.Len(t, clean, 2)
}

func ptrUint(v uint) *uint {
	return &v
}
