package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sorties-app/sorties-api/internal/models"
)

func TestAuditLogRepositorySearchMatchesAcrossFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditLogRepository(db)

	entries := []models.AuditLog{
		{AdminID: 1, AdminName: "Alice Martin", Action: models.AuditActionUserDeleted, TargetID: 42, Details: "compte supprimé", IPAddress: "10.0.0.1", CreatedAt: time.Now().Add(-2 * time.Hour)},
		{AdminID: 1, AdminName: "Alice Martin", Action: models.AuditActionActivityApproved, TargetID: 7, Details: "sortie validée", IPAddress: "10.0.0.1", CreatedAt: time.Now().Add(-1 * time.Hour)},
		{AdminID: 2, AdminName: "Bruno Leroy", Action: models.AuditActionUserRoleChanged, TargetID: 42, Details: "promotion admin", IPAddress: "192.168.1.9", CreatedAt: time.Now()},
	}
	for i := range entries {
		require.NoError(t, repo.Create(context.Background(), &entries[i]))
	}

	results, total, err := repo.Search(context.Background(), AuditLogFilter{Query: "ALICE"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, results, 2)
	// Reverse chronological order.
	require.Equal(t, models.AuditActionActivityApproved, results[0].Action)

	results, _, err = repo.Search(context.Background(), AuditLogFilter{Query: "42"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, _, err = repo.Search(context.Background(), AuditLogFilter{Query: "192.168"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Bruno Leroy", results[0].AdminName)

	results, total, err = repo.Search(context.Background(), AuditLogFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, results, 3)
}
