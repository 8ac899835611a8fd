package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/pmolab/gpd-api/internal/models"
)

func TestApprovalRecordRepositoryListByDemand(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApprovalRecordRepository(db)
	rows := sqlmock.NewRows([]string{"id", "demand_id", "approver_id", "level", "decision", "reason", "created_at"}).
		AddRow("rec-1", "dem-1", "manager-1", "MANAGER", "APPROVED", nil, time.Now()).
		AddRow("rec-2", "dem-1", "committee-1", "COMMITTEE", "REJECTED", "fora do escopo", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM approval_records WHERE demand_id = $1 ORDER BY created_at ASC")).
		WithArgs("dem-1").
		WillReturnRows(rows)

	records, err := repo.ListByDemand(context.Background(), "dem-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, models.ApprovalLevelCommittee, records[1].Level)
	require.NotNil(t, records[1].Reason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovalRecordRepositoryExistsFor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApprovalRecordRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE demand_id = $1 AND approver_id = $2 AND level = $3")).
		WithArgs("dem-1", "manager-1", "MANAGER").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsFor(context.Background(), "dem-1", "manager-1", models.ApprovalLevelManager)
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}
