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

func requirementRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "description", "sector", "approver_ids", "current_approver_id", "status", "created_by", "version", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, "Req "+id, "desc", "TI", `["u1","u2"]`, "u1", "PENDING", "author-1", 1, time.Now(), time.Now())
	}
	return rows
}

func TestRequirementRepositoryGetScansApproverList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequirementRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM functional_requirements WHERE id = $1")).
		WithArgs("req-1").
		WillReturnRows(requirementRows("req-1"))

	req, err := repo.GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	require.Equal(t, models.StringList{"u1", "u2"}, req.ApproverIDs)
	require.NotNil(t, req.CurrentApproverID)
	require.Equal(t, "u1", *req.CurrentApproverID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirementRepositoryListPendingForApprover(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequirementRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM functional_requirements fr WHERE fr.status IN ($1) AND fr.current_approver_id = $2")).
		WithArgs("PENDING", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY fr.created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs("PENDING", "u1", 20, 0).
		WillReturnRows(requirementRows("req-1"))

	requirements, pagination, err := repo.List(context.Background(), models.RequirementFilter{
		Status:            []models.RequirementStatus{models.RequirementStatusPending},
		CurrentApproverID: "u1",
	})
	require.NoError(t, err)
	require.Len(t, requirements, 1)
	require.Equal(t, 1, pagination.TotalCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirementRepositoryListHandledUsesSignatureJoin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequirementRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("EXISTS (SELECT 1 FROM signatures s WHERE s.requirement_id = fr.id AND s.signer_id = $1)")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY fr.created_at DESC")).
		WithArgs("u1", 20, 0).
		WillReturnRows(requirementRows())

	requirements, _, err := repo.List(context.Background(), models.RequirementFilter{SignerID: "u1"})
	require.NoError(t, err)
	require.Empty(t, requirements)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirementRepositoryListSignatures(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRequirementRepository(db)
	rows := sqlmock.NewRows([]string{"id", "requirement_id", "signer_id", "status", "token", "comment", "signed_at"}).
		AddRow("sig-1", "req-1", "u1", "SIGNED", "aaaa", nil, time.Now()).
		AddRow("sig-2", "req-1", "u2", "REJECTED", "bbbb", "não atende", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM signatures WHERE requirement_id = $1 ORDER BY signed_at ASC")).
		WithArgs("req-1").
		WillReturnRows(rows)

	signatures, err := repo.ListSignatures(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, signatures, 2)
	require.Equal(t, models.SignatureStatusRejected, signatures[1].Status)
	require.NotNil(t, signatures[1].Comment)
	require.NoError(t, mock.ExpectationsWereMet())
}
