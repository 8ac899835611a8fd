package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRoleRepositoryIsCommitteeMember(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRoleRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM committee_memberships WHERE actor_id = $1 AND active")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	member, err := repo.IsCommitteeMember(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, member)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryFindValidatorAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRoleRepository(db)
	rows := sqlmock.NewRows([]string{"id", "actor_id", "organization_id", "active", "created_at"}).
		AddRow("va-1", "user-1", "org-1", true, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM validator_assignments WHERE actor_id = $1 AND active LIMIT 1")).
		WithArgs("user-1").
		WillReturnRows(rows)

	assignment, err := repo.FindValidatorAssignment(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, assignment)
	require.Equal(t, "org-1", assignment.OrganizationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryFindValidatorAssignmentNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRoleRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM validator_assignments WHERE actor_id = $1 AND active LIMIT 1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor_id", "organization_id", "active", "created_at"}))

	assignment, err := repo.FindValidatorAssignment(context.Background(), "user-1")
	require.NoError(t, err)
	require.Nil(t, assignment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryOrganizationHasValidator(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRoleRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM validator_assignments WHERE organization_id = $1 AND active")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	has, err := repo.OrganizationHasValidator(context.Background(), "org-1")
	require.NoError(t, err)
	require.False(t, has)
	require.NoError(t, mock.ExpectationsWereMet())
}
