package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "active", "last_login", "created_at", "updated_at"}).
		AddRow("user-1", "alice@example.com", "$2a$10$hash", "Alice Example", true, nil, time.Now(), time.Now())
}

func TestUserRepositoryFindByEmailCaseInsensitive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = LOWER($1)")).
		WithArgs("Alice@Example.com").
		WillReturnRows(userRows())

	user, err := repo.FindByEmail(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDisplayNames(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	rows := sqlmock.NewRows([]string{"id", "full_name"}).
		AddRow("user-1", "Alice Example").
		AddRow("user-2", "Bob Example")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name FROM users WHERE id IN ($1, $2)")).
		WithArgs("user-1", "user-2").
		WillReturnRows(rows)

	names, err := repo.DisplayNames(context.Background(), []string{"user-1", "user-2"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"user-1": "Alice Example", "user-2": "Bob Example"}, names)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDisplayNamesEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	names, err := repo.DisplayNames(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestUserRepositoryUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	ts := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login = $1, updated_at = $1 WHERE id = $2")).
		WithArgs(ts, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), "user-1", ts))
	require.NoError(t, mock.ExpectationsWereMet())
}
