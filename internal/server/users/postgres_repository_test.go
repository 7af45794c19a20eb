package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridmesh/authcore/internal/auth"
	"github.com/gridmesh/authcore/internal/common"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var userCols = []string{"id", "username", "email", "password_hash", "role", "created_at"}

func TestPostgresCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "alice@example.com", "phc-digest", "CLIENT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("uuid-1", now))

	user, err := repo.Create(context.Background(), &User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "phc-digest",
		Role:         auth.RoleClient,
	})
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", user.ID)
	assert.WithinDuration(t, now, user.CreatedAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	_, err := repo.Create(context.Background(), &User{})
	assert.ErrorIs(t, err, ErrDuplicateEmailRow)
}

func TestPostgresGetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("uuid-1", "alice", "alice@example.com", "phc-digest", "ADMIN", now))

		user, err := repo.GetByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "uuid-1", user.ID)
		assert.Equal(t, auth.RoleAdmin, user.Role)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows(userCols))

		_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestPostgresGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("uuid-1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("uuid-1", "alice", "alice@example.com", "phc-digest", "CLIENT", now))

	user, err := repo.GetByID(context.Background(), "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestPostgresExistsByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostgresCount(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
