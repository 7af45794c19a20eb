package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridmesh/authcore/internal/auth"
	"github.com/gridmesh/authcore/internal/common"
	"github.com/gridmesh/authcore/internal/dbx"
	"github.com/gridmesh/authcore/internal/password"
	"github.com/gridmesh/authcore/internal/server/refreshtokens"
)

// fakeUserRepo is an in-memory Repository keyed by id and lowercased email.
type fakeUserRepo struct {
	byID    map[string]*User
	byEmail map[string]*User

	// createErr, when set, is returned by the next Create call.
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*User{}, byEmail: map[string]*User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) (*User, error) {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return nil, err
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, ErrDuplicateEmailRow
	}
	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = &stored
	return &stored, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if user, ok := r.byEmail[email]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	if user, ok := r.byID[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

// fakeTokenRepo backs a real refreshtokens.Service in memory.
type fakeTokenRepo struct {
	rows map[string]*refreshtokens.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: map[string]*refreshtokens.RefreshToken{}}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *refreshtokens.RefreshToken) (*refreshtokens.RefreshToken, error) {
	if _, ok := r.rows[token.TokenHash]; ok {
		return nil, refreshtokens.ErrDuplicateHash
	}
	stored := *token
	stored.ID = uuid.NewString()
	r.rows[token.TokenHash] = &stored
	return &stored, nil
}

func (r *fakeTokenRepo) FindByHash(_ context.Context, tokenHash string) (*refreshtokens.RefreshToken, error) {
	if row, ok := r.rows[tokenHash]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeTokenRepo) Revoke(_ context.Context, tokenHash string, at time.Time) (int64, error) {
	row, ok := r.rows[tokenHash]
	if !ok || row.Revoked {
		return 0, nil
	}
	row.Revoked = true
	row.RevokedAt = &at
	return 1, nil
}

func (r *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID string, at time.Time) (int64, error) {
	var n int64
	for _, row := range r.rows {
		if row.UserID == userID && !row.Revoked {
			row.Revoked = true
			row.RevokedAt = &at
			n++
		}
	}
	return n, nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for hash, row := range r.rows {
		if row.ExpiresAt.Before(now) {
			delete(r.rows, hash)
			n++
		}
	}
	return n, nil
}

type fixture struct {
	svc    *Service
	repo   *fakeUserRepo
	tokens *fakeTokenRepo
	signer *auth.Signer
	mock   sqlmock.Sqlmock
}

func newFixture(t *testing.T, bootstrapAdmin bool) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := newFakeUserRepo()
	tokenRepo := newFakeTokenRepo()
	tokenSvc := refreshtokens.NewService(db,
		func(dbx.DBTX) refreshtokens.Repository { return tokenRepo },
		7*24*time.Hour)
	signer := auth.NewSigner([]byte("test-secret"), 15*time.Minute)

	return &fixture{
		svc:    NewService(userRepo, tokenSvc, signer, bootstrapAdmin),
		repo:   userRepo,
		tokens: tokenRepo,
		signer: signer,
		mock:   mock,
	}
}

func (f *fixture) mustRegister(t *testing.T, username, email, pw string, role auth.Role, caller *auth.Principal) *User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), username, email, pw, role, caller)
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email and hashes the password", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.mustRegister(t, "alice", "  Alice@Example.COM ", "s3cret-pw", auth.RoleClient, nil)

		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "s3cret-pw", user.PasswordHash)
		assert.True(t, password.Verify("s3cret-pw", user.PasswordHash))
	})

	t.Run("rejects a taken email case-insensitively", func(t *testing.T) {
		f := newFixture(t, false)
		f.mustRegister(t, "alice", "alice@example.com", "s3cret-pw", auth.RoleClient, nil)

		_, err := f.svc.Register(ctx, "imposter", "ALICE@example.com", "other-pw", auth.RoleClient, nil)
		assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	})

	t.Run("maps the insert race to the same error", func(t *testing.T) {
		f := newFixture(t, false)
		f.repo.createErr = ErrDuplicateEmailRow

		_, err := f.svc.Register(ctx, "alice", "alice@example.com", "s3cret-pw", auth.RoleClient, nil)
		assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	})
}

func TestRegisterRoleAssignment(t *testing.T) {
	admin := &auth.Principal{UserID: "admin-1", Email: "root@example.com", Role: auth.RoleAdmin}
	client := &auth.Principal{UserID: "client-1", Email: "c@example.com", Role: auth.RoleClient}

	t.Run("first user may bootstrap as admin", func(t *testing.T) {
		f := newFixture(t, true)
		user := f.mustRegister(t, "root", "root@example.com", "s3cret-pw", auth.RoleAdmin, nil)
		assert.Equal(t, auth.RoleAdmin, user.Role)
	})

	t.Run("bootstrap disabled clamps even the first user", func(t *testing.T) {
		f := newFixture(t, false)
		user := f.mustRegister(t, "root", "root@example.com", "s3cret-pw", auth.RoleAdmin, nil)
		assert.Equal(t, auth.RoleClient, user.Role)
	})

	t.Run("anonymous admin request clamps once users exist", func(t *testing.T) {
		f := newFixture(t, true)
		f.mustRegister(t, "root", "root@example.com", "s3cret-pw", auth.RoleAdmin, nil)

		user := f.mustRegister(t, "eve", "eve@example.com", "s3cret-pw", auth.RoleAdmin, nil)
		assert.Equal(t, auth.RoleClient, user.Role)
	})

	t.Run("client caller cannot mint admins", func(t *testing.T) {
		f := newFixture(t, true)
		f.mustRegister(t, "root", "root@example.com", "s3cret-pw", auth.RoleAdmin, nil)

		user := f.mustRegister(t, "eve", "eve@example.com", "s3cret-pw", auth.RoleAdmin, client)
		assert.Equal(t, auth.RoleClient, user.Role)
	})

	t.Run("admin caller may mint admins", func(t *testing.T) {
		f := newFixture(t, true)
		f.mustRegister(t, "root", "root@example.com", "s3cret-pw", auth.RoleAdmin, nil)

		user := f.mustRegister(t, "ops", "ops@example.com", "s3cret-pw", auth.RoleAdmin, admin)
		assert.Equal(t, auth.RoleAdmin, user.Role)
	})

	t.Run("unknown role falls back to client", func(t *testing.T) {
		f := newFixture(t, true)
		user := f.mustRegister(t, "bob", "bob@example.com", "s3cret-pw", auth.Role("SUPERUSER"), admin)
		assert.Equal(t, auth.RoleClient, user.Role)
	})

	t.Run("empty role falls back to client", func(t *testing.T) {
		f := newFixture(t, true)
		user := f.mustRegister(t, "bob", "bob@example.com", "s3cret-pw", "", nil)
		assert.Equal(t, auth.RoleClient, user.Role)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	user := f.mustRegister(t, "alice", "alice@example.com", "s3cret-pw", auth.RoleClient, nil)

	t.Run("returns a verifiable pair", func(t *testing.T) {
		pair, err := f.svc.Login(ctx, "alice@example.com", "s3cret-pw")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		p, err := f.signer.Verify(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, p.UserID)
		assert.Equal(t, "alice@example.com", p.Email)
		assert.Equal(t, auth.RoleClient, p.Role)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		_, errUnknown := f.svc.Login(ctx, "nobody@example.com", "s3cret-pw")
		_, errWrongPw := f.svc.Login(ctx, "alice@example.com", "wrong-pw")

		assert.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPw, common.ErrInvalidCredentials)
		assert.Equal(t, errUnknown, errWrongPw)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	user := f.mustRegister(t, "alice", "alice@example.com", "s3cret-pw", auth.RoleClient, nil)

	pair, err := f.svc.Login(ctx, "alice@example.com", "s3cret-pw")
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	next, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	p, err := f.signer.Verify(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)

	// The consumed token is single-use.
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.mustRegister(t, "alice", "alice@example.com", "s3cret-pw", auth.RoleClient, nil)

	first, err := f.svc.Login(ctx, "alice@example.com", "s3cret-pw")
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, "alice@example.com", "s3cret-pw")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, first.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, first.RefreshToken)) // idempotent

	// Only the targeted session is gone.
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err = f.svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestRevokeAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	user := f.mustRegister(t, "alice", "alice@example.com", "s3cret-pw", auth.RoleClient, nil)

	first, err := f.svc.Login(ctx, "alice@example.com", "s3cret-pw")
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, "alice@example.com", "s3cret-pw")
	require.NoError(t, err)

	require.NoError(t, f.svc.RevokeAll(ctx, user.ID))

	for _, raw := range []string{first.RefreshToken, second.RefreshToken} {
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		_, err = f.svc.Refresh(ctx, raw)
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	}
}
