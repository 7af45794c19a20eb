package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gridmesh/authcore/internal/auth"
	"github.com/gridmesh/authcore/internal/common"
	"github.com/gridmesh/authcore/internal/password"
	"github.com/gridmesh/authcore/internal/server/refreshtokens"
)

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service is the auth orchestrator: it composes the user directory, the
// credential hasher, the access-token signer and the refresh-token lifecycle
// into the register/login/refresh/logout use cases.
type Service struct {
	repo           Repository
	tokens         *refreshtokens.Service
	signer         *auth.Signer
	bootstrapAdmin bool
}

// NewService wires the orchestrator. When bootstrapAdmin is true, the very
// first self-registration may claim the admin role (explicit bootstrap
// exception); afterwards only an authenticated admin can mint admins.
func NewService(repo Repository, tokens *refreshtokens.Service, signer *auth.Signer, bootstrapAdmin bool) *Service {
	return &Service{
		repo:           repo,
		tokens:         tokens,
		signer:         signer,
		bootstrapAdmin: bootstrapAdmin,
	}
}

// Register creates an account. The requested role is clamped to CLIENT
// unless the caller is an authenticated admin or the bootstrap exception
// applies. A taken email (case-insensitive) returns
// common.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, username, email, plaintext string, requestedRole auth.Role, caller *auth.Principal) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return nil, common.ErrDuplicateEmail
	}

	role, err := s.resolveRole(ctx, requestedRole, caller)
	if err != nil {
		return nil, err
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.repo.Create(ctx, &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		// The unique index closes the check-then-create race.
		if errors.Is(err, ErrDuplicateEmailRow) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// resolveRole applies the privilege-escalation guard.
func (s *Service) resolveRole(ctx context.Context, requested auth.Role, caller *auth.Principal) (auth.Role, error) {
	if requested == "" || !auth.IsValidRole(requested) {
		return auth.RoleClient, nil
	}
	if requested != auth.RoleAdmin {
		return requested, nil
	}
	if caller.IsAdmin() {
		return auth.RoleAdmin, nil
	}
	if s.bootstrapAdmin {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return "", fmt.Errorf("counting users: %w", err)
		}
		if count == 0 {
			return auth.RoleAdmin, nil
		}
	}
	return auth.RoleClient, nil
}

// Login verifies the password for the account behind the email and returns a
// fresh token pair. An unknown email and a wrong password are deliberately
// the same common.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*TokenPair, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return s.issuePair(ctx, user)
}

// Refresh runs the rotation protocol: the old refresh token is atomically
// revoked and a new pair is issued. A replayed token fails with
// common.ErrInvalidCredentials.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (*TokenPair, error) {
	userID, newRaw, err := s.tokens.Rotate(ctx, rawRefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// The account vanished between rotation and lookup.
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	accessToken, err := s.signer.Mint(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("minting access token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: newRaw}, nil
}

// Logout revokes the single refresh token; other sessions stay valid.
// Already-issued access tokens remain usable until natural expiry.
func (s *Service) Logout(ctx context.Context, rawRefreshToken string) error {
	return s.tokens.Revoke(ctx, rawRefreshToken)
}

// RevokeAll invalidates every refresh session of the user.
func (s *Service) RevokeAll(ctx context.Context, userID string) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *Service) issuePair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.signer.Mint(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("minting access token: %w", err)
	}

	refreshToken, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
