package refreshtokens

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gridmesh/authcore/internal/common"
	"github.com/gridmesh/authcore/internal/dbx"
)

// rawTokenBytes is the entropy of a raw refresh secret; the hex encoding is
// twice as long.
const rawTokenBytes = 32

// maxIssueAttempts bounds the collision-retry loop at issuance. Exhausting
// it surfaces common.ErrIssuanceFailed.
const maxIssueAttempts = 5

// RepositoryFactory builds a Repository over the given handle. The rotation
// protocol uses it to run lookups and writes on one transaction.
type RepositoryFactory func(db dbx.DBTX) Repository

// HashToken computes the SHA-256 hex digest of a raw token. Only this digest
// is ever persisted.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// Service implements the refresh-token lifecycle on top of a Repository.
type Service struct {
	db    *sql.DB
	repos RepositoryFactory
	ttl   time.Duration
}

// NewService returns a Service issuing tokens valid for ttl.
func NewService(db *sql.DB, repos RepositoryFactory, ttl time.Duration) *Service {
	return &Service{db: db, repos: repos, ttl: ttl}
}

// Issue generates a fresh raw secret for the user, persists its hash and
// returns the raw secret. The store's unique index on token_hash turns an
// (astronomically unlikely) digest collision into a retry instead of a
// silent overwrite.
func (s *Service) Issue(ctx context.Context, userID string) (string, error) {
	return s.issueOn(ctx, s.db, userID)
}

func (s *Service) issueOn(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	repo := s.repos(db)

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		raw, err := common.MakeRandHexString(rawTokenBytes)
		if err != nil {
			return "", fmt.Errorf("generating refresh token: %w", err)
		}

		now := time.Now()
		_, err = repo.Create(ctx, &RefreshToken{
			UserID:    userID,
			TokenHash: HashToken(raw),
			IssuedAt:  now,
			ExpiresAt: now.Add(s.ttl),
		})
		if err == nil {
			return raw, nil
		}
		if errors.Is(err, ErrDuplicateHash) {
			continue
		}
		return "", fmt.Errorf("storing refresh token: %w", err)
	}

	return "", common.ErrIssuanceFailed
}

// Validate exchanges a raw token for the owning user id. Unknown, revoked
// and expired tokens all collapse to common.ErrInvalidCredentials.
func (s *Service) Validate(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", common.ErrInvalidCredentials
	}

	token, err := s.repos(s.db).FindByHash(ctx, HashToken(raw))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("searching refresh token: %w", err)
	}

	if !token.Active(time.Now()) {
		return "", common.ErrInvalidCredentials
	}
	return token.UserID, nil
}

// Revoke marks the matching row revoked. Revoking an unknown or
// already-revoked token is a no-op, never an error.
func (s *Service) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	if _, err := s.repos(s.db).Revoke(ctx, HashToken(raw), time.Now()); err != nil {
		return fmt.Errorf("revoking refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every active token of the user at one timestamp.
// Used for logout-everywhere and account compromise response.
func (s *Service) RevokeAllForUser(ctx context.Context, userID string) error {
	if _, err := s.repos(s.db).RevokeAllForUser(ctx, userID, time.Now()); err != nil {
		return fmt.Errorf("revoking refresh tokens for user: %w", err)
	}
	return nil
}

// Rotate runs the single-use exchange protocol in one transaction: validate
// the old token, conditionally revoke it, issue a replacement. Of two
// concurrent calls with the same raw token, exactly one wins; the loser
// observes zero revoked rows and gets common.ErrInvalidCredentials.
func (s *Service) Rotate(ctx context.Context, raw string) (userID, newRaw string, err error) {
	if raw == "" {
		return "", "", common.ErrInvalidCredentials
	}
	tokenHash := HashToken(raw)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos(tx)

		token, err := repo.FindByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidCredentials
			}
			return fmt.Errorf("searching refresh token: %w", err)
		}

		now := time.Now()
		if !token.Active(now) {
			return common.ErrInvalidCredentials
		}

		affected, err := repo.Revoke(ctx, tokenHash, now)
		if err != nil {
			return fmt.Errorf("revoking refresh token: %w", err)
		}
		if affected == 0 {
			// Lost a concurrent rotation race.
			return common.ErrInvalidCredentials
		}

		userID = token.UserID
		newRaw, err = s.issueOn(ctx, tx, userID)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return userID, newRaw, nil
}

// DeleteExpired removes rows whose expiry has passed. Expiry is otherwise
// enforced lazily at validation time; this is on-demand housekeeping.
func (s *Service) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repos(s.db).DeleteExpired(ctx, time.Now())
}
