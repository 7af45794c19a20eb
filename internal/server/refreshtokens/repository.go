package refreshtokens

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateHash signals a unique-constraint violation on token_hash.
// The service treats it as the trigger for its collision-retry loop.
var ErrDuplicateHash = errors.New("duplicate token hash")

// Repository persists refresh-token rows.
type Repository interface {
	// Create inserts a new row. A token_hash collision returns
	// ErrDuplicateHash.
	Create(ctx context.Context, token *RefreshToken) (*RefreshToken, error)

	// FindByHash returns the row for the given hash, or common.ErrorNotFound.
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// Revoke marks the row revoked at the given time, only if it is not
	// revoked already. Returns the number of rows flipped (0 or 1); a zero
	// result means the token was unknown or already revoked.
	Revoke(ctx context.Context, tokenHash string, at time.Time) (int64, error)

	// RevokeAllForUser revokes every active row of the user with a single
	// timestamp. Returns the number of rows flipped.
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) (int64, error)

	// DeleteExpired removes rows whose expiry has passed, revoked or not.
	// Returns the number of rows deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
