package users

import (
	"context"
	"errors"
)

// ErrDuplicateEmailRow signals a unique-constraint violation on the
// case-insensitive email index during Create.
var ErrDuplicateEmailRow = errors.New("duplicate email row")

// Repository is the user directory contract the auth core consumes. It makes
// no assumption about the storage technology behind it.
type Repository interface {
	// Create inserts the user and returns it with the generated id. A
	// case-insensitive email conflict returns ErrDuplicateEmailRow.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByEmail looks up a user by case-insensitive email, or
	// common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID looks up a user by id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*User, error)

	// ExistsByEmail reports whether the email is taken, case-insensitively.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Count returns the total number of accounts.
	Count(ctx context.Context) (int64, error)
}
