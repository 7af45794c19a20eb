// Package db wires the auth service's repositories to their PostgreSQL
// backing store and runs schema migrations at startup.
package db

import (
	"context"
	"database/sql"

	"github.com/gridmesh/authcore/internal/server/refreshtokens"
	"github.com/gridmesh/authcore/internal/server/users"
)

// RepositoryManager hands out repositories over one shared connection pool.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	RefreshTokens() refreshtokens.RepositoryFactory
	Close() error
}
