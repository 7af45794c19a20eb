package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/gridmesh/authcore/internal/dbx"
	"github.com/gridmesh/authcore/internal/server/migrations"
	"github.com/gridmesh/authcore/internal/server/refreshtokens"
	"github.com/gridmesh/authcore/internal/server/users"
)

// PostgresRepositoryManager implements RepositoryManager over a pgx stdlib
// connection pool.
type PostgresRepositoryManager struct {
	db *sql.DB
}

// NewPostgresRepositoryManager opens the pool, runs pending migrations and
// returns a ready manager.
func NewPostgresRepositoryManager(ctx context.Context, dsn string) (RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{db: db}

	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return users.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) RefreshTokens() refreshtokens.RepositoryFactory {
	return func(db dbx.DBTX) refreshtokens.Repository {
		return refreshtokens.NewPostgresRepository(db)
	}
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
