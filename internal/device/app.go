package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/gridmesh/authcore/internal/auth"
	"github.com/gridmesh/authcore/internal/device/migrations"
	"github.com/gridmesh/authcore/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// App wires the resource service: its own store, the shared verification
// library and the HTTP API.
type App struct {
	config *Config
	logger logging.Logger
	db     *sql.DB
	svc    *Service
	signer *auth.Signer
}

func NewApp(ctx context.Context, c *Config, logger logging.Logger) (*App, error) {
	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	// The device service never mints tokens; the signer is only used as a
	// verifier over the shared secret.
	signer := auth.NewSigner([]byte(c.SecretKey), 0)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		svc:    NewService(NewPostgresRepository(db)),
		signer: signer,
	}, nil
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancelFunc()
	}()

	router := NewRouter(NewHandlers(app.svc, app.logger), app.signer, app.config.AllowedOrigins)
	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "device service listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	app.logger.Info(ctx, "device service stopped")
	return nil
}
