// Package server initializes and runs the auth service: it wires the
// PostgreSQL-backed repositories, the token services and the HTTP API, and
// handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gridmesh/authcore/internal/auth"
	"github.com/gridmesh/authcore/internal/logging"
	"github.com/gridmesh/authcore/internal/server/config"
	"github.com/gridmesh/authcore/internal/server/db"
	authhttp "github.com/gridmesh/authcore/internal/server/http"
	"github.com/gridmesh/authcore/internal/server/refreshtokens"
	"github.com/gridmesh/authcore/internal/server/users"
)

// cleanupInterval is how often expired refresh-token rows are purged.
const cleanupInterval = time.Hour

// shutdownTimeout bounds graceful HTTP shutdown on termination.
const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	manager  db.RepositoryManager
	tokenSvc *refreshtokens.Service
	userSvc  *users.Service
	signer   *auth.Signer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	m, err := db.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	signer := auth.NewSigner([]byte(c.SecretKey), c.AccessTokenTTL)
	ts := refreshtokens.NewService(m.Conn(), m.RefreshTokens(), c.RefreshTokenTTL)
	us := users.NewService(m.Users(), ts, signer, c.BootstrapAdmin)

	return &App{
		config:   c,
		logger:   logger,
		manager:  m,
		tokenSvc: ts,
		userSvc:  us,
		signer:   signer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	handlers := authhttp.NewHandlers(app.userSvc, app.logger)
	router := authhttp.NewRouter(handlers, app.signer, app.config.AllowedOrigins)

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

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err.Error())
		cancelFunc()
	}
}

// startCleanupLoop purges expired refresh-token rows on a timer. Expiry is
// enforced at validation time regardless; this keeps the table small.
func (app *App) startCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.tokenSvc.DeleteExpired(ctx)
			if err != nil {
				app.logger.Warn(ctx, "expired token cleanup failed", "error", err.Error())
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired tokens purged", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting auth service")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startCleanupLoop(ctx)
	}()

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}

	app.logger.Info(ctx, "auth service stopped")
	return nil
}
