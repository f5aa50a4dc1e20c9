// Package server wires the auth server together: storage, migrations, the
// login limiter, the auth services, and the HTTP and gRPC health servers.
// It also handles signals and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/finauth/internal/dbx"
	"github.com/dmitrijs2005/finauth/internal/logging"
	"github.com/dmitrijs2005/finauth/internal/server/auth"
	"github.com/dmitrijs2005/finauth/internal/server/config"
	"github.com/dmitrijs2005/finauth/internal/server/httpapi"
	"github.com/dmitrijs2005/finauth/internal/server/limiter"
	"github.com/dmitrijs2005/finauth/internal/server/password"
	"github.com/dmitrijs2005/finauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/finauth/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/finauth/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	http   *httpapi.Server
	health *gs.HealthServer
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app, err := newApp(c, logger, db, rm, dbx.NewSQLTransactor(db, nil))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager, tx dbx.Transactor) (*App, error) {
	verifier, err := password.NewVerifier(c.BcryptCost)
	if err != nil {
		return nil, err
	}
	issuer := auth.NewIssuer(c)

	app := &App{config: c, logger: logger, db: db}

	var l limiter.LoginLimiter
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		l = limiter.NewRedisLimiter(app.redis, c.LoginMaxAttempts, c.LoginLockout)
	}

	svc := services.NewAuthService(db, tx, rm, issuer, verifier, l, logger.With("module", "auth_service"))
	bearer := services.NewBearerValidator(issuer, svc)

	var pinger httpapi.Pinger
	if db != nil {
		pinger = db
	}
	router := httpapi.NewRouter(httpapi.NewAuthHandler(svc, logger), bearer, pinger, logger.With("module", "http"))

	app.http = httpapi.NewServer(c.HTTPAddr, router, logger)
	app.health = gs.NewHealthServer(c.GRPCHealthAddr, logger)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts both servers and blocks until a signal arrives, ctx is done,
// or either server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server failed", "error", err)
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.health.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server failed", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()
	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(context.Background(), "redis close failed", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(context.Background(), "db close failed", "error", err)
		}
	}
}
