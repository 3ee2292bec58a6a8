// Package server wires the SecondMind backend together: database and
// migrations, the outbound collaborators (mail, identity, storage,
// summarization), the services, and the HTTP and gRPC servers.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/dbx"
	"github.com/dmitrijs2005/secondmind/internal/logging"
	"github.com/dmitrijs2005/secondmind/internal/server/auth"
	"github.com/dmitrijs2005/secondmind/internal/server/config"
	"github.com/dmitrijs2005/secondmind/internal/server/federated"
	"github.com/dmitrijs2005/secondmind/internal/server/mailer"
	"github.com/dmitrijs2005/secondmind/internal/server/otel"
	"github.com/dmitrijs2005/secondmind/internal/server/ratelimit"
	"github.com/dmitrijs2005/secondmind/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secondmind/internal/server/rest"
	"github.com/dmitrijs2005/secondmind/internal/server/services"
	"github.com/dmitrijs2005/secondmind/internal/server/storage"
	"github.com/dmitrijs2005/secondmind/internal/server/summarizer"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/secondmind/internal/server/grpc"
)

const (
	serviceName       = "secondmind"
	summarizerTimeout = 30 * time.Second
	shutdownTimeout   = 15 * time.Second
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	redis      *redis.Client
	dispatcher *mailer.Dispatcher
	services   rest.Services
	shutdown   func(context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	if c.UsesDefaultSecret() {
		logger.Warn(ctx, "JWT_SECRET not set; session tokens use the insecure default key")
	}

	shutdown, err := otel.Setup(ctx, serviceName, c.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("otel init error: %w", err)
	}

	db, err := dbx.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db, c.SyncOwnerGuard)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	sender := mailer.NewSendGrid(c.SendGridAPIKey, c.MailFrom, c.MailFromName)
	dispatcher := mailer.NewDispatcher(sender, logger.With("module", "mailer"))
	notifier := mailer.NewNotifier(dispatcher, sender, c.VerificationTokenValidityDuration)

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	us := services.NewUserService(db, rm, tokens, federated.NewGoogleVerifier(c.GoogleClientID),
		notifier, logger.With("module", "users"), c)
	es := services.NewEntityService(db, rm)

	app := &App{
		config:     c,
		logger:     logger,
		db:         db,
		dispatcher: dispatcher,
		shutdown:   shutdown,
		services: rest.Services{
			Users:      us,
			Entities:   es,
			Documents:  services.NewDocumentService(es, storage.NewS3Presigner(c)),
			Reminders:  services.NewReminderService(notifier),
			Summarizer: summarizer.NewHuggingFace(c.SummarizerURL, c.SummarizerAPIKey, summarizerTimeout),
			Tokens:     tokens,
			DB:         db,
		},
	}

	if c.RedisURL != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, c.RedisURL)
		if err != nil {
			// the API stays usable without rate limiting
			logger.Warn(ctx, "rate limiting disabled", "error", err)
		} else {
			app.redis = rdb
			app.services.Limiter = ratelimit.NewRedis(rdb, c.RateLimitRequests, c.RateLimitWindow)
		}
	}

	return app, nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.services, app.config.AllowedOrigins)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or a server fails, then
// drains the mail queue and releases resources.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
}

func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.dispatcher.Close(ctx); err != nil {
		app.logger.Warn(ctx, "mail queue not drained", "error", err)
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	if err := app.shutdown(ctx); err != nil {
		app.logger.Error(ctx, "otel shutdown", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
