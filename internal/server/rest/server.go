// Package rest is the HTTP API of the server: a chi router with the auth
// gate, rate limiting and one handler per endpoint.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/logging"
	"github.com/dmitrijs2005/secondmind/internal/server/auth"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
	"github.com/dmitrijs2005/secondmind/internal/server/ratelimit"
	"github.com/dmitrijs2005/secondmind/internal/server/services"
	"github.com/dmitrijs2005/secondmind/internal/server/summarizer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type UserService interface {
	Register(ctx context.Context, email, password, name string) error
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (*services.Session, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*services.Session, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	UpdateProfile(ctx context.Context, userID, name string, email *string) (*models.UserSummary, error)
}

type EntityService interface {
	List(ctx context.Context, kind models.Kind, ownerID string) ([]*models.Record, error)
	Upsert(ctx context.Context, kind models.Kind, ownerID string, payload map[string]any) error
	Delete(ctx context.Context, kind models.Kind, ownerID, externalID string) error
}

type DocumentService interface {
	UploadURL(ctx context.Context, ownerID string) (key, url string, err error)
	DownloadURL(ctx context.Context, ownerID, externalID string) (string, error)
}

type ReminderService interface {
	Send(ctx context.Context, email string, ev models.EventReminder) error
}

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Pinger reports database liveness for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services bundles the collaborators behind the handlers.
type Services struct {
	Users      UserService
	Entities   EntityService
	Documents  DocumentService
	Reminders  ReminderService
	Summarizer summarizer.Summarizer
	Tokens     TokenVerifier
	DB         Pinger
	// Limiter is optional; without it /auth is not rate limited.
	Limiter ratelimit.Limiter
}

type HTTPServer struct {
	address string
	svc     Services
	origins []string
	logger  logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, svc Services, allowedOrigins []string) *HTTPServer {
	return &HTTPServer{
		address: address,
		svc:     svc,
		origins: allowedOrigins,
		logger:  l.With("module", "http_server"),
	}
}

// Routes builds the router.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.tracing)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Get("/verificationMail/verify", s.handleVerifyEmail)

	r.Route("/auth", func(r chi.Router) {
		r.Use(s.rateLimit)

		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/google", s.handleGoogleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authGate)
			r.Put("/change-password", s.handleChangePassword)
			r.Put("/update-profile", s.handleUpdateProfile)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authGate)

		r.Post("/documents/upload-url", s.handleUploadURL)
		r.Get("/documents/{external_id}/download-url", s.handleDownloadURL)

		for _, kind := range []models.Kind{models.KindProject, models.KindEvent, models.KindTask, models.KindNote, models.KindDocument} {
			r.Get("/"+string(kind), s.handleList(kind))
			r.Post("/"+string(kind), s.handleUpsert(kind))
			r.Delete("/"+string(kind)+"/{external_id}", s.handleDelete(kind))
		}

		r.Post("/reminder/send", s.handleSendReminder)
		r.Post("/api/summarize", s.handleSummarize)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
