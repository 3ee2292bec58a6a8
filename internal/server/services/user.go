// Package services contains server-side business logic. This file implements
// UserService, which handles registration, password and federated login,
// and account maintenance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/dbx"
	"github.com/dmitrijs2005/secondmind/internal/logging"
	"github.com/dmitrijs2005/secondmind/internal/server/auth"
	"github.com/dmitrijs2005/secondmind/internal/server/config"
	"github.com/dmitrijs2005/secondmind/internal/server/federated"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
	"github.com/dmitrijs2005/secondmind/internal/server/repositories/repomanager"
)

// Service labels reported in the session's user summary.
const (
	ServicePassword = "SecondLogin"
	ServiceGoogle   = "googleLogin"
)

// Session is the result of a successful login.
type Session struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// VerificationSender delivers the verification link of a new account.
type VerificationSender interface {
	SendVerification(ctx context.Context, email, name, link string) error
}

// UserService provides authentication-related operations:
// - Register / VerifyEmail: password accounts with email verification
// - Login / LoginWithGoogle: mint session tokens
// - ChangePassword / UpdateProfile: account maintenance
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	identities  federated.Verifier
	mail        VerificationSender
	log         logging.Logger

	verificationValidity time.Duration
	verificationBaseURL  string
	now                  func() time.Time
}

// NewUserService constructs a UserService from its collaborators and the
// server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService,
	identities federated.Verifier, mail VerificationSender, log logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                   db,
		repomanager:          m,
		tokens:               tokens,
		identities:           identities,
		mail:                 mail,
		log:                  log,
		verificationValidity: cfg.VerificationTokenValidityDuration,
		verificationBaseURL:  cfg.VerificationBaseURL,
		now:                  time.Now,
	}
}

// Login checks the password of a verified account and issues a session.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsVerified {
		return nil, common.ErrNotVerified
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	return s.session(user, ServicePassword)
}

// ChangePassword replaces the password after checking the current one.
// Sessions issued earlier stay valid until they expire.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return fmt.Errorf("%w: current and new password are required", common.ErrorValidation)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !auth.CheckPassword(user.PasswordHash, current) {
			return common.ErrInvalidCredentials
		}

		hash, err := auth.HashPassword(next)
		if err != nil {
			return err
		}
		return repo.SetPasswordHash(ctx, userID, hash, s.now())
	})
}

// UpdateProfile sets the display name and, when email is given, the email.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name string, email *string) (*models.UserSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}
	if email != nil {
		trimmed := strings.TrimSpace(*email)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: email must not be empty", common.ErrorValidation)
		}
		email = &trimmed
	}

	user, err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, name, email, s.now())
	if err != nil {
		return nil, err
	}

	summary := user.Summary("")
	return &summary, nil
}

func (s *UserService) session(user *models.User, service string) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: user.Summary(service)}, nil
}
