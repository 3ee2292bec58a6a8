package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/server/auth"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

// Register creates an unverified password account and asks for the
// verification email. The account exists once the row is written; a mail
// failure is logged, never returned.
func (s *UserService) Register(ctx context.Context, email, password, name string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	token, err := common.MakeRandHexString(common.VerificationTokenSize)
	if err != nil {
		return fmt.Errorf("verification token: %w", err)
	}

	user, err := s.repomanager.Users(s.db).CreateWithEmail(ctx, &models.User{
		Email:               email,
		Name:                strings.TrimSpace(name),
		PasswordHash:        hash,
		VerificationToken:   token,
		VerificationExpires: s.now().Add(s.verificationValidity),
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)

	if err := s.mail.SendVerification(ctx, user.Email, user.Name, s.VerificationLink(token)); err != nil {
		s.log.Error(ctx, "verification email not queued", "user_id", user.ID, "error", err)
	}
	return nil
}

// VerifyEmail redeems a verification token. A token works once and only
// before it expires.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", common.ErrorValidation)
	}

	id, err := s.repomanager.Users(s.db).RedeemVerificationToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredToken
		}
		return err
	}

	s.log.Info(ctx, "email verified", "user_id", id)
	return nil
}

// VerificationLink returns the URL mailed to the user.
func (s *UserService) VerificationLink(token string) string {
	sep := "?"
	if strings.Contains(s.verificationBaseURL, "?") {
		sep = "&"
	}
	return s.verificationBaseURL + sep + "token=" + url.QueryEscape(token)
}
