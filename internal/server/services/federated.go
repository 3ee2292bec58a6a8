package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

// LoginWithGoogle exchanges a Google ID token for a session, creating the
// verified account on first use.
func (s *UserService) LoginWithGoogle(ctx context.Context, idToken string) (*Session, error) {
	if idToken == "" {
		return nil, fmt.Errorf("%w: idToken is required", common.ErrorValidation)
	}

	id, err := s.identities.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).UpsertByFederatedSubject(ctx,
		&models.User{GoogleID: id.Subject, Email: id.Email, Name: id.Name}, s.now())
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "federated login", "user_id", user.ID)
	return s.session(user, ServiceGoogle)
}
