package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

// Repository is the credential store. Every method addresses exactly one
// identity.
type Repository interface {
	CreateWithEmail(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByFederatedSubject(ctx context.Context, subject string) (*models.User, error)
	UpsertByFederatedSubject(ctx context.Context, user *models.User, now time.Time) (*models.User, error)
	RedeemVerificationToken(ctx context.Context, token string, now time.Time) (string, error)
	SetVerified(ctx context.Context, id string, now time.Time) error
	SetPasswordHash(ctx context.Context, id, hash string, now time.Time) error
	UpdateProfile(ctx context.Context, id, name string, email *string, now time.Time) (*models.User, error)
}
