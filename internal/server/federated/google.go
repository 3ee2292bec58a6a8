// Package federated verifies identity assertions issued by external
// providers. Only Google ID tokens are supported.
package federated

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"google.golang.org/api/idtoken"
)

// Identity is the verified subject of an assertion.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier checks an assertion and returns the identity it vouches for.
type Verifier interface {
	Verify(ctx context.Context, assertion string) (*Identity, error)
}

// validateIDToken is a seam for testing idtoken.Validate.
var validateIDToken = idtoken.Validate

// GoogleVerifier validates Google ID tokens against one OAuth client id.
type GoogleVerifier struct {
	audience string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID}
}

// Verify checks signature, issuer, expiry and audience. Every failure is
// reported as common.ErrInvalidAssertion.
func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*Identity, error) {
	if v.audience == "" {
		return nil, fmt.Errorf("%w: google client id is not configured", common.ErrInvalidAssertion)
	}

	payload, err := validateIDToken(ctx, assertion, v.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidAssertion, err)
	}
	if payload.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidAssertion)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)

	return &Identity{Subject: payload.Subject, Email: email, Name: name}, nil
}
