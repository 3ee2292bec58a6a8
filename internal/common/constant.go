package common

const (
	// AuthorizationHeaderName carries the session token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"

	// VerificationTokenSize is the number of random bytes in an email
	// verification token before hex encoding.
	VerificationTokenSize = 32
)
