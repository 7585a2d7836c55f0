package auth

import "errors"

const (
	constPrivateKeyHeader = "PRIVATE KEY"
	constPublicKeyHeader  = "PUBLIC KEY"

	// RoleSuperadmin is the only role; it may mutate sites and settings.
	RoleSuperadmin = "superadmin"

	issuerName = "site-monitor"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)
