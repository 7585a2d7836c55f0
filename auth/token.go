package auth

import (
	"crypto"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and validates admin tokens with a single key.
type Issuer struct {
	key    crypto.Signer
	keyID  string
	method jwt.SigningMethod
	expiry time.Duration
	now    func() time.Time
}

func NewIssuer(key crypto.Signer, expiry time.Duration) *Issuer {
	if expiry <= 0 {
		expiry = 12 * time.Hour
	}
	return &Issuer{
		key:    key,
		keyID:  keyID(key.Public()),
		method: signingMethodFromKey(key),
		expiry: expiry,
		now:    time.Now,
	}
}

// LoadIssuer reads the signing key at path.
func LoadIssuer(path string, expiry time.Duration) (*Issuer, error) {
	key, err := LoadSigningKey(path)
	if err != nil {
		return nil, err
	}
	return NewIssuer(key, expiry), nil
}

func (i *Issuer) Issue(username string) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.expiry)

	claims := Claims{
		Role: RoleSuperadmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(i.method, claims)
	token.Header["kid"] = i.keyID

	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate checks signature, expiry, issuer and role. Every failure wraps
// ErrInvalidToken.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != i.method {
			return nil, fmt.Errorf("invalid signing method: expected %v, got %v", i.method.Alg(), token.Method.Alg())
		}
		return i.key.Public(), nil
	},
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	if claims.Role != RoleSuperadmin {
		return nil, fmt.Errorf("%w: role %q is not allowed", ErrInvalidToken, claims.Role)
	}

	return claims, nil
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
