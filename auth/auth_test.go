package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return NewIssuer(key, time.Hour)
}

func TestBootstrapWritesKeyPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "jwt.key")

	if err := Bootstrap(path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, p := range []string{path, PublicKeyPath(path)} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("Expected %s to exist, got %v", p, err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("Expected %s to be 0600, got %v", p, info.Mode().Perm())
		}
	}

	issuer, err := LoadIssuer(path, time.Hour)
	if err != nil {
		t.Fatalf("Expected key to load, got %v", err)
	}
	if _, ok := issuer.key.(*ecdsa.PrivateKey); !ok {
		t.Errorf("Expected an ECDSA key, got %T", issuer.key)
	}
}

func TestLoadSigningKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jwt.key")
	if err := Bootstrap(path); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	garbage := filepath.Join(dir, "garbage.key")
	os.WriteFile(garbage, []byte("not pem"), 0600)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.key")},
		{"not pem", garbage},
		{"public key", PublicKeyPath(path)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := LoadSigningKey(test.path); err == nil {
				t.Errorf("Expected error")
			}
		})
	}
}

func TestIssueAndValidate(t *testing.T) {
	issuer := newTestIssuer(t)

	token, expiresAt, err := issuer.Issue("admin")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("Expected expiry in the future, got %v", expiresAt)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Expected valid token, got %v", err)
	}
	if claims.Subject != "admin" || claims.Role != RoleSuperadmin {
		t.Errorf("Expected admin/superadmin, got %s/%s", claims.Subject, claims.Role)
	}
}

func TestValidateRejects(t *testing.T) {
	issuer := newTestIssuer(t)
	other := newTestIssuer(t)

	foreign, _, _ := other.Issue("admin")

	expiredIssuer := newTestIssuer(t)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredIssuer.key = issuer.key
	expiredIssuer.keyID = issuer.keyID
	expired, _, _ := expiredIssuer.Issue("admin")

	wrongRole := jwt.NewWithClaims(jwt.SigningMethodES256, Claims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			Issuer:    issuerName,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	wrongRoleToken, _ := wrongRole.SignedString(issuer.key)

	hmac := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: RoleSuperadmin})
	hmacToken, _ := hmac.SignedString([]byte("secret"))

	tests := []struct {
		name    string
		token   string
		expired bool
	}{
		{"garbage", "not.a.token", false},
		{"other key", foreign, false},
		{"expired", expired, true},
		{"wrong role", wrongRoleToken, false},
		{"hmac", hmacToken, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := issuer.Validate(test.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Expected ErrInvalidToken, got %v", err)
			}
			if IsExpired(err) != test.expired {
				t.Errorf("Expected expired=%v, got %v (%v)", test.expired, IsExpired(err), err)
			}
		})
	}
}

func TestJWKS(t *testing.T) {
	issuer := newTestIssuer(t)
	set := issuer.JWKS()

	if len(set.Keys) != 1 {
		t.Fatalf("Expected 1 key, got %d", len(set.Keys))
	}
	key := set.Keys[0]
	if key.Algorithm != "ES256" || key.Use != "sig" || key.KeyID != issuer.keyID {
		t.Errorf("Expected ES256 sig key %s, got %s %s %s", issuer.keyID, key.Algorithm, key.Use, key.KeyID)
	}
	if !key.IsPublic() {
		t.Errorf("Expected only the public key to be published")
	}

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("Expected JWKS to marshal, got %v", err)
	}
	if strings.Contains(string(data), `"d"`) {
		t.Errorf("Expected no private component in %s", data)
	}
}

func TestCredentialsCheck(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	creds := Credentials{Username: "admin", PasswordHash: hash}

	tests := []struct {
		name     string
		creds    Credentials
		username string
		password string
		expected error
	}{
		{"valid", creds, "admin", "hunter2", nil},
		{"wrong password", creds, "admin", "hunter3", ErrInvalidCredentials},
		{"wrong user", creds, "root", "hunter2", ErrInvalidCredentials},
		{"no hash configured", Credentials{Username: "admin"}, "admin", "", ErrInvalidCredentials},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.creds.Check(test.username, test.password)
			if !errors.Is(err, test.expected) {
				t.Errorf("Expected %v, got %v", test.expected, err)
			}
		})
	}
}
