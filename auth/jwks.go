package auth

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

func signingMethodFromKey(key interface{}) jwt.SigningMethod {
	switch key.(type) {
	case *rsa.PrivateKey:
		return jwt.SigningMethodRS256
	case *ecdsa.PrivateKey:
		return jwt.SigningMethodES256
	case ed25519.PrivateKey:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodES256
	}
}

func algorithmFromKey(key interface{}) string {
	switch key.(type) {
	case *rsa.PublicKey:
		return "RS256"
	case *ecdsa.PublicKey:
		return "ES256"
	case ed25519.PublicKey:
		return "EdDSA"
	default:
		return "ES256"
	}
}

// keyID is the first 16 hex chars of the sha256 of the PKIX public key.
func keyID(pubKey interface{}) string {
	pubKeyBytes, _ := x509.MarshalPKIXPublicKey(pubKey)
	hash := sha256.Sum256(pubKeyBytes)
	return hex.EncodeToString(hash[:])[:16]
}

// JWKS publishes the verification key so other tools can check admin tokens.
func (i *Issuer) JWKS() jose.JSONWebKeySet {
	pub := i.key.Public()
	return jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{{
			Key:       pub,
			KeyID:     i.keyID,
			Algorithm: algorithmFromKey(pub),
			Use:       "sig",
		}},
	}
}
