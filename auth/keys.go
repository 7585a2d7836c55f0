package auth

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// PublicKeyPath is where Bootstrap writes the public half of the key at path.
func PublicKeyPath(path string) string {
	return path + ".pub"
}

// Bootstrap generates the ECDSA P-256 token signing key pair and writes it
// next to each other as PKCS8 and PKIX PEM files.
func Bootstrap(path string) error {
	signingKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("error generating jwt signing key: %w", err)
	}

	signingKeyBytes, err := x509.MarshalPKCS8PrivateKey(signingKey)
	if err != nil {
		return fmt.Errorf("error marshalling jwt private key: %w", err)
	}

	publicKeyBytes, err := x509.MarshalPKIXPublicKey(&signingKey.PublicKey)
	if err != nil {
		return fmt.Errorf("error marshalling jwt public key: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create key directory: %w", err)
		}
	}

	if err := writePEMFile(path, constPrivateKeyHeader, signingKeyBytes); err != nil {
		return fmt.Errorf("error writing jwt private key file: %w", err)
	}

	if err := writePEMFile(PublicKeyPath(path), constPublicKeyHeader, publicKeyBytes); err != nil {
		return fmt.Errorf("error writing jwt public key file: %w", err)
	}

	return nil
}

// LoadSigningKey reads a PKCS8 PEM private key written by Bootstrap.
func LoadSigningKey(path string) (crypto.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode signing key PEM")
	}

	switch block.Type {
	case constPrivateKeyHeader, "EC PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("unsupported private key type %T", key)
		}
		return signer, nil
	case constPublicKeyHeader:
		return nil, fmt.Errorf("%s holds a public key, expected the private signing key", path)
	default:
		return nil, fmt.Errorf("unknown key type: %s", block.Type)
	}
}

// writePEMFile writes value as a single PEM block readable only by the owner.
func writePEMFile(filePath, blockType string, value []byte) error {
	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("error opening file for writing: %w", err)
	}

	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			slog.Error("error closing key file", "path", filePath, "err", err)
		}
	}(f)

	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: value}); err != nil {
		return fmt.Errorf("error encoding key: %w", err)
	}

	return nil
}
