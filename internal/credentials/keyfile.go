package credentials

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"

	"lcutils/internal/signer"
)

// KeyFileIdentity signs locally with the RSA key of a service-account JSON key.
type KeyFileIdentity struct {
	email string
	key   *rsa.PrivateKey
}

// ServiceAccountEmail returns the client_email of the key file.
func (k *KeyFileIdentity) ServiceAccountEmail() string {
	return k.email
}

// SignBytes returns the RSASSA-PKCS1-v1_5 SHA-256 signature of p.
func (k *KeyFileIdentity) SignBytes(p []byte) ([]byte, error) {
	digest := sha256.Sum256(p)
	sig, err := rsa.SignPKCS1v15(rand.Reader, k.key, crypto.SHA256, digest[:])
	if err != nil {
		return nil, fmt.Errorf("rsa sign: %w", err)
	}
	return sig, nil
}

// ParseKeyFile builds an identity from the contents of a service-account JSON key.
func ParseKeyFile(data []byte) (*KeyFileIdentity, error) {
	cfg, err := google.JWTConfigFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing service account key: %w", err)
	}
	if cfg.Email == "" {
		return nil, errors.New("service account key has no client_email")
	}

	key, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	return &KeyFileIdentity{email: cfg.Email, key: key}, nil
}

func parsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block != nil {
		data = block.Bytes
	}

	parsed, err := x509.ParsePKCS8PrivateKey(data)
	if err != nil {
		pkcs1, err1 := x509.ParsePKCS1PrivateKey(data)
		if err1 != nil {
			return nil, fmt.Errorf("parsing private key: %w", err)
		}
		return pkcs1, nil
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an RSA key")
	}
	return key, nil
}

// KeyFileProvider hands out the identity loaded from a key file at construction.
type KeyFileProvider struct {
	identity *KeyFileIdentity
}

// NewKeyFileProvider reads and parses the key at path. An empty path yields a
// provider without an identity.
func NewKeyFileProvider(path string) (*KeyFileProvider, error) {
	if path == "" {
		return &KeyFileProvider{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	identity, err := ParseKeyFile(data)
	if err != nil {
		return nil, err
	}
	return &KeyFileProvider{identity: identity}, nil
}

// Identity returns the loaded identity, or nil when no key file was configured.
func (p *KeyFileProvider) Identity(_ context.Context) (signer.Identity, error) {
	if p.identity == nil {
		return nil, nil
	}
	return p.identity, nil
}
