package signer

import (
	"fmt"
	"strings"

	"lcutils/internal/domain"
)

// Identity is the capability to sign on behalf of a service account. SignBytes
// must return an RSA PKCS#1 v1.5 signature over the SHA-256 digest of p.
type Identity interface {
	ServiceAccountEmail() string
	SignBytes(p []byte) ([]byte, error)
}

// Request describes one object and operation to sign.
type Request struct {
	Bucket string
	Object string

	// Method is the upper-case HTTP verb. Defaults to GET.
	Method string

	// ExpirationSeconds is the validity window. Zero selects
	// DefaultExpirationSeconds.
	ExpirationSeconds int64

	// Subresource, when set, is added as a query parameter with an empty value
	// (e.g. "acl", "tagging").
	Subresource string

	QueryParameters map[string]string
	Headers         map[string]string
}

// withDefaults returns a copy of r with the default method and expiration applied.
func (r Request) withDefaults() Request {
	if r.Method == "" {
		r.Method = DefaultMethod
	}
	if r.ExpirationSeconds == 0 {
		r.ExpirationSeconds = DefaultExpirationSeconds
	}
	return r
}

// validate checks the structural fields of a defaulted request.
func (r Request) validate() error {
	if r.ExpirationSeconds < 0 {
		return fmt.Errorf("%w: negative expiration %d", domain.ErrInvalidRequest, r.ExpirationSeconds)
	}
	if r.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", domain.ErrInvalidRequest)
	}
	if strings.ContainsAny(r.Bucket, "/ \t\r\n") {
		return fmt.Errorf("%w: malformed bucket %q", domain.ErrInvalidRequest, r.Bucket)
	}
	if r.Object == "" {
		return fmt.Errorf("%w: object path is required", domain.ErrInvalidRequest)
	}
	for i := 0; i < len(r.Method); i++ {
		if c := r.Method[i]; c < 'A' || c > 'Z' {
			return fmt.Errorf("%w: malformed method %q", domain.ErrInvalidRequest, r.Method)
		}
	}
	return nil
}
