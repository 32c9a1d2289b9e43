package signer

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"k8s.io/utils/clock"

	"lcutils/internal/domain"
)

// Signer builds V4 signed URLs against an injected clock. It holds no mutable
// state and is safe for concurrent use; the thread safety of each Identity is
// the responsibility of its provider.
type Signer struct {
	clock clock.PassiveClock
}

// NewSigner creates a Signer. A nil clock selects the real clock.
func NewSigner(clk clock.PassiveClock) *Signer {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Signer{clock: clk}
}

// Now returns the current instant of the signer's clock.
func (s *Signer) Now() time.Time {
	return s.clock.Now()
}

// SignedURL signs req with id at the clock's current instant.
func (s *Signer) SignedURL(id Identity, req Request) (string, error) {
	return Sign(id, req, s.clock.Now())
}

// Sign builds the GOOG4-RSA-SHA256 signed URL for req at instant now.
//
// The result is a pure function of (id, req, now). On failure no URL is
// returned and the error wraps one of domain.ErrExpirationTooLong,
// domain.ErrNoSigningIdentity or domain.ErrInvalidRequest, or the error of
// the identity's signer.
func Sign(id Identity, req Request, now time.Time) (string, error) {
	req = req.withDefaults()

	if req.ExpirationSeconds > MaxExpirationSeconds {
		return "", fmt.Errorf("%w: got %d", domain.ErrExpirationTooLong, req.ExpirationSeconds)
	}
	if id == nil || id.ServiceAccountEmail() == "" {
		return "", domain.ErrNoSigningIdentity
	}
	if err := req.validate(); err != nil {
		return "", err
	}

	t := NewSigningTime(now)
	canonicalURI := BuildCanonicalURI(req.Object)
	credentialScope := BuildCredentialScope(t)
	credential := id.ServiceAccountEmail() + "/" + credentialScope
	host := req.Bucket + HostSuffix

	signedHeaders, canonicalHeaders, err := BuildCanonicalHeaders(host, req.Headers)
	if err != nil {
		return "", err
	}

	query := make(map[string]string, len(req.QueryParameters)+6)
	for k, v := range req.QueryParameters {
		query[k] = v
	}
	query[GoogAlgorithmKey] = SigningAlgorithm
	query[GoogCredentialKey] = credential
	query[GoogDateKey] = t.TimeFormat()
	query[GoogExpiresKey] = strconv.FormatInt(req.ExpirationSeconds, 10)
	query[GoogSignedHeadersKey] = signedHeaders
	if req.Subresource != "" {
		query[req.Subresource] = ""
	}
	canonicalQuery := BuildCanonicalQuery(query)

	canonicalRequest := BuildCanonicalString(
		req.Method,
		canonicalURI,
		canonicalQuery,
		canonicalHeaders,
		signedHeaders,
		UnsignedPayload,
	)

	strToSign := BuildStringToSign(
		SigningAlgorithm,
		t.TimeFormat(),
		credentialScope,
		canonicalRequest,
	)

	signature, err := id.SignBytes([]byte(strToSign))
	if err != nil {
		return "", fmt.Errorf("signing string to sign: %w", err)
	}

	return BuildSignedURL(host, canonicalURI, canonicalQuery, hex.EncodeToString(signature)), nil
}
