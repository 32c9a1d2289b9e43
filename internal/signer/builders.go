package signer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/smithy-go/encoding/httpbinding"

	"lcutils/internal/domain"
)

// BuildCanonicalURI percent-encodes the object path, keeping '/' and the
// RFC 3986 unreserved characters, and prefixes it with '/'.
func BuildCanonicalURI(object string) string {
	return "/" + httpbinding.EscapePath(object, false)
}

// EscapeQueryComponent percent-encodes a query key or value with no safe
// characters beyond the unreserved set.
func EscapeQueryComponent(s string) string {
	return httpbinding.EscapePath(s, true)
}

// BuildCredentialScope builds the V4 credential scope.
// Format: date/auto/storage/goog4_request
func BuildCredentialScope(t SigningTime) string {
	return strings.Join([]string{
		t.ShortTimeFormat(),
		ScopeRegion,
		ScopeService,
		ScopeTerminator,
	}, "/")
}

// BuildCanonicalHeaders merges the host header with the caller's headers and
// returns the signed header list and the canonical header block.
//
// A caller-supplied host header is dropped in favour of host. Keys that
// collide once lower-cased are rejected.
func BuildCanonicalHeaders(host string, header map[string]string) (signedHeaders, canonicalHeaders string, err error) {
	signed := make(map[string]string, len(header)+1)
	signed[HostHeader] = host

	for k, v := range header {
		lowerKey := strings.ToLower(strings.TrimSpace(k))
		if lowerKey == "" {
			return "", "", fmt.Errorf("%w: empty header name", domain.ErrInvalidRequest)
		}
		if lowerKey == HostHeader {
			continue
		}
		if _, ok := signed[lowerKey]; ok {
			return "", "", fmt.Errorf("%w: duplicate header %q", domain.ErrInvalidRequest, lowerKey)
		}
		signed[lowerKey] = v
	}

	keys := make([]string, 0, len(signed))
	for k := range signed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(strings.ToLower(strings.TrimSpace(signed[k])))
		b.WriteByte('\n')
	}

	return strings.Join(keys, ";"), b.String(), nil
}

// BuildCanonicalQuery sorts the parameters by raw key and joins the encoded
// pairs with '&'.
func BuildCanonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, EscapeQueryComponent(k)+"="+EscapeQueryComponent(params[k]))
	}
	return strings.Join(pairs, "&")
}

// BuildCanonicalString builds the canonical request string.
// Format: METHOD\nURI\nQUERY\nHEADERS\nSIGNED_HEADERS\nPAYLOAD
// The canonical headers block already ends with a newline.
func BuildCanonicalString(method, uri, query, canonicalHeaders, signedHeaders, payload string) string {
	return strings.Join([]string{
		method,
		uri,
		query,
		canonicalHeaders,
		signedHeaders,
		payload,
	}, "\n")
}

// HashCanonicalString returns the lower-case hex SHA-256 of the canonical request.
func HashCanonicalString(canonicalRequest string) string {
	hash := sha256.Sum256([]byte(canonicalRequest))
	return hex.EncodeToString(hash[:])
}

// BuildStringToSign builds the string to sign.
// Format: ALGORITHM\nTIMESTAMP\nSCOPE\nHEX(SHA256(CANONICAL_REQUEST))
func BuildStringToSign(algorithm, timestamp, credentialScope, canonicalRequest string) string {
	return strings.Join([]string{
		algorithm,
		timestamp,
		credentialScope,
		HashCanonicalString(canonicalRequest),
	}, "\n")
}

// BuildSignedURL composes the final URL. canonicalURI already starts with '/'.
func BuildSignedURL(host, canonicalURI, canonicalQuery, signature string) string {
	var b strings.Builder
	b.Grow(len("https://") + len(host) + len(canonicalURI) + 1 +
		len(canonicalQuery) + 1 + len(GoogSignatureKey) + 1 + len(signature))
	b.WriteString("https://")
	b.WriteString(host)
	b.WriteString(canonicalURI)
	b.WriteByte('?')
	b.WriteString(canonicalQuery)
	b.WriteByte('&')
	b.WriteString(GoogSignatureKey)
	b.WriteByte('=')
	b.WriteString(signature)
	return b.String()
}
