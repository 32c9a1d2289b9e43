package signer

// V4 signed URL constants for Google Cloud Storage. These values are part of
// the wire contract and must match the storage endpoint byte for byte.

const (
	// SigningAlgorithm is the V4 RSA signing algorithm identifier.
	SigningAlgorithm = "GOOG4-RSA-SHA256"

	// ScopeRegion is the location component of the credential scope.
	ScopeRegion = "auto"

	// ScopeService is the service component of the credential scope.
	ScopeService = "storage"

	// ScopeTerminator closes every credential scope.
	ScopeTerminator = "goog4_request"

	// UnsignedPayload is the payload marker of the canonical request.
	// Signed URLs never cover the request body.
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	// MaxExpirationSeconds is the protocol ceiling of seven days.
	MaxExpirationSeconds = 604800

	// DefaultExpirationSeconds applies when a request leaves the window unset.
	DefaultExpirationSeconds = 1000

	// DefaultMethod applies when a request leaves the verb unset.
	DefaultMethod = "GET"

	// HostSuffix is appended to the bucket name to form the virtual host.
	HostSuffix = ".storage.googleapis.com"

	// HostHeader is the only header that is always signed.
	HostHeader = "host"

	GoogAlgorithmKey     = "X-Goog-Algorithm"
	GoogCredentialKey    = "X-Goog-Credential"
	GoogDateKey          = "X-Goog-Date"
	GoogExpiresKey       = "X-Goog-Expires"
	GoogSignedHeadersKey = "X-Goog-SignedHeaders"

	// GoogSignatureKey is appended after the canonical query string and is
	// therefore not part of the signed material.
	GoogSignatureKey = "x-goog-signature"

	// TimeFormat is the layout of X-Goog-Date.
	// Format: YYYYMMDDTHHMMSSZ
	TimeFormat = "20060102T150405Z"

	// ShortTimeFormat is the layout of the credential scope date.
	// Format: YYYYMMDD
	ShortTimeFormat = "20060102"
)
