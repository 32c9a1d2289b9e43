package domain

// StorageProvider selects the object storage backend.
type StorageProvider string

const (
	StorageProviderGCS StorageProvider = "gcs"
	StorageProviderS3  StorageProvider = "s3"
)

// SigningMode selects where the signing identity comes from.
type SigningMode string

const (
	// SigningModeKeyFile signs locally with the private key of a service-account JSON key.
	SigningModeKeyFile SigningMode = "keyfile"
	// SigningModeIAM delegates signing to the IAM Credentials signBlob API.
	SigningModeIAM SigningMode = "iam"
)

// HTTP verbs accepted for signed URLs.
const (
	MethodGet    = "GET"
	MethodHead   = "HEAD"
	MethodPut    = "PUT"
	MethodPost   = "POST"
	MethodDelete = "DELETE"
)
