package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrExpirationTooLong   = errors.New("expiration exceeds 604800 seconds")
	ErrNoSigningIdentity   = errors.New("no signing identity available")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)
