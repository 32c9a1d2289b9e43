package port

import (
	"context"

	"lcutils/internal/domain"
)

// SignedURLInput describes the object and operation a signed URL should grant.
type SignedURLInput struct {
	Bucket            string
	Key               string
	Method            string
	ExpirationSeconds int64
	Subresource       string
	QueryParameters   map[string]string
	Headers           map[string]string
}

// URLSigner mints time-limited URLs for objects.
type URLSigner interface {
	SignedURL(ctx context.Context, input SignedURLInput) (*domain.SignedURL, error)
}
