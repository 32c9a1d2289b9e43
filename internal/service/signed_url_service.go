package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lcutils/internal/config"
	"lcutils/internal/domain"
	"lcutils/internal/port"
	"lcutils/internal/signer"
)

type signedURLService struct {
	signer      *signer.Signer
	credentials port.CredentialProvider
	cfg         *config.SigningConfig
	log         *slog.Logger
}

// NewSignedURLService creates a URLSigner that produces GCS V4 signed URLs
// with the identity supplied by credentials.
func NewSignedURLService(
	s *signer.Signer,
	credentials port.CredentialProvider,
	cfg *config.SigningConfig,
	logger *slog.Logger,
) port.URLSigner {
	return &signedURLService{
		signer:      s,
		credentials: credentials,
		cfg:         cfg,
		log:         logger,
	}
}

// SignedURL signs the request. Failures are logged at warn and returned; the
// caller decides whether a missing URL is fatal.
func (s *signedURLService) SignedURL(ctx context.Context, input port.SignedURLInput) (*domain.SignedURL, error) {
	identity, err := s.credentials.Identity(ctx)
	if err != nil {
		s.log.Warn("signedURLService.SignedURL: resolving identity failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrNoSigningIdentity, err)
	}

	expiration := input.ExpirationSeconds
	if expiration == 0 {
		expiration = s.cfg.DefaultExpiry
	}

	req := signer.Request{
		Bucket:            input.Bucket,
		Object:            input.Key,
		Method:            input.Method,
		ExpirationSeconds: expiration,
		Subresource:       input.Subresource,
		QueryParameters:   input.QueryParameters,
		Headers:           input.Headers,
	}

	now := s.signer.Now()
	url, err := signer.Sign(identity, req, now)
	if err != nil {
		s.log.Warn("signedURLService.SignedURL: signing failed",
			"bucket", input.Bucket, "key", input.Key, "error", err)
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = signer.DefaultMethod
	}
	if expiration == 0 {
		expiration = signer.DefaultExpirationSeconds
	}

	s.log.Debug("signedURLService.SignedURL: signed",
		"bucket", input.Bucket, "key", input.Key, "method", method, "expires_in", expiration)
	return &domain.SignedURL{
		URL:       url,
		Method:    method,
		ExpiresAt: now.UTC().Add(time.Duration(expiration) * time.Second),
	}, nil
}
