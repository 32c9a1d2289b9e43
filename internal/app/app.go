// Package app wires configuration into adapters and services. Components are
// built on first use so that a command touching only one backend does not
// need credentials for the others.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"k8s.io/utils/clock"

	"lcutils/internal/config"
	"lcutils/internal/credentials"
	"lcutils/internal/domain"
	"lcutils/internal/earthengine"
	"lcutils/internal/port"
	"lcutils/internal/service"
	"lcutils/internal/signer"
	"lcutils/internal/storage/gcs"
	s3storage "lcutils/internal/storage/s3"
)

// App holds the process-wide components. It is not safe for concurrent
// construction; build what you need during startup.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Clock  clock.PassiveClock

	storage   port.ObjectStorage
	s3        *s3storage.Client
	creds     port.CredentialProvider
	urlSigner port.URLSigner
	catalog   port.AssetCatalog
	closers   []io.Closer
}

// New creates an App. A nil clock selects the real clock.
func New(cfg *config.Config, logger *slog.Logger, clk clock.PassiveClock) *App {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &App{Config: cfg, Logger: logger, Clock: clk}
}

// Storage returns the configured object storage backend.
func (a *App) Storage(ctx context.Context) (port.ObjectStorage, error) {
	if a.storage != nil {
		return a.storage, nil
	}

	switch a.Config.Storage.Provider {
	case domain.StorageProviderGCS:
		st, err := gcs.NewGCSClient(ctx, &a.Config.GCS)
		if err != nil {
			return nil, err
		}
		a.storage = st
		a.closers = append(a.closers, st)
	case domain.StorageProviderS3:
		c, err := a.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		a.storage = c
	default:
		return nil, fmt.Errorf("%w: storage %q", domain.ErrUnsupportedProvider, a.Config.Storage.Provider)
	}
	return a.storage, nil
}

func (a *App) s3Client(ctx context.Context) (*s3storage.Client, error) {
	if a.s3 != nil {
		return a.s3, nil
	}
	c, err := s3storage.NewS3Client(ctx, &a.Config.S3)
	if err != nil {
		return nil, err
	}
	a.s3 = c
	a.closers = append(a.closers, c)
	return c, nil
}

// Credentials returns the signing identity provider for the configured mode.
func (a *App) Credentials(ctx context.Context) (port.CredentialProvider, error) {
	if a.creds != nil {
		return a.creds, nil
	}

	switch a.Config.Signing.Mode {
	case domain.SigningModeKeyFile:
		p, err := credentials.NewKeyFileProvider(a.Config.Signing.KeyFile)
		if err != nil {
			return nil, err
		}
		a.creds = p
	case domain.SigningModeIAM:
		p, err := credentials.NewIAMProvider(ctx, a.Config.Signing.ServiceAccount)
		if err != nil {
			return nil, err
		}
		a.creds = p
		a.closers = append(a.closers, p)
	default:
		return nil, fmt.Errorf("%w: signing mode %q", domain.ErrUnsupportedProvider, a.Config.Signing.Mode)
	}
	return a.creds, nil
}

// URLSigner returns the signer matching the storage provider: GCS V4 signing
// for gcs, SigV4 presigning for s3.
func (a *App) URLSigner(ctx context.Context) (port.URLSigner, error) {
	if a.urlSigner != nil {
		return a.urlSigner, nil
	}

	if a.Config.Storage.Provider == domain.StorageProviderS3 {
		c, err := a.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		a.urlSigner = c
		return c, nil
	}

	creds, err := a.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	a.urlSigner = service.NewSignedURLService(signer.NewSigner(a.Clock), creds, &a.Config.Signing, a.Logger)
	return a.urlSigner, nil
}

// BlobService returns a BlobService over the configured storage backend.
func (a *App) BlobService(ctx context.Context) (service.BlobService, error) {
	st, err := a.Storage(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewBlobService(st, &a.Config.Storage, a.Logger), nil
}

// AssetService returns an AssetService over the Earth Engine catalog.
func (a *App) AssetService(ctx context.Context) (service.AssetService, error) {
	if a.catalog == nil {
		c, err := earthengine.NewEEClient(ctx, &a.Config.EarthEngine)
		if err != nil {
			return nil, err
		}
		a.catalog = c
	}
	return service.NewAssetService(a.catalog, a.Logger), nil
}

// AuthService returns the bearer token service.
func (a *App) AuthService() service.AuthService {
	return service.NewAuthService(a.Config.Auth)
}

// Close releases every client that was built.
func (a *App) Close() error {
	var result *multierror.Error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	a.closers = nil
	return result.ErrorOrNil()
}
