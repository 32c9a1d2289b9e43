package port

import (
	"context"

	"lcutils/internal/domain"
)

// AssetCatalog abstracts a hierarchical geospatial asset catalog.
type AssetCatalog interface {
	ListAssets(ctx context.Context, parent string) ([]domain.Asset, error)
	CopyAsset(ctx context.Context, source, destination string) error
	DeleteAsset(ctx context.Context, name string) error
}
