package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-multierror"

	"lcutils/internal/domain"
	"lcutils/internal/port"
)

// AssetService defines bulk operations over the asset catalog.
type AssetService interface {
	ListAssets(ctx context.Context, project, folder string) ([]domain.Asset, error)
	CopyCollection(ctx context.Context, srcProject, srcCollection, dstProject, dstCollection string) ([]string, error)
	DeleteAssets(ctx context.Context, project, folder string) ([]string, error)
}

type assetService struct {
	catalog port.AssetCatalog
	log     *slog.Logger
}

// NewAssetService creates a new AssetService implementation.
func NewAssetService(catalog port.AssetCatalog, logger *slog.Logger) AssetService {
	return &assetService{catalog: catalog, log: logger}
}

// AssetParent joins a project and an optional folder into a listing parent.
func AssetParent(project, folder string) string {
	if folder == "" {
		return project
	}
	return project + "/" + folder
}

// ShortAssetName derives the destination name used when copying a collection:
// the last path segment with "_" replaced by "-" and any "rpms-" removed.
func ShortAssetName(id string) string {
	short := id[strings.LastIndex(id, "/")+1:]
	short = strings.ReplaceAll(short, "_", "-")
	return strings.ReplaceAll(short, "rpms-", "")
}

func (s *assetService) ListAssets(ctx context.Context, project, folder string) ([]domain.Asset, error) {
	return s.catalog.ListAssets(ctx, AssetParent(project, folder))
}

// CopyCollection copies every asset of the source collection. Failures do not
// stop the batch; they are returned together with the destinations that were
// copied.
func (s *assetService) CopyCollection(ctx context.Context, srcProject, srcCollection, dstProject, dstCollection string) ([]string, error) {
	assets, err := s.ListAssets(ctx, srcProject, srcCollection)
	if err != nil {
		return nil, err
	}

	var (
		copied []string
		result *multierror.Error
	)
	for _, a := range assets {
		dest := dstProject + "/" + dstCollection + "/" + ShortAssetName(a.ID)
		if err := s.catalog.CopyAsset(ctx, a.ID, dest); err != nil {
			s.log.Warn("assetService.CopyCollection: copy failed", "source", a.ID, "dest", dest, "error", err)
			result = multierror.Append(result, err)
			continue
		}
		s.log.Info("assetService.CopyCollection: asset copied", "source", a.ID, "dest", dest)
		copied = append(copied, dest)
	}
	return copied, result.ErrorOrNil()
}

// DeleteAssets deletes every asset listed under the folder and returns the
// ids that were removed.
func (s *assetService) DeleteAssets(ctx context.Context, project, folder string) ([]string, error) {
	assets, err := s.ListAssets(ctx, project, folder)
	if err != nil {
		return nil, err
	}

	var (
		deleted []string
		result  *multierror.Error
	)
	for _, a := range assets {
		if err := s.catalog.DeleteAsset(ctx, a.ID); err != nil {
			s.log.Warn("assetService.DeleteAssets: delete failed", "asset", a.ID, "error", err)
			result = multierror.Append(result, err)
			continue
		}
		s.log.Info("assetService.DeleteAssets: asset deleted", "asset", a.ID)
		deleted = append(deleted, a.ID)
	}
	return deleted, result.ErrorOrNil()
}
