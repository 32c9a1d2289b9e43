package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lcutils/internal/domain"
)

// MockAssetCatalog is a mock implementation of port.AssetCatalog.
type MockAssetCatalog struct {
	mock.Mock
}

func (m *MockAssetCatalog) ListAssets(ctx context.Context, parent string) ([]domain.Asset, error) {
	args := m.Called(ctx, parent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Asset), args.Error(1)
}

func (m *MockAssetCatalog) CopyAsset(ctx context.Context, source, destination string) error {
	args := m.Called(ctx, source, destination)
	return args.Error(0)
}

func (m *MockAssetCatalog) DeleteAsset(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
