package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lcutils/internal/domain"
)

// MockAssetService is a mock implementation of service.AssetService.
type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) ListAssets(ctx context.Context, project, folder string) ([]domain.Asset, error) {
	args := m.Called(ctx, project, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Asset), args.Error(1)
}

func (m *MockAssetService) CopyCollection(ctx context.Context, srcProject, srcCollection, dstProject, dstCollection string) ([]string, error) {
	args := m.Called(ctx, srcProject, srcCollection, dstProject, dstCollection)
	copied, _ := args.Get(0).([]string)
	return copied, args.Error(1)
}

func (m *MockAssetService) DeleteAssets(ctx context.Context, project, folder string) ([]string, error) {
	args := m.Called(ctx, project, folder)
	deleted, _ := args.Get(0).([]string)
	return deleted, args.Error(1)
}
