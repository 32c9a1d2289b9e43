package mocks

import (
	"context"
	"io"
	"os"

	"github.com/stretchr/testify/mock"

	"lcutils/internal/domain"
	"lcutils/internal/port"
	"lcutils/internal/service"
)

// MockBlobService is a mock implementation of service.BlobService.
type MockBlobService struct {
	mock.Mock
}

func (m *MockBlobService) Exists(ctx context.Context, bucket, key string) (bool, error) {
	args := m.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlobService) List(ctx context.Context, bucket, prefix string) ([]domain.BlobInfo, error) {
	args := m.Called(ctx, bucket, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BlobInfo), args.Error(1)
}

func (m *MockBlobService) ListNames(ctx context.Context, bucket, prefix string) ([]string, error) {
	args := m.Called(ctx, bucket, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBlobService) ListTIFURIsByYear(ctx context.Context, bucket, prefix string) (map[string][]string, error) {
	args := m.Called(ctx, bucket, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockBlobService) DownloadTemp(ctx context.Context, bucket, key string) (*os.File, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*os.File), args.Error(1)
}

func (m *MockBlobService) Download(ctx context.Context, bucket, key, localPath string) error {
	args := m.Called(ctx, bucket, key, localPath)
	return args.Error(0)
}

func (m *MockBlobService) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (*port.UploadOutput, error) {
	args := m.Called(ctx, bucket, key, body, size, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.UploadOutput), args.Error(1)
}

func (m *MockBlobService) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockBlobService) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	args := m.Called(ctx, srcBucket, srcKey, dstBucket, dstKey)
	return args.Error(0)
}

func (m *MockBlobService) Move(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	args := m.Called(ctx, srcBucket, srcKey, dstBucket, dstKey)
	return args.Error(0)
}

func (m *MockBlobService) MakePublic(ctx context.Context, bucket, key string) (string, error) {
	args := m.Called(ctx, bucket, key)
	return args.String(0), args.Error(1)
}

func (m *MockBlobService) UploadInputGroup(ctx context.Context, bucket, prefix string, group service.InputGroup) (*service.InputGroupResult, error) {
	args := m.Called(ctx, bucket, prefix, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InputGroupResult), args.Error(1)
}
