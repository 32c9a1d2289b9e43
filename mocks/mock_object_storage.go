package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"lcutils/internal/domain"
	"lcutils/internal/port"
)

// MockObjectStorage is a mock implementation of port.ObjectStorage.
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	args := m.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStorage) List(ctx context.Context, bucket, prefix string) ([]domain.BlobInfo, error) {
	args := m.Called(ctx, bucket, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BlobInfo), args.Error(1)
}

func (m *MockObjectStorage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.UploadOutput), args.Error(1)
}

// Download writes the []byte given as the first Return value to w.
func (m *MockObjectStorage) Download(ctx context.Context, bucket, key string, w io.Writer) (int64, error) {
	args := m.Called(ctx, bucket, key, w)
	if err := args.Error(1); err != nil {
		return 0, err
	}
	data, _ := args.Get(0).([]byte)
	n, err := w.Write(data)
	return int64(n), err
}

func (m *MockObjectStorage) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	args := m.Called(ctx, srcBucket, srcKey, dstBucket, dstKey)
	return args.Error(0)
}

func (m *MockObjectStorage) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockObjectStorage) MakePublic(ctx context.Context, bucket, key string) (string, error) {
	args := m.Called(ctx, bucket, key)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}
