package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lcutils/internal/domain"
	"lcutils/internal/port"
)

// MockURLSigner is a mock implementation of port.URLSigner.
type MockURLSigner struct {
	mock.Mock
}

func (m *MockURLSigner) SignedURL(ctx context.Context, input port.SignedURLInput) (*domain.SignedURL, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SignedURL), args.Error(1)
}
