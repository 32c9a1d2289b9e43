package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lcutils/internal/signer"
)

// MockCredentialProvider is a mock implementation of port.CredentialProvider.
type MockCredentialProvider struct {
	mock.Mock
}

func (m *MockCredentialProvider) Identity(ctx context.Context) (signer.Identity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(signer.Identity), args.Error(1)
}

// MockIdentity is a mock implementation of signer.Identity.
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ServiceAccountEmail() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) SignBytes(payload []byte) ([]byte, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
