package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/payetonkawa/catalog-service/internal/account/domain"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, accountID, token string) error {
	args := m.Called(ctx, accountID, token)
	return args.Error(0)
}

type MockTokenGenerator struct {
	mock.Mock
}

func (m *MockTokenGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Credential, error) {
	args := m.Called(ctx, req)
	if c := args.Get(0); c != nil {
		return c.(*domain.Credential), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*domain.LoginResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAccessGate struct {
	mock.Mock
}

func (m *MockAccessGate) Validate(ctx context.Context, token string) (*domain.Credential, error) {
	args := m.Called(ctx, token)
	if c := args.Get(0); c != nil {
		return c.(*domain.Credential), args.Error(1)
	}
	return nil, args.Error(1)
}
