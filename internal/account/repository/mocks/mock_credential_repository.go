package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/payetonkawa/catalog-service/internal/account/domain"
)

type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) CreateCredential(ctx context.Context, cred *domain.Credential) error {
	args := m.Called(ctx, cred)
	if cred != nil && args.Error(0) == nil {
		cred.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockCredentialRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Credential, error) {
	args := m.Called(ctx, accountID)
	if c := args.Get(0); c != nil {
		return c.(*domain.Credential), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialRepository) GetByToken(ctx context.Context, token string) (*domain.Credential, error) {
	args := m.Called(ctx, token)
	if c := args.Get(0); c != nil {
		return c.(*domain.Credential), args.Error(1)
	}
	return nil, args.Error(1)
}
