package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/payetonkawa/catalog-service/internal/catalog/domain"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	if product != nil && args.Error(0) == nil {
		product.ID = "mocked-product-id"
		product.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockProductRepository) ListProducts(ctx context.Context) ([]domain.ProductListing, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]domain.ProductListing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}
