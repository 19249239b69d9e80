package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/payetonkawa/catalog-service/internal/catalog/domain"
	"github.com/payetonkawa/catalog-service/internal/catalog/repository"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
	"github.com/payetonkawa/catalog-service/internal/platform/metrics"
)

var ErrProductCreationFailed = errors.New("could not create product")

type ProductService interface {
	CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.ProductListing, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

type productServiceImpl struct {
	repo    repository.ProductRepository
	metrics *metrics.Registry
}

func NewProductService(repo repository.ProductRepository, m *metrics.Registry) ProductService {
	return &productServiceImpl{repo: repo, metrics: m}
}

// CreateProduct validates the whole request before anything is written.
func (s *productServiceImpl) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product := req.NewProduct()
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProductCreationFailed, err)
	}

	s.metrics.RecordProductCreated()
	logger.Info("product created", "product_id", product.ID, "lots", len(product.Lots), "media", len(product.Media))
	return product, nil
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]domain.ProductListing, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.ProductListing{}
	}
	return products, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, productID)
}
