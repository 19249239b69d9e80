package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/payetonkawa/catalog-service/internal/catalog/domain"
	"github.com/payetonkawa/catalog-service/internal/catalog/repository"
)

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductService) ListProducts(ctx context.Context) ([]domain.ProductListing, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]domain.ProductListing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

// denyAll and allowAll stand in for the token gate.
func denyAll(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
func allowAll(c *gin.Context) { c.Next() }

func newCatalogRouter(svc *mockProductService, gate gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewProductHandler(svc).RegisterRoutes(router.Group(""), gate)
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProductHandler_Gating(t *testing.T) {
	svc := new(mockProductService)
	router := newCatalogRouter(svc, denyAll)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/produits", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/produits/p1", "").Code)
	svc.AssertNotCalled(t, "ListProducts", mock.Anything)

	svc.On("CreateProduct", mock.Anything, mock.Anything).Return(&domain.Product{ID: "p1"}, nil).Once()
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/produits",
		`{"name":"a","description":"b","price":1}`).Code, "creation is not gated")
}

func TestProductHandler_ListProducts(t *testing.T) {
	t.Run("returns rows", func(t *testing.T) {
		svc := new(mockProductService)
		rows := []domain.ProductListing{{ID: "p1", Name: "T-shirt", Price: decimal.RequireFromString("19.99"), Quantity: 10, Lots: 1}}
		svc.On("ListProducts", mock.Anything).Return(rows, nil).Once()

		w := serve(newCatalogRouter(svc, allowAll), http.MethodGet, "/produits", "")

		require.Equal(t, http.StatusOK, w.Code)
		var got []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, 19.99, got[0]["price"])
		assert.Equal(t, float64(10), got[0]["quantity"])
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("ListProducts", mock.Anything).Return(nil, errors.New("db down")).Once()

		w := serve(newCatalogRouter(svc, allowAll), http.MethodGet, "/produits", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, `"Une erreur est survenue."`, w.Body.String())
	})
}

func TestProductHandler_GetProduct(t *testing.T) {
	svc := new(mockProductService)
	svc.On("GetProduct", mock.Anything, "p1").Return(&domain.Product{ID: "p1", Name: "T-shirt"}, nil).Once()
	svc.On("GetProduct", mock.Anything, "nope").Return(nil, repository.ErrProductNotFound).Once()
	router := newCatalogRouter(svc, allowAll)

	w := serve(router, http.MethodGet, "/produits/p1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"T-shirt"`)

	w = serve(router, http.MethodGet, "/produits/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}

func TestProductHandler_CreateProduct(t *testing.T) {
	body := `{"name":"T-shirt","description":"cotton","price":19.99,` +
		`"stock":[{"quantity":10}],"media":[{"type":"image","url":"https://x/img.jpg"}]}`

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{"created", body, nil, http.StatusOK, `"Produit ajouté!"`},
		{"validation error", body, &domain.ValidationError{Field: "media[0].url", Reason: "is required"}, http.StatusBadRequest,
			`"Requête invalide : media[0].url: is required"`},
		{"storage error", body, errors.New("constraint violated"), http.StatusInternalServerError, `"Une erreur est survenue."`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockProductService)
			matchReq := mock.MatchedBy(func(r domain.CreateProductRequest) bool {
				return r.Name == "T-shirt" && r.Price.Decimal.Equal(decimal.RequireFromString("19.99")) &&
					len(r.Stock) == 1 && r.Stock[0].Quantity == 10 && len(r.Media) == 1
			})
			if tt.serviceErr == nil {
				svc.On("CreateProduct", mock.Anything, matchReq).Return(&domain.Product{ID: "p1"}, nil).Once()
			} else {
				svc.On("CreateProduct", mock.Anything, matchReq).Return(nil, tt.serviceErr).Once()
			}

			w := serve(newCatalogRouter(svc, allowAll), http.MethodPost, "/produits", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}

	t.Run("malformed JSON", func(t *testing.T) {
		svc := new(mockProductService)
		for _, b := range []string{`{`, `{"name":"a","price":"abc"}`, `{"stock":[{"quantity":1.5}]}`} {
			w := serve(newCatalogRouter(svc, allowAll), http.MethodPost, "/produits", b)
			assert.Equal(t, http.StatusBadRequest, w.Code, b)
		}
		svc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})
}
