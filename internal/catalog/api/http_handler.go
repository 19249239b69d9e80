package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/payetonkawa/catalog-service/internal/catalog/domain"
	"github.com/payetonkawa/catalog-service/internal/catalog/repository"
	"github.com/payetonkawa/catalog-service/internal/catalog/service"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
)

const (
	MsgProductCreated  = "Produit ajouté!"
	MsgProductNotFound = "Produit introuvable."
	MsgInvalidProduct  = "Requête invalide : "
	MsgInternalError   = "Une erreur est survenue."
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(ps service.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

// RegisterRoutes mounts the catalog. Reads go through gate; product creation
// does not.
func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup, gate gin.HandlerFunc) {
	productRoutes := router.Group("/produits")
	{
		productRoutes.GET("", gate, h.ListProducts)
		productRoutes.GET("/:id", gate, h.GetProduct)
		productRoutes.POST("", h.CreateProduct)
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		logger.Error("ListProducts: service error", err)
		c.JSON(http.StatusInternalServerError, MsgInternalError)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("id")
	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, MsgProductNotFound)
			return
		}
		logger.Error("GetProduct: service error", err, "product_id", productID)
		c.JSON(http.StatusInternalServerError, MsgInternalError)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("CreateProduct: bad request", "error", err)
		c.JSON(http.StatusBadRequest, MsgInvalidProduct+"corps JSON mal formé.")
		return
	}

	_, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, MsgInvalidProduct+vErr.Error())
			return
		}
		logger.Error("CreateProduct: service error", err)
		c.JSON(http.StatusInternalServerError, MsgInternalError)
		return
	}

	c.JSON(http.StatusOK, MsgProductCreated)
}
