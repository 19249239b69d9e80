// Package app assembles the HTTP surface of the catalog service.
package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	accountAPI "github.com/payetonkawa/catalog-service/internal/account/api"
	accountRepo "github.com/payetonkawa/catalog-service/internal/account/repository"
	accountService "github.com/payetonkawa/catalog-service/internal/account/service"
	catalogAPI "github.com/payetonkawa/catalog-service/internal/catalog/api"
	catalogRepo "github.com/payetonkawa/catalog-service/internal/catalog/repository"
	catalogService "github.com/payetonkawa/catalog-service/internal/catalog/service"
	"github.com/payetonkawa/catalog-service/internal/platform/config"
	"github.com/payetonkawa/catalog-service/internal/platform/metrics"
	"github.com/payetonkawa/catalog-service/internal/platform/middleware"
)

// Deps are the process-wide resources the router is built from.
type Deps struct {
	DB       *sql.DB
	Notifier accountService.Notifier
	Metrics  *metrics.Registry

	// Redis enables rate limiting on the credential endpoints when non-nil.
	Redis     redis.Scripter
	RateLimit config.RateLimitConfig

	BcryptCost int
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	if d.Metrics != nil {
		router.Use(d.Metrics.GinMiddleware())
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	router.GET("/ping", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Account
	credentials := accountRepo.NewSQLCredentialRepository(d.DB)
	authSvc := accountService.NewAuthService(
		credentials,
		accountService.NewBcryptHasher(d.BcryptCost),
		accountService.NewRandomTokenGenerator(),
		d.Notifier,
		d.Metrics,
	)
	gate := accountAPI.RequireToken(accountService.NewAccessGate(credentials))

	var limits []gin.HandlerFunc
	if d.Redis != nil {
		limits = append(limits, middleware.RedisRateLimit(d.Redis, d.RateLimit.Limit, d.RateLimit.Window))
	}
	accountAPI.NewAccountHandler(authSvc).RegisterRoutes(&router.RouterGroup, limits...)

	// Catalog
	products := catalogRepo.NewSQLProductRepository(d.DB)
	productSvc := catalogService.NewProductService(products, d.Metrics)
	catalogAPI.NewProductHandler(productSvc).RegisterRoutes(&router.RouterGroup, gate)

	return router
}
