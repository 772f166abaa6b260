package handler

import (
	"net/http"

	"ecommerce/catalog-service/internal/app/catalog/entity"
	"ecommerce/pkg/logger"
	"ecommerce/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "catalog-service"

// SetupRoutes wires the public read endpoints and the role-gated mutations.
func SetupRoutes(catalogHandler *CatalogHandler, reviewHandler *ReviewHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:   []string{logger.RequestIDHeader},
		MaxAge:          300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := []gin.HandlerFunc{authMiddleware.Authenticate(), authMiddleware.RequireRole(entity.RoleAdmin)}
	seller := []gin.HandlerFunc{authMiddleware.Authenticate(), authMiddleware.RequireRole(entity.RoleSeller)}
	buyer := []gin.HandlerFunc{authMiddleware.Authenticate(), authMiddleware.RequireRole(entity.RoleBuyer)}

	categories := router.Group("/categories")
	{
		categories.GET("", catalogHandler.ListCategories)
		categories.GET("/:id", catalogHandler.GetCategory)

		categories.POST("", append(admin, catalogHandler.CreateCategory)...)
		categories.PUT("/:id", append(admin, catalogHandler.UpdateCategory)...)
		categories.DELETE("/:id", append(admin, catalogHandler.DeactivateCategory)...)
	}

	products := router.Group("/products")
	{
		products.GET("", catalogHandler.ListProducts)
		products.GET("/category/:category_id", catalogHandler.ListProductsByCategory)
		products.GET("/:id", catalogHandler.GetProduct)

		// ownership is checked by the service
		products.POST("", append(seller, catalogHandler.CreateProduct)...)
		products.PUT("/:id", append(seller, catalogHandler.UpdateProduct)...)
		products.DELETE("/:id", append(seller, catalogHandler.DeactivateProduct)...)
	}

	reviews := router.Group("/reviews")
	{
		reviews.GET("", reviewHandler.ListReviews)
		reviews.GET("/products/:product_id", reviewHandler.ListReviewsForProduct)

		reviews.POST("", append(buyer, reviewHandler.CreateReview)...)
		reviews.DELETE("/:id", append(admin, reviewHandler.DeleteReview)...)
	}

	return router
}
