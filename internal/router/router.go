// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/craftai/craftai-backend/internal/cache"
	"github.com/craftai/craftai-backend/internal/config"
	"github.com/craftai/craftai-backend/internal/handlers"
	"github.com/craftai/craftai-backend/internal/middleware"
	"github.com/craftai/craftai-backend/internal/services"
	"github.com/craftai/craftai-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, log *logrus.Logger) (*gin.Engine, error) {
	// Initialize services
	productCache := cache.New(time.Duration(cfg.Cache.ProductTTL)*time.Second, nil)
	productStore := services.NewProductStore(db)
	catalogService := services.NewCatalogService(productStore, productCache, log)

	storageService, err := services.NewStorageService(cfg, log)
	if err != nil {
		return nil, err
	}

	aiService, err := services.NewAIService(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	authService := services.NewAuthService(db, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(catalogService, storageService)
	aiHandler := handlers.NewAIHandler(aiService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/search", productHandler.SearchProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)

			// Artisan routes
			protected := products.Group("")
			protected.Use(middleware.AuthRequired(), middleware.ArtisanRequired())
			{
				protected.POST("", productHandler.CreateProduct)
				protected.PUT("/:id", productHandler.UpdateProduct)
				protected.DELETE("/:id", productHandler.DeleteProduct)
				protected.POST("/:id/publish", productHandler.PublishProduct)
				protected.POST("/:id/archive", productHandler.ArchiveProduct)
				protected.POST("/upload-image", middleware.UploadRateLimit(), productHandler.UploadProductImage)
				protected.DELETE("/image", productHandler.DeleteProductImage)
			}
		}

		// Owner listing routes
		my := v1.Group("/my")
		my.Use(middleware.AuthRequired())
		{
			my.GET("/products", productHandler.GetMyProducts)
		}

		// AI routes
		ai := v1.Group("/ai")
		ai.Use(middleware.AuthRequired(), middleware.AIRateLimit())
		{
			ai.POST("/generate-story", aiHandler.GenerateStory)
			ai.POST("/detect-materials", aiHandler.DetectMaterials)
			ai.POST("/analyze-image", aiHandler.AnalyzeImage)
		}

		// Category routes
		categories := v1.Group("/categories")
		{
			categories.GET("", productHandler.GetCategories)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r, nil
}
