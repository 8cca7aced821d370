package router

import (
	"fmt"

	"github.com/P3chys/awards-api/internal/config"
	"github.com/P3chys/awards-api/internal/handlers"
	"github.com/P3chys/awards-api/internal/middleware"
	"github.com/P3chys/awards-api/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config, log *zap.Logger) (*gin.Engine, error) {
	// Initialize Services
	imageStore, err := services.NewImageStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	policy, err := services.ParseInsertPolicy(cfg.InsertPolicy)
	if err != nil {
		return nil, err
	}

	awardService := services.NewAwardService(db, policy, log.Named("awards"))
	summaryService := services.NewSummaryService(db, log.Named("summaries"))
	categoryService := services.NewCategoryService(db)
	searchService := services.NewSearchService(cfg, log.Named("search"))

	var limiter *middleware.RateLimiter
	if cfg.RedisURL != "" {
		limiter, err = middleware.NewRateLimiter(cfg.RedisURL, log.Named("ratelimit"))
		if err != nil {
			log.Warn("rate limiting disabled", zap.Error(err))
			limiter = nil
		}
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log.Named("http")))

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	// Health check endpoint
	r.GET("/health", handlers.HealthCheck(db, searchService, limiter != nil))

	// Uploaded images
	r.GET("/uploads/:name", handlers.ServeImage(imageStore, log))

	api := r.Group("/api")
	{
		// Reads
		api.GET("/categories", handlers.ListCategories(categoryService, log))
		api.GET("/awards", handlers.ListAwards(awardService, log))
		api.GET("/awards/search", handlers.SearchAwards(searchService, log))
		api.GET("/awards/:id", handlers.GetAward(awardService, log))
		api.GET("/summaries", handlers.ListSummaries(summaryService, log))

		// Writes
		write := api.Group("")
		if limiter != nil {
			write.Use(limiter.RateLimitByIP(middleware.WriteScope, cfg.RateLimitMax, cfg.RateLimitWindow))
		}
		{
			write.POST("/awards", handlers.CreateAward(awardService, searchService, log))
			write.PATCH("/awards/reorder", handlers.ReorderAwards(awardService, log))
			write.PUT("/awards/:id", handlers.UpdateAward(awardService, searchService, log))
			write.DELETE("/awards/:id", handlers.DeleteAward(awardService, searchService, log))

			write.POST("/summaries", handlers.CreateSummary(summaryService, log))
			write.PUT("/summaries/:id", handlers.UpdateSummary(summaryService, log))
			write.DELETE("/summaries/:id", handlers.DeleteSummary(summaryService, log))

			write.POST("/upload", handlers.UploadImage(imageStore, cfg.MaxUploadSize, log))
		}
	}

	return r, nil
}
