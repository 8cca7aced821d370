package main

import (
	"log"
	"time"

	"github.com/P3chys/awards-api/internal/config"
	"github.com/P3chys/awards-api/internal/database"
	"github.com/P3chys/awards-api/internal/logging"
	"github.com/P3chys/awards-api/internal/models"
	"github.com/P3chys/awards-api/internal/services"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const batchSize = 100

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.IsRelease())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL, cfg.DBLogLevel, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	search := services.NewSearchService(cfg, logger.Named("search"))
	if !search.Enabled() {
		logger.Fatal("MEILI_URL is not set, nothing to reindex")
	}

	var dbCount int64
	if err := db.Model(&models.Award{}).Count(&dbCount).Error; err != nil {
		logger.Fatal("failed to count awards", zap.Error(err))
	}

	meiliCount, err := search.GetAwardCount()
	if err != nil {
		logger.Fatal("failed to count indexed awards", zap.Error(err))
	}

	logger.Info("award counts", zap.Int64("db", dbCount), zap.Int64("meilisearch", meiliCount))

	offset := 0
	indexed := 0
	for {
		var awards []models.Award
		if err := db.Order("id").Limit(batchSize).Offset(offset).Find(&awards).Error; err != nil {
			logger.Fatal("failed to fetch awards", zap.Int("offset", offset), zap.Error(err))
		}
		if len(awards) == 0 {
			break
		}

		if err := search.IndexAwards(awards); err != nil {
			logger.Error("failed to index batch", zap.Int("offset", offset), zap.Error(err))
		} else {
			indexed += len(awards)
			logger.Info("indexed batch", zap.Int("size", len(awards)), zap.Int("total", indexed))
		}

		offset += batchSize
		time.Sleep(100 * time.Millisecond)
	}

	// Meilisearch applies documents asynchronously, so this count may lag.
	finalCount, err := search.GetAwardCount()
	if err != nil {
		logger.Warn("failed to get final count", zap.Error(err))
	}
	logger.Info("reindexing completed", zap.Int("indexed", indexed), zap.Int64("meilisearch", finalCount))
}
