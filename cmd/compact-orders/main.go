package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/P3chys/awards-api/internal/config"
	"github.com/P3chys/awards-api/internal/database"
	"github.com/P3chys/awards-api/internal/logging"
	"github.com/P3chys/awards-api/internal/models"
	"github.com/P3chys/awards-api/internal/ordering"
	"github.com/P3chys/awards-api/internal/services"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	checkOnly := flag.Bool("check", false, "report categories with broken ordering without fixing them")
	flag.Parse()

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

	logger.Info("step 1: checking award order density")
	broken, err := brokenCategories(db)
	if err != nil {
		logger.Fatal("density check failed", zap.Error(err))
	}
	if len(broken) == 0 {
		logger.Info("every category is dense, nothing to do")
		return
	}
	logger.Warn("categories with broken ordering", zap.Uints("category_ids", broken))

	if *checkOnly {
		return
	}

	logger.Info("step 2: renumbering awards")
	awards := services.NewAwardService(db, services.InsertByDate, logger.Named("awards"))
	touched, err := awards.Compact(context.Background())
	if err != nil {
		logger.Fatal("compaction failed", zap.Error(err))
	}
	logger.Info("renumbered awards", zap.Int("rows", touched))

	logger.Info("step 3: verifying")
	broken, err = brokenCategories(db)
	if err != nil {
		logger.Fatal("density check failed", zap.Error(err))
	}
	if len(broken) > 0 {
		logger.Fatal("categories still broken after compaction", zap.Uints("category_ids", broken))
	}
	logger.Info("compaction completed successfully")
}

// brokenCategories returns the ids of categories whose orders are not
// exactly 0..n-1.
func brokenCategories(db *gorm.DB) ([]uint, error) {
	var awards []models.Award
	if err := db.Select("id", "category_id", "sort_order").Find(&awards).Error; err != nil {
		return nil, fmt.Errorf("fetch awards: %w", err)
	}

	byCategory := make(map[uint][]int)
	var categoryIDs []uint
	for _, a := range awards {
		if _, ok := byCategory[a.CategoryID]; !ok {
			categoryIDs = append(categoryIDs, a.CategoryID)
		}
		byCategory[a.CategoryID] = append(byCategory[a.CategoryID], a.Order)
	}

	var broken []uint
	for _, id := range categoryIDs {
		if !ordering.Dense(byCategory[id]) {
			broken = append(broken, id)
		}
	}
	return broken, nil
}
