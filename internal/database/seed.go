package database

import (
	"github.com/P3chys/awards-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedCategories inserts the default categories when the table is empty.
// Existing rows are never touched.
func SeedCategories(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug("categories already present, skipping seed", zap.Int64("count", count))
		return nil
	}

	categories := make([]models.Category, len(models.DefaultCategories))
	for i, name := range models.DefaultCategories {
		categories[i] = models.Category{Name: name}
	}

	if err := db.Create(&categories).Error; err != nil {
		return err
	}

	log.Info("initial categories have been seeded", zap.Strings("names", models.DefaultCategories))
	return nil
}
