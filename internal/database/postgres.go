package database

import (
	"fmt"

	"github.com/P3chys/awards-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(dsn, logLevel string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(ParseLogLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("database connected")
	return db, nil
}

// RunMigrations creates or updates the categories, awards and summaries tables.
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("running migrations")
	if err := db.AutoMigrate(&models.Category{}, &models.Award{}, &models.Summary{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func ParseLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
