// Package testdb opens throwaway in-memory databases with the production
// schema and seeded categories.
package testdb

import (
	"testing"

	"github.com/P3chys/awards-api/internal/database"
	"github.com/P3chys/awards-api/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated, seeded SQLite database that lives for the test.
// The pool is pinned to one connection so the in-memory database is shared.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db, zap.NewNop()))
	require.NoError(t, database.SeedCategories(db, zap.NewNop()))
	return db
}

// Categories returns the seeded categories in id order.
func Categories(t testing.TB, db *gorm.DB) []models.Category {
	t.Helper()
	var categories []models.Category
	require.NoError(t, db.Order("id").Find(&categories).Error)
	return categories
}

// Orders returns award ids of the category keyed by their stored order.
func Orders(t testing.TB, db *gorm.DB, categoryID uint) map[uint]int {
	t.Helper()
	var awards []models.Award
	require.NoError(t, db.Where("category_id = ?", categoryID).Find(&awards).Error)
	out := make(map[uint]int, len(awards))
	for _, a := range awards {
		out[a.ID] = a.Order
	}
	return out
}

// Sequence returns award ids of the category sorted by order.
func Sequence(t testing.TB, db *gorm.DB, categoryID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Model(&models.Award{}).
		Where("category_id = ?", categoryID).
		Order("sort_order asc").
		Pluck("id", &ids).Error)
	return ids
}
