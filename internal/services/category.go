package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/P3chys/awards-api/internal/models"
	"gorm.io/gorm"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("id asc").Find(&categories).Error
	return categories, err
}

// requireCategory fails with ErrCategoryNotFound unless the category exists.
func requireCategory(tx *gorm.DB, id uint) error {
	var category models.Category
	if err := tx.Select("id").First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category %d: %w", id, ErrCategoryNotFound)
		}
		return err
	}
	return nil
}
