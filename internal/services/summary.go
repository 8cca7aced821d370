package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/P3chys/awards-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SummaryInput struct {
	CategoryID  uint
	YearStart   int
	YearEnd     int
	Description string
}

func (in SummaryInput) validate() error {
	if in.YearStart > in.YearEnd {
		return ErrInvalidSummary
	}
	return nil
}

type SummaryService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSummaryService(db *gorm.DB, log *zap.Logger) *SummaryService {
	return &SummaryService{db: db, log: log}
}

func (s *SummaryService) List(ctx context.Context) ([]models.Summary, error) {
	var summaries []models.Summary
	err := s.db.WithContext(ctx).
		Preload("Category").
		Order("category_id asc, year_start desc, id asc").
		Find(&summaries).Error
	return summaries, err
}

func (s *SummaryService) Create(ctx context.Context, in SummaryInput) (*models.Summary, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	summary := models.Summary{
		CategoryID:  in.CategoryID,
		YearStart:   in.YearStart,
		YearEnd:     in.YearEnd,
		Description: in.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCategory(tx, in.CategoryID); err != nil {
			return err
		}
		return tx.Create(&summary).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("summary created", zap.Uint("id", summary.ID), zap.Uint("category_id", summary.CategoryID))
	return &summary, nil
}

func (s *SummaryService) Update(ctx context.Context, id uint, in SummaryInput) (*models.Summary, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var summary models.Summary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&summary, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("summary %d: %w", id, ErrSummaryNotFound)
			}
			return err
		}
		if err := requireCategory(tx, in.CategoryID); err != nil {
			return err
		}

		summary.CategoryID = in.CategoryID
		summary.YearStart = in.YearStart
		summary.YearEnd = in.YearEnd
		summary.Description = in.Description
		return tx.Save(&summary).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("summary updated", zap.Uint("id", summary.ID))
	return &summary, nil
}

func (s *SummaryService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Summary{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("summary %d: %w", id, ErrSummaryNotFound)
	}

	s.log.Info("summary deleted", zap.Uint("id", id))
	return nil
}
