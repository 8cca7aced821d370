package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/P3chys/awards-api/internal/models"
	"github.com/P3chys/awards-api/internal/ordering"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InsertPolicy decides where a newly created award lands within its category.
type InsertPolicy string

const (
	// InsertByDate keeps the category sorted by descending (year, month).
	InsertByDate InsertPolicy = "date"
	// InsertAppend places the new award after all of its siblings.
	InsertAppend InsertPolicy = "append"
)

func ParseInsertPolicy(s string) (InsertPolicy, error) {
	switch InsertPolicy(s) {
	case InsertByDate, InsertAppend:
		return InsertPolicy(s), nil
	}
	return "", fmt.Errorf("unknown insert policy %q", s)
}

// AwardInput carries every writable award field except the order, which the
// service owns.
type AwardInput struct {
	CategoryID  uint
	Year        int
	Month       int
	Title       *string
	Name        string
	EngName     string
	Source      string
	Description *string
	MediaPath   *string
}

func (in AwardInput) apply(a *models.Award) {
	a.CategoryID = in.CategoryID
	a.Year = in.Year
	a.Month = in.Month
	a.Title = in.Title
	a.Name = in.Name
	a.EngName = in.EngName
	a.Source = in.Source
	a.Description = in.Description
	a.MediaPath = in.MediaPath
}

// OrderPair is one entry of a reorder batch.
type OrderPair struct {
	ID    uint `json:"id"`
	Order int  `json:"order"`
}

// AwardService owns the per-category order of awards. Every write runs in a
// single transaction so readers never observe a category whose orders are
// not exactly 0..n-1.
type AwardService struct {
	db     *gorm.DB
	policy InsertPolicy
	log    *zap.Logger
}

func NewAwardService(db *gorm.DB, policy InsertPolicy, log *zap.Logger) *AwardService {
	if policy == "" {
		policy = InsertByDate
	}
	return &AwardService{db: db, policy: policy, log: log}
}

// List returns every award with its category, grouped by category and
// sorted by order.
func (s *AwardService) List(ctx context.Context) ([]models.Award, error) {
	var awards []models.Award
	err := s.db.WithContext(ctx).
		Preload("Category").
		Order("category_id asc, sort_order asc, id asc").
		Find(&awards).Error
	return awards, err
}

func (s *AwardService) Get(ctx context.Context, id uint) (*models.Award, error) {
	return findAward(s.db.WithContext(ctx).Preload("Category"), id)
}

func (s *AwardService) Create(ctx context.Context, in AwardInput) (*models.Award, error) {
	var award models.Award

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCategory(tx, in.CategoryID); err != nil {
			return err
		}

		slot, err := s.insertSlot(tx, in)
		if err != nil {
			return fmt.Errorf("compute insert slot: %w", err)
		}

		if err := shiftOrders(tx, in.CategoryID, "sort_order >= ?", slot, 1); err != nil {
			return err
		}

		in.apply(&award)
		award.Order = slot
		return tx.Create(&award).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("award created",
		zap.Uint("id", award.ID),
		zap.Uint("category_id", award.CategoryID),
		zap.Int("order", award.Order),
	)
	return &award, nil
}

func (s *AwardService) insertSlot(tx *gorm.DB, in AwardInput) (int, error) {
	if s.policy == InsertAppend {
		var count int64
		err := tx.Model(&models.Award{}).Where("category_id = ?", in.CategoryID).Count(&count).Error
		return int(count), err
	}

	var siblings []models.Award
	err := tx.Select("id", "year", "month").
		Where("category_id = ?", in.CategoryID).
		Order("year desc, month desc, sort_order asc").
		Find(&siblings).Error
	if err != nil {
		return 0, err
	}

	keys := make([]int, len(siblings))
	for i, sibling := range siblings {
		keys[i] = sibling.DateKey()
	}
	return ordering.InsertPosition(keys, ordering.DateKey(in.Year, in.Month)), nil
}

// Update rewrites every field except the order. Moving an award to another
// category compacts the old category and appends it to the new one.
func (s *AwardService) Update(ctx context.Context, id uint, in AwardInput) (*models.Award, error) {
	var award *models.Award

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		award, err = findAward(tx, id)
		if err != nil {
			return err
		}

		if in.CategoryID != award.CategoryID {
			if err := requireCategory(tx, in.CategoryID); err != nil {
				return err
			}
			if err := shiftOrders(tx, award.CategoryID, "sort_order > ?", award.Order, -1); err != nil {
				return err
			}

			var count int64
			if err := tx.Model(&models.Award{}).Where("category_id = ?", in.CategoryID).Count(&count).Error; err != nil {
				return err
			}
			award.Order = int(count)
		}

		in.apply(award)
		if err := tx.Save(award).Error; err != nil {
			return err
		}

		award, err = findAward(tx.Preload("Category"), id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("award updated", zap.Uint("id", award.ID), zap.Uint("category_id", award.CategoryID))
	return award, nil
}

// Delete removes the award and closes the gap it leaves in its category.
func (s *AwardService) Delete(ctx context.Context, id uint) (*models.Award, error) {
	var award *models.Award

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		award, err = findAward(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Delete(&models.Award{}, award.ID).Error; err != nil {
			return err
		}

		return shiftOrders(tx, award.CategoryID, "sort_order > ?", award.Order, -1)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("award deleted",
		zap.Uint("id", award.ID),
		zap.Uint("category_id", award.CategoryID),
		zap.Int("order", award.Order),
	)
	return award, nil
}

// Reorder applies a batch of (id, order) pairs as one transaction. The batch
// must name every award of exactly one category, each once. Submitted order
// values are only used as a relative sequence: the stored orders are always
// renumbered to 0..n-1. Any violation rejects the whole batch.
func (s *AwardService) Reorder(ctx context.Context, pairs []OrderPair) error {
	if len(pairs) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(pairs))
		seen := make(map[uint]bool, len(pairs))
		for _, p := range pairs {
			if seen[p.ID] {
				return fmt.Errorf("%w: award %d listed twice", ErrBatchRejected, p.ID)
			}
			seen[p.ID] = true
			ids = append(ids, p.ID)
		}

		var awards []models.Award
		if err := tx.Select("id", "category_id").Where("id IN ?", ids).Find(&awards).Error; err != nil {
			return err
		}
		if len(awards) != len(ids) {
			return fmt.Errorf("%w: %d of %d awards not found", ErrBatchRejected, len(ids)-len(awards), len(ids))
		}

		categoryID := awards[0].CategoryID
		for _, a := range awards[1:] {
			if a.CategoryID != categoryID {
				return fmt.Errorf("%w: batch spans categories %d and %d", ErrBatchRejected, categoryID, a.CategoryID)
			}
		}

		var total int64
		if err := tx.Model(&models.Award{}).Where("category_id = ?", categoryID).Count(&total).Error; err != nil {
			return err
		}
		if int(total) != len(pairs) {
			return fmt.Errorf("%w: batch covers %d of %d awards in category %d", ErrBatchRejected, len(pairs), total, categoryID)
		}

		for i, p := range ordering.Normalize(pairs, func(p OrderPair) int { return p.Order }) {
			result := tx.Model(&models.Award{}).Where("id = ?", p.ID).UpdateColumn("sort_order", i)
			if result.Error != nil {
				return fmt.Errorf("%w: award %d: %v", ErrBatchRejected, p.ID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: award %d vanished", ErrBatchRejected, p.ID)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("awards reordered", zap.Int("count", len(pairs)))
	return nil
}

// Compact renumbers every category to 0..n-1, keeping the current relative
// sequence. It returns the number of awards whose order changed.
func (s *AwardService) Compact(ctx context.Context) (int, error) {
	touched := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var awards []models.Award
		if err := tx.Select("id", "category_id", "sort_order").
			Order("category_id asc, sort_order asc, id asc").
			Find(&awards).Error; err != nil {
			return err
		}

		var current uint
		next := 0
		for i, a := range awards {
			if i == 0 || a.CategoryID != current {
				current = a.CategoryID
				next = 0
			}
			if a.Order != next {
				if err := tx.Model(&models.Award{}).Where("id = ?", a.ID).UpdateColumn("sort_order", next).Error; err != nil {
					return err
				}
				touched++
			}
			next++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return touched, nil
}

func findAward(tx *gorm.DB, id uint) (*models.Award, error) {
	var award models.Award
	if err := tx.First(&award, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("award %d: %w", id, ErrAwardNotFound)
		}
		return nil, err
	}
	return &award, nil
}

// shiftOrders adds delta to the order of every award in the category that
// matches cond.
func shiftOrders(tx *gorm.DB, categoryID uint, cond string, value, delta int) error {
	err := tx.Model(&models.Award{}).
		Where("category_id = ?", categoryID).
		Where(cond, value).
		UpdateColumn("sort_order", gorm.Expr("sort_order + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("shift orders in category %d: %w", categoryID, err)
	}
	return nil
}
