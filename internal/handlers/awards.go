package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/P3chys/awards-api/internal/models"
	"github.com/P3chys/awards-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AwardRequest is the body of POST and PUT /api/awards. The order is never
// accepted from the client on these routes.
type AwardRequest struct {
	CategoryID  uint    `json:"category_id" binding:"required"`
	Year        int     `json:"year" binding:"required,min=1"`
	Month       int     `json:"month" binding:"required,min=1,max=12"`
	Title       *string `json:"title" binding:"omitempty,max=300"`
	Name        string  `json:"name" binding:"required,max=300"`
	EngName     string  `json:"eng_name" binding:"max=300"`
	Source      string  `json:"source" binding:"max=300"`
	Description *string `json:"description"`
	MediaPath   *string `json:"media_path" binding:"omitempty,max=500"`
}

func (r AwardRequest) input() services.AwardInput {
	return services.AwardInput{
		CategoryID:  r.CategoryID,
		Year:        r.Year,
		Month:       r.Month,
		Title:       r.Title,
		Name:        r.Name,
		EngName:     r.EngName,
		Source:      r.Source,
		Description: r.Description,
		MediaPath:   r.MediaPath,
	}
}

// ReorderAwardsRequest defines the request body for reordering awards
type ReorderAwardsRequest struct {
	Awards []services.OrderPair `json:"awards" binding:"required"`
}

// awardError answers for errors coming out of AwardService.
func awardError(c *gin.Context, log *zap.Logger, err error, action string) {
	switch {
	case errors.Is(err, services.ErrAwardNotFound):
		log.Warn(action+": award not found", zap.Error(err))
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Award not found")
	case errors.Is(err, services.ErrCategoryNotFound):
		log.Warn(action+": category not found", zap.Error(err))
		respondError(c, http.StatusBadRequest, "INVALID_CATEGORY", "Category not found")
	default:
		log.Error(action, zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action)
	}
}

// ListAwards returns every award with its category embedded
// GET /api/awards
func ListAwards(awards *services.AwardService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := awards.List(c.Request.Context())
		if err != nil {
			awardError(c, log, err, "fetch awards")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
	}
}

// GetAward returns a single award
// GET /api/awards/:id
func GetAward(awards *services.AwardService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		award, err := awards.Get(c.Request.Context(), id)
		if err != nil {
			awardError(c, log, err, "fetch award")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": award})
	}
}

// CreateAward inserts an award at its date-sorted slot
// POST /api/awards
func CreateAward(awards *services.AwardService, search *services.SearchService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AwardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}

		award, err := awards.Create(c.Request.Context(), req.input())
		if err != nil {
			awardError(c, log, err, "create award")
			return
		}

		indexAsync(search, *award, log)
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": award})
	}
}

// UpdateAward rewrites an award's fields; its order is left alone
// PUT /api/awards/:id
func UpdateAward(awards *services.AwardService, search *services.SearchService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		var req AwardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}

		award, err := awards.Update(c.Request.Context(), id, req.input())
		if err != nil {
			awardError(c, log, err, "update award")
			return
		}

		indexAsync(search, *award, log)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": award})
	}
}

// ReorderAwards applies a whole category's new order atomically
// PATCH /api/awards/reorder
func ReorderAwards(awards *services.AwardService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReorderAwardsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}

		if err := awards.Reorder(c.Request.Context(), req.Awards); err != nil {
			log.Error("failed to reorder awards", zap.Int("count", len(req.Awards)), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "REORDER_FAILED", "Failed to reorder awards")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Awards reordered successfully",
		})
	}
}

// DeleteAward removes an award and compacts its category
// DELETE /api/awards/:id
func DeleteAward(awards *services.AwardService, search *services.SearchService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		award, err := awards.Delete(c.Request.Context(), id)
		if err != nil {
			awardError(c, log, err, "delete award")
			return
		}

		if search.Enabled() {
			go func() {
				if err := search.DeleteAward(award.ID); err != nil {
					log.Warn("failed to remove award from search index", zap.Uint("id", award.ID), zap.Error(err))
				}
			}()
		}

		c.Status(http.StatusNoContent)
	}
}

// SearchAwards runs a full-text query over awards
// GET /api/awards/search?q=&category_id=
func SearchAwards(search *services.SearchService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !search.Enabled() {
			respondError(c, http.StatusServiceUnavailable, "SEARCH_DISABLED", "Search is not configured")
			return
		}

		var categoryID uint
		if raw := c.Query("category_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid category_id")
				return
			}
			categoryID = uint(id)
		}

		hits, err := search.Search(c.Query("q"), categoryID)
		if err != nil {
			log.Error("award search failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Search failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": hits})
	}
}

// indexAsync pushes the award into the search index without holding up the
// response.
func indexAsync(search *services.SearchService, award models.Award, log *zap.Logger) {
	if !search.Enabled() {
		return
	}
	go func() {
		if err := search.IndexAward(award); err != nil {
			log.Warn("failed to index award", zap.Uint("id", award.ID), zap.Error(err))
		}
	}()
}
