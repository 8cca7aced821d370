package handlers

import (
	"errors"
	"net/http"

	"github.com/P3chys/awards-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SummaryRequest struct {
	CategoryID  uint   `json:"category_id" binding:"required"`
	YearStart   int    `json:"year_start" binding:"required"`
	YearEnd     int    `json:"year_end" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func (r SummaryRequest) input() services.SummaryInput {
	return services.SummaryInput{
		CategoryID:  r.CategoryID,
		YearStart:   r.YearStart,
		YearEnd:     r.YearEnd,
		Description: r.Description,
	}
}

func summaryError(c *gin.Context, log *zap.Logger, err error, action string) {
	switch {
	case errors.Is(err, services.ErrSummaryNotFound):
		log.Warn(action+": summary not found", zap.Error(err))
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Summary not found")
	case errors.Is(err, services.ErrCategoryNotFound):
		respondError(c, http.StatusBadRequest, "INVALID_CATEGORY", "Category not found")
	case errors.Is(err, services.ErrInvalidSummary):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		log.Error(action, zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action)
	}
}

// GET /api/summaries
func ListSummaries(summaries *services.SummaryService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := summaries.List(c.Request.Context())
		if err != nil {
			summaryError(c, log, err, "fetch summaries")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
	}
}

// POST /api/summaries
func CreateSummary(summaries *services.SummaryService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SummaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}

		summary, err := summaries.Create(c.Request.Context(), req.input())
		if err != nil {
			summaryError(c, log, err, "create summary")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": summary})
	}
}

// PUT /api/summaries/:id
func UpdateSummary(summaries *services.SummaryService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		var req SummaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}

		summary, err := summaries.Update(c.Request.Context(), id, req.input())
		if err != nil {
			summaryError(c, log, err, "update summary")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
	}
}

// DELETE /api/summaries/:id
func DeleteSummary(summaries *services.SummaryService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		if err := summaries.Delete(c.Request.Context(), id); err != nil {
			summaryError(c, log, err, "delete summary")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
