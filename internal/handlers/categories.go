package handlers

import (
	"net/http"

	"github.com/P3chys/awards-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListCategories returns the seeded reference categories
// GET /api/categories
func ListCategories(categories *services.CategoryService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := categories.List(c.Request.Context())
		if err != nil {
			log.Error("failed to fetch categories", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch categories")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    list,
		})
	}
}
