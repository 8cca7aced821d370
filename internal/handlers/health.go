package handlers

import (
	"net/http"

	"github.com/P3chys/awards-api/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func HealthCheck(db *gorm.DB, search *services.SearchService, rateLimited bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
			return
		}

		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unreachable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"database":   "ok",
			"search":     enabled(search.Enabled()),
			"rate_limit": enabled(rateLimited),
		})
	}
}

func enabled(on bool) string {
	if on {
		return "ok"
	}
	return "disabled"
}
