package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/P3chys/awards-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and part headers around the
// image itself.
const multipartOverhead = 1 << 20

// UploadImage stores the multipart "image" field and returns the path award
// records should reference. The file is not rolled back if the later award
// write fails.
// POST /api/upload
//
// The request body is capped at maxSize plus multipartOverhead; anything
// larger fails while parsing and never reaches a temp file in full.
func UploadImage(store services.ImageStore, maxSize int64, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

		// Parse multipart form
		if err := c.Request.ParseMultipartForm(maxSize); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "No file uploaded.")
			return
		}

		file, header, err := c.Request.FormFile("image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "No file uploaded.")
			return
		}
		defer file.Close()

		if header.Size > maxSize {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("File exceeds %d byte limit", maxSize))
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		name := fmt.Sprintf("image-%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(header.Filename)))
		path, err := store.Save(c.Request.Context(), name, file, header.Size, contentType)
		if err != nil {
			log.Error("failed to store upload", zap.String("name", name), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload file")
			return
		}

		log.Info("image uploaded", zap.String("path", path), zap.Int64("size", header.Size))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"file_path": path},
		})
	}
}

// ServeImage streams a stored image
// GET /uploads/:name
func ServeImage(store services.ImageStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, info, err := store.Open(c.Request.Context(), c.Param("name"))
		if err != nil {
			if errors.Is(err, services.ErrImageNotFound) || errors.Is(err, services.ErrInvalidName) {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "Image not found")
				return
			}
			log.Error("failed to open image", zap.String("name", c.Param("name")), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve file")
			return
		}
		defer rc.Close()

		c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, nil)
	}
}
