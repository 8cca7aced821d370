// Package testserver runs the full HTTP stack over an in-memory database.
package testserver

import (
	"net/http/httptest"
	"testing"

	"github.com/P3chys/awards-api/internal/config"
	"github.com/P3chys/awards-api/internal/router"
	"github.com/P3chys/awards-api/internal/testdb"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config returns settings for a self-contained server: disk uploads in a
// temp dir, no Redis, no Meilisearch.
func Config(t testing.TB) *config.Config {
	return &config.Config{
		GinMode:        gin.TestMode,
		StorageBackend: "disk",
		UploadDir:      t.TempDir(),
		MaxUploadSize:  1 << 20,
		InsertPolicy:   "date",
		CORSOrigins:    []string{"http://localhost:3000"},
	}
}

func Engine(t testing.TB) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	engine, err := router.Setup(db, Config(t), zap.NewNop())
	require.NoError(t, err)
	return engine, db
}

func New(t testing.TB) (*httptest.Server, *gorm.DB) {
	t.Helper()
	engine, db := Engine(t)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv, db
}
