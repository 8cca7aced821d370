package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/P3chys/awards-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskImageStoreRoundTrip(t *testing.T) {
	store, err := NewDiskImageStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := store.Save(ctx, "image-1.png", strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/image-1.png", path)

	rc, info, err := store.Open(ctx, "image-1.png")
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, int64(9), info.Size)
	assert.Equal(t, "image/png", info.ContentType)

	require.NoError(t, store.Delete(ctx, "image-1.png"))
	_, _, err = store.Open(ctx, "image-1.png")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestDiskImageStoreRejectsTraversal(t *testing.T) {
	store, err := NewDiskImageStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../etc/passwd", "a/b.png"} {
		_, err := store.Save(context.Background(), name, strings.NewReader("x"), 1, "image/png")
		assert.ErrorIs(t, err, ErrInvalidName, name)

		_, _, err = store.Open(context.Background(), name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestDiskImageStoreRefusesOverwrite(t *testing.T) {
	store, err := NewDiskImageStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Save(ctx, "same.jpg", strings.NewReader("first"), 5, "image/jpeg")
	require.NoError(t, err)
	_, err = store.Save(ctx, "same.jpg", strings.NewReader("second"), 6, "image/jpeg")
	assert.Error(t, err)
}

func TestNewImageStoreUnknownBackend(t *testing.T) {
	_, err := NewImageStore(&config.Config{StorageBackend: "tape"})
	assert.Error(t, err)
}

func TestNilSearchServiceIsNoop(t *testing.T) {
	search := NewSearchService(&config.Config{}, nil)

	assert.Nil(t, search)
	assert.False(t, search.Enabled())
	assert.NoError(t, search.IndexAward(awardFixture()))
	assert.NoError(t, search.DeleteAward(1))

	_, err := search.Search("gold", 0)
	assert.ErrorIs(t, err, ErrSearchDisabled)
}
