package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/P3chys/awards-api/internal/services"
	"github.com/P3chys/awards-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newImporter(t *testing.T, baseDir string) *importer {
	t.Helper()
	db := testdb.Open(t)
	store, err := services.NewDiskImageStore(t.TempDir())
	require.NoError(t, err)
	return &importer{
		db:      db,
		awards:  services.NewAwardService(db, services.InsertByDate, zap.NewNop()),
		store:   store,
		log:     zap.NewNop(),
		baseDir: baseDir,
	}
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "awards.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"category": "安全", "year": 2022, "month": 5, "name": "Safety gold", "image": "gold.png"}
	]`), 0o644))

	entries, err := readManifest(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "安全", entries[0].Category)
	assert.Equal(t, "gold.png", entries[0].Image)
}

func TestImportKeepsDateOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gold.png"), []byte("png"), 0o644))
	im := newImporter(t, dir)

	rep, err := im.run(context.Background(), []entry{
		{Category: "安全", Year: 2020, Month: 1, Name: "Old"},
		{Category: "安全", Year: 2023, Month: 9, Name: "New", Image: "gold.png"},
		{Category: "安全", Year: 2021, Month: 4, Name: "Middle"},
		{Category: "安全", Year: 2020, Month: 1, Name: "Old"},
		{Category: "不存在", Year: 2020, Month: 1, Name: "Nowhere"},
		{Category: "服務", Year: 2020, Month: 13, Name: "Bad month"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Imported)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 2, rep.Failed)

	categories := testdb.Categories(t, im.db)
	seq := testdb.Sequence(t, im.db, categories[0].ID)
	require.Len(t, seq, 3)
	assert.Equal(t, []uint{rep.Awards[1].ID, rep.Awards[2].ID, rep.Awards[0].ID}, seq)

	require.NotNil(t, rep.Awards[1].MediaPath)
	assert.Regexp(t, `^/uploads/image-.+\.png$`, *rep.Awards[1].MediaPath)
}

func TestImportMissingImageFails(t *testing.T) {
	im := newImporter(t, t.TempDir())

	rep, err := im.run(context.Background(), []entry{
		{Category: "永續", Year: 2022, Month: 2, Name: "Green", Image: "missing.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failed)
	assert.Zero(t, rep.Imported)
}
