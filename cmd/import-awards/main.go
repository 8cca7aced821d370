package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/P3chys/awards-api/internal/config"
	"github.com/P3chys/awards-api/internal/database"
	"github.com/P3chys/awards-api/internal/logging"
	"github.com/P3chys/awards-api/internal/models"
	"github.com/P3chys/awards-api/internal/services"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// entry is one award in the import manifest. Image paths are relative to the
// manifest file.
type entry struct {
	Category    string  `json:"category"`
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Title       *string `json:"title"`
	Name        string  `json:"name"`
	EngName     string  `json:"eng_name"`
	Source      string  `json:"source"`
	Description *string `json:"description"`
	Image       string  `json:"image"`
}

type report struct {
	Imported int
	Skipped  int
	Failed   int
	Awards   []models.Award
}

type importer struct {
	db      *gorm.DB
	awards  *services.AwardService
	store   services.ImageStore
	log     *zap.Logger
	baseDir string
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: import-awards <manifest.json>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	manifest := flag.Arg(0)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.IsRelease())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	entries, err := readManifest(manifest)
	if err != nil {
		logger.Fatal("failed to read manifest", zap.String("path", manifest), zap.Error(err))
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.DBLogLevel, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.SeedCategories(db, logger); err != nil {
		logger.Fatal("failed to seed categories", zap.Error(err))
	}

	store, err := services.NewImageStore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize image storage", zap.Error(err))
	}

	policy, err := services.ParseInsertPolicy(cfg.InsertPolicy)
	if err != nil {
		logger.Fatal("invalid insert policy", zap.Error(err))
	}

	im := &importer{
		db:      db,
		awards:  services.NewAwardService(db, policy, logger.Named("awards")),
		store:   store,
		log:     logger,
		baseDir: filepath.Dir(manifest),
	}

	rep, err := im.run(context.Background(), entries)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	search := services.NewSearchService(cfg, logger.Named("search"))
	if search.Enabled() && len(rep.Awards) > 0 {
		if err := search.IndexAwards(rep.Awards); err != nil {
			logger.Warn("failed to index imported awards", zap.Error(err))
		}
	}

	logger.Info("import completed",
		zap.Int("imported", rep.Imported),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed),
	)
}

func readManifest(path string) ([]entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return entries, nil
}

func (im *importer) run(ctx context.Context, entries []entry) (report, error) {
	var categories []models.Category
	if err := im.db.WithContext(ctx).Find(&categories).Error; err != nil {
		return report{}, fmt.Errorf("fetch categories: %w", err)
	}
	byName := make(map[string]uint, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
	}

	var rep report
	for i, e := range entries {
		categoryID, ok := byName[e.Category]
		if !ok {
			im.log.Warn("unknown category, skipping", zap.Int("entry", i), zap.String("category", e.Category))
			rep.Failed++
			continue
		}

		exists, err := im.exists(ctx, categoryID, e)
		if err != nil {
			return rep, err
		}
		if exists {
			im.log.Info("award already exists, skipping", zap.String("name", e.Name), zap.Int("year", e.Year))
			rep.Skipped++
			continue
		}

		award, err := im.importOne(ctx, categoryID, e)
		if err != nil {
			im.log.Error("failed to import award", zap.Int("entry", i), zap.String("name", e.Name), zap.Error(err))
			rep.Failed++
			continue
		}
		rep.Imported++
		rep.Awards = append(rep.Awards, *award)
	}
	return rep, nil
}

func (im *importer) exists(ctx context.Context, categoryID uint, e entry) (bool, error) {
	var count int64
	err := im.db.WithContext(ctx).Model(&models.Award{}).
		Where("category_id = ? AND year = ? AND month = ? AND name = ?", categoryID, e.Year, e.Month, e.Name).
		Count(&count).Error
	return count > 0, err
}

func (im *importer) importOne(ctx context.Context, categoryID uint, e entry) (*models.Award, error) {
	if e.Month < 1 || e.Month > 12 {
		return nil, fmt.Errorf("month %d out of range", e.Month)
	}

	var mediaPath *string
	var stored string
	if e.Image != "" {
		path, name, err := im.upload(ctx, e.Image)
		if err != nil {
			return nil, err
		}
		mediaPath, stored = &path, name
	}

	award, err := im.awards.Create(ctx, services.AwardInput{
		CategoryID:  categoryID,
		Year:        e.Year,
		Month:       e.Month,
		Title:       e.Title,
		Name:        e.Name,
		EngName:     e.EngName,
		Source:      e.Source,
		Description: e.Description,
		MediaPath:   mediaPath,
	})
	if err != nil {
		if stored != "" {
			if delErr := im.store.Delete(ctx, stored); delErr != nil && !errors.Is(delErr, services.ErrImageNotFound) {
				im.log.Warn("failed to remove orphaned image", zap.String("name", stored), zap.Error(delErr))
			}
		}
		return nil, err
	}
	return award, nil
}

// upload stores the image and returns its public path and stored name.
func (im *importer) upload(ctx context.Context, rel string) (string, string, error) {
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(im.baseDir, rel)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", "", fmt.Errorf("stat image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	name := fmt.Sprintf("image-%s%s", uuid.NewString(), ext)
	public, err := im.store.Save(ctx, name, f, info.Size(), contentType)
	if err != nil {
		return "", "", fmt.Errorf("store image: %w", err)
	}
	return public, name, nil
}
