package services

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/P3chys/awards-api/internal/config"
	"github.com/P3chys/awards-api/internal/models"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const awardsIndex = "awards"

var ErrSearchDisabled = errors.New("search is not configured")

// awardDocument is the flattened form of an award stored in Meilisearch.
type awardDocument struct {
	ID          uint   `json:"id"`
	CategoryID  uint   `json:"category_id"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	EngName     string `json:"eng_name"`
	Source      string `json:"source"`
	Description string `json:"description"`
	MediaPath   string `json:"media_path"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func newAwardDocument(a models.Award) awardDocument {
	return awardDocument{
		ID:          a.ID,
		CategoryID:  a.CategoryID,
		Year:        a.Year,
		Month:       a.Month,
		Title:       deref(a.Title),
		Name:        a.Name,
		EngName:     a.EngName,
		Source:      a.Source,
		Description: deref(a.Description),
		MediaPath:   deref(a.MediaPath),
	}
}

// SearchService mirrors awards into a Meilisearch index. A nil
// *SearchService is valid and turns every write into a no-op.
type SearchService struct {
	client *meilisearch.Client
	index  string
	log    *zap.Logger
}

// NewSearchService returns nil when no Meilisearch URL is configured.
func NewSearchService(cfg *config.Config, log *zap.Logger) *SearchService {
	if cfg.MeiliURL == "" {
		return nil
	}

	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   cfg.MeiliURL,
		APIKey: cfg.MeiliAPIKey,
	})

	// Ensure awards index exists (best effort)
	if _, err := client.GetIndex(awardsIndex); err != nil {
		_, err = client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        awardsIndex,
			PrimaryKey: "id",
		})
		if err != nil {
			log.Warn("failed to create meilisearch awards index", zap.Error(err))
		}

		if _, err = client.Index(awardsIndex).UpdateFilterableAttributes(&[]string{"category_id", "year"}); err != nil {
			log.Warn("failed to update filterable attributes", zap.Error(err))
		}

		if _, err = client.Index(awardsIndex).UpdateSortableAttributes(&[]string{"year", "month"}); err != nil {
			log.Warn("failed to update sortable attributes", zap.Error(err))
		}

		if _, err = client.Index(awardsIndex).UpdateSearchableAttributes(&[]string{"title", "name", "eng_name", "source", "description"}); err != nil {
			log.Warn("failed to update searchable attributes", zap.Error(err))
		}
	}

	return &SearchService{
		client: client,
		index:  awardsIndex,
		log:    log,
	}
}

func (s *SearchService) Enabled() bool {
	return s != nil
}

func (s *SearchService) IndexAward(a models.Award) error {
	if s == nil {
		return nil
	}
	_, err := s.client.Index(s.index).AddDocuments([]awardDocument{newAwardDocument(a)})
	return err
}

func (s *SearchService) IndexAwards(awards []models.Award) error {
	if s == nil || len(awards) == 0 {
		return nil
	}
	docs := make([]awardDocument, len(awards))
	for i, a := range awards {
		docs[i] = newAwardDocument(a)
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

func (s *SearchService) DeleteAward(id uint) error {
	if s == nil {
		return nil
	}
	_, err := s.client.Index(s.index).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

// Search queries award text, optionally restricted to one category.
func (s *SearchService) Search(query string, categoryID uint) ([]interface{}, error) {
	if s == nil {
		return nil, ErrSearchDisabled
	}

	request := &meilisearch.SearchRequest{
		Limit: 50,
		Sort:  []string{"year:desc", "month:desc"},
	}
	if categoryID != 0 {
		request.Filter = fmt.Sprintf("category_id = %d", categoryID)
	}

	result, err := s.client.Index(s.index).Search(query, request)
	if err != nil {
		return nil, err
	}
	return result.Hits, nil
}

func (s *SearchService) GetAwardCount() (int64, error) {
	if s == nil {
		return 0, ErrSearchDisabled
	}
	stats, err := s.client.Index(s.index).GetStats()
	if err != nil {
		return 0, err
	}
	return stats.NumberOfDocuments, nil
}
