package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/P3chys/awards-api/internal/models"
	"github.com/P3chys/awards-api/internal/testdb"
	"github.com/P3chys/awards-api/internal/testserver"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func createAward(t *testing.T, h http.Handler, categoryID uint, year, month int, name string) models.Award {
	t.Helper()
	w, env := do(t, h, http.MethodPost, "/api/awards", gin.H{
		"category_id": categoryID,
		"year":        year,
		"month":       month,
		"name":        name,
		"eng_name":    name + " (en)",
		"source":      "Ministry",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var award models.Award
	require.NoError(t, json.Unmarshal(env.Data, &award))
	return award
}

func setup(t *testing.T) (*gin.Engine, *gorm.DB, []models.Category) {
	engine, db := testserver.Engine(t)
	return engine, db, testdb.Categories(t, db)
}

func TestListCategories(t *testing.T) {
	engine, _, _ := setup(t)

	w, env := do(t, engine, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var categories []models.Category
	require.NoError(t, json.Unmarshal(env.Data, &categories))
	require.Len(t, categories, 3)
	assert.Equal(t, "安全", categories[0].Name)
}

func TestCreateAwardAssignsOrder(t *testing.T) {
	engine, db, categories := setup(t)
	cat := categories[0].ID

	a := createAward(t, engine, cat, 2023, 5, "A")
	b := createAward(t, engine, cat, 2022, 1, "B")
	c := createAward(t, engine, cat, 2023, 5, "C")

	assert.Equal(t, 0, c.Order)
	assert.Equal(t, map[uint]int{c.ID: 0, a.ID: 1, b.ID: 2}, testdb.Orders(t, db, cat))
}

func TestCreateAwardIgnoresClientOrder(t *testing.T) {
	engine, _, categories := setup(t)

	w, env := do(t, engine, http.MethodPost, "/api/awards", gin.H{
		"category_id": categories[0].ID,
		"year":        2020,
		"month":       1,
		"name":        "X",
		"order":       99,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var award models.Award
	require.NoError(t, json.Unmarshal(env.Data, &award))
	assert.Equal(t, 0, award.Order)
}

func TestCreateAwardValidation(t *testing.T) {
	engine, _, categories := setup(t)

	tests := []struct {
		name string
		body gin.H
		code string
	}{
		{"missing year", gin.H{"category_id": categories[0].ID, "month": 1, "name": "X"}, "VALIDATION_ERROR"},
		{"month out of range", gin.H{"category_id": categories[0].ID, "year": 2020, "month": 13, "name": "X"}, "VALIDATION_ERROR"},
		{"missing category", gin.H{"year": 2020, "month": 1, "name": "X"}, "VALIDATION_ERROR"},
		{"missing name", gin.H{"category_id": categories[0].ID, "year": 2020, "month": 1}, "VALIDATION_ERROR"},
		{"empty name", gin.H{"category_id": categories[0].ID, "year": 2020, "month": 1, "name": ""}, "VALIDATION_ERROR"},
		{"unknown category", gin.H{"category_id": 77, "year": 2020, "month": 1, "name": "X"}, "INVALID_CATEGORY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, engine, http.MethodPost, "/api/awards", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestListAwardsEmbedsCategory(t *testing.T) {
	engine, _, categories := setup(t)
	createAward(t, engine, categories[1].ID, 2021, 3, "Service star")

	w, env := do(t, engine, http.MethodGet, "/api/awards", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var awards []models.Award
	require.NoError(t, json.Unmarshal(env.Data, &awards))
	require.Len(t, awards, 1)
	require.NotNil(t, awards[0].Category)
	assert.Equal(t, categories[1].Name, awards[0].Category.Name)
}

func TestGetAward(t *testing.T) {
	engine, _, categories := setup(t)
	a := createAward(t, engine, categories[0].ID, 2021, 3, "A")

	w, _ := do(t, engine, http.MethodGet, fmt.Sprintf("/api/awards/%d", a.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, engine, http.MethodGet, "/api/awards/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, env = do(t, engine, http.MethodGet, "/api/awards/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)
}

func TestUpdateAwardLeavesOrder(t *testing.T) {
	engine, db, categories := setup(t)
	cat := categories[0].ID
	a := createAward(t, engine, cat, 2023, 1, "A")
	b := createAward(t, engine, cat, 2022, 1, "B")

	w, env := do(t, engine, http.MethodPut, fmt.Sprintf("/api/awards/%d", b.ID), gin.H{
		"category_id": cat,
		"year":        2099,
		"month":       1,
		"name":        "B renamed",
		"order":       0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Award
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "B renamed", updated.Name)
	assert.Equal(t, map[uint]int{a.ID: 0, b.ID: 1}, testdb.Orders(t, db, cat))

	w, _ = do(t, engine, http.MethodPut, "/api/awards/999", gin.H{"category_id": cat, "year": 2020, "month": 1, "name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, engine, http.MethodPut, fmt.Sprintf("/api/awards/%d", a.ID), gin.H{"category_id": cat, "year": 2020, "month": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestUpdateAndGetReturnSameShape(t *testing.T) {
	engine, _, categories := setup(t)
	a := createAward(t, engine, categories[0].ID, 2023, 1, "A")

	w, env := do(t, engine, http.MethodPut, fmt.Sprintf("/api/awards/%d", a.ID), gin.H{
		"category_id": categories[1].ID,
		"year":        2023,
		"month":       1,
		"name":        "A",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Award
	require.NoError(t, json.Unmarshal(env.Data, &updated))

	w, env = do(t, engine, http.MethodGet, fmt.Sprintf("/api/awards/%d", a.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched models.Award
	require.NoError(t, json.Unmarshal(env.Data, &fetched))

	require.NotNil(t, updated.Category)
	assert.Equal(t, categories[1].Name, updated.Category.Name)
	assert.Equal(t, fetched.Category, updated.Category)
	assert.Equal(t, fetched.Order, updated.Order)
}

func TestReorderAwards(t *testing.T) {
	engine, db, categories := setup(t)
	cat := categories[0].ID
	a := createAward(t, engine, cat, 2023, 1, "A")
	b := createAward(t, engine, cat, 2022, 1, "B")
	c := createAward(t, engine, cat, 2021, 1, "C")

	w, env := do(t, engine, http.MethodPatch, "/api/awards/reorder", gin.H{
		"awards": []gin.H{
			{"id": c.ID, "order": 0},
			{"id": a.ID, "order": 1},
			{"id": b.ID, "order": 2},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Awards reordered successfully", env.Message)
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, testdb.Sequence(t, db, cat))
}

func TestReorderAwardsRejectsWholeBatch(t *testing.T) {
	engine, db, categories := setup(t)
	cat := categories[0].ID
	a := createAward(t, engine, cat, 2023, 1, "A")
	b := createAward(t, engine, cat, 2022, 1, "B")
	before := testdb.Orders(t, db, cat)

	w, env := do(t, engine, http.MethodPatch, "/api/awards/reorder", gin.H{
		"awards": []gin.H{
			{"id": b.ID, "order": 0},
			{"id": a.ID, "order": 1},
			{"id": 12345, "order": 2},
		},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "REORDER_FAILED", env.Error.Code)
	assert.Equal(t, before, testdb.Orders(t, db, cat))

	w, _ = do(t, engine, http.MethodPatch, "/api/awards/reorder", gin.H{"items": []int{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAward(t *testing.T) {
	engine, db, categories := setup(t)
	cat := categories[0].ID
	a := createAward(t, engine, cat, 2023, 1, "A")
	b := createAward(t, engine, cat, 2022, 1, "B")
	c := createAward(t, engine, cat, 2021, 1, "C")
	d := createAward(t, engine, cat, 2020, 1, "D")

	w, _ := do(t, engine, http.MethodDelete, fmt.Sprintf("/api/awards/%d", b.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
	assert.Equal(t, map[uint]int{a.ID: 0, c.ID: 1, d.ID: 2}, testdb.Orders(t, db, cat))

	w, env := do(t, engine, http.MethodDelete, fmt.Sprintf("/api/awards/%d", b.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestSummariesCRUD(t *testing.T) {
	engine, _, categories := setup(t)

	w, env := do(t, engine, http.MethodPost, "/api/summaries", gin.H{
		"category_id": categories[2].ID,
		"year_start":  2015,
		"year_end":    2020,
		"description": "Carbon neutral operations",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var summary models.Summary
	require.NoError(t, json.Unmarshal(env.Data, &summary))

	w, _ = do(t, engine, http.MethodPut, fmt.Sprintf("/api/summaries/%d", summary.ID), gin.H{
		"category_id": categories[2].ID,
		"year_start":  2021,
		"year_end":    2020,
		"description": "backwards",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, engine, http.MethodGet, "/api/summaries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Summary
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, _ = do(t, engine, http.MethodDelete, fmt.Sprintf("/api/summaries/%d", summary.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = do(t, engine, http.MethodDelete, fmt.Sprintf("/api/summaries/%d", summary.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadAndServeImage(t *testing.T) {
	engine, _, _ := setup(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "trophy.PNG")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data struct {
		FilePath string `json:"file_path"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Regexp(t, `^/uploads/image-[0-9a-f-]{36}\.png$`, data.FilePath)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, data.FilePath, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x89PNG fake", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func uploadRequest(t *testing.T, size int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "big.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{'x'}, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// The test server allows 1 MiB images.
func TestUploadRejectsOversizedImage(t *testing.T) {
	engine, _, _ := setup(t)

	tests := []struct {
		name string
		size int
	}{
		{"just over the limit", 1<<20 + 1},
		{"beyond the body cap", 3 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, uploadRequest(t, tt.size))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, uploadRequest(t, 1<<20))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUploadWithoutFile(t *testing.T) {
	engine, _, _ := setup(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("caption", "no image here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServeMissingImage(t *testing.T) {
	engine, _, _ := setup(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/nothing.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchDisabled(t *testing.T) {
	engine, _, _ := setup(t)

	w, env := do(t, engine, http.MethodGet, "/api/awards/search?q=gold", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SEARCH_DISABLED", env.Error.Code)
}

func TestHealthCheck(t *testing.T) {
	engine, _, _ := setup(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["search"])
	assert.Equal(t, "disabled", body["rate_limit"])
}
