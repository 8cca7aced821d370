package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/P3chys/awards-api/internal/client"
	"github.com/P3chys/awards-api/internal/testdb"
	"github.com/P3chys/awards-api/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardLifecycle(t *testing.T) {
	srv, db := testserver.New(t)
	c := client.New(srv.URL)
	ctx := context.Background()

	categories, err := c.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	cat := categories[0].ID

	older, err := c.CreateAward(ctx, client.AwardFields{CategoryID: cat, Year: 2020, Month: 6, Name: "Older"})
	require.NoError(t, err)
	newer, err := c.CreateAward(ctx, client.AwardFields{CategoryID: cat, Year: 2024, Month: 2, Name: "Newer"})
	require.NoError(t, err)
	assert.Equal(t, 0, newer.Order)

	awards, err := c.Awards(ctx)
	require.NoError(t, err)
	require.Len(t, awards, 2)
	assert.Equal(t, newer.ID, awards[0].ID)
	assert.Equal(t, older.ID, awards[1].ID)

	require.NoError(t, c.Reorder(ctx, []client.OrderPair{
		{ID: older.ID, Order: 0},
		{ID: newer.ID, Order: 1},
	}))
	assert.Equal(t, []uint{older.ID, newer.ID}, testdb.Sequence(t, db, cat))

	updated, err := c.UpdateAward(ctx, older.ID, client.AwardFields{CategoryID: cat, Year: 2020, Month: 6, Name: "Oldest"})
	require.NoError(t, err)
	assert.Equal(t, "Oldest", updated.Name)
	assert.Equal(t, 0, updated.Order)

	require.NoError(t, c.DeleteAward(ctx, older.ID))
	assert.Equal(t, map[uint]int{newer.ID: 0}, testdb.Orders(t, db, cat))

	err = c.DeleteAward(ctx, older.ID)
	assert.True(t, client.IsNotFound(err))
}

func TestReorderFailureIsAPIError(t *testing.T) {
	srv, _ := testserver.New(t)
	c := client.New(srv.URL)

	err := c.Reorder(context.Background(), []client.OrderPair{{ID: 41, Order: 0}})

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "REORDER_FAILED", apiErr.Code)
	assert.Equal(t, "Failed to reorder awards", apiErr.Message)
	assert.False(t, client.IsNotFound(err))
}

func TestValidationError(t *testing.T) {
	srv, _ := testserver.New(t)
	c := client.New(srv.URL)

	_, err := c.CreateAward(context.Background(), client.AwardFields{CategoryID: 1, Year: 2020, Month: 0, Name: "X"})

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestUpload(t *testing.T) {
	srv, _ := testserver.New(t)
	c := client.New(srv.URL)

	path, err := c.Upload(context.Background(), "medal.jpg", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/image-"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSummaries(t *testing.T) {
	srv, _ := testserver.New(t)
	c := client.New(srv.URL)

	summaries, err := c.Summaries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := client.New(srv.URL+"/", client.WithHTTPClient(srv.Client()))
	_, err := c.Awards(context.Background())

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := client.New(url).Categories(context.Background())
	require.Error(t, err)

	var apiErr *client.APIError
	assert.False(t, errors.As(err, &apiErr))
}
