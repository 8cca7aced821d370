// Package client is a typed HTTP client for the awards API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/P3chys/awards-api/internal/models"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// AwardFields is the writable part of an award. Order is assigned by the
// server and cannot be set here.
type AwardFields struct {
	CategoryID  uint    `json:"category_id"`
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Title       *string `json:"title,omitempty"`
	Name        string  `json:"name"`
	EngName     string  `json:"eng_name"`
	Source      string  `json:"source"`
	Description *string `json:"description,omitempty"`
	MediaPath   *string `json:"media_path,omitempty"`
}

type OrderPair struct {
	ID    uint `json:"id"`
	Order int  `json:"order"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := c.doJSON(ctx, http.MethodGet, "/api/categories", nil, &categories)
	return categories, err
}

// Awards returns every award, grouped by category and sorted by order.
func (c *Client) Awards(ctx context.Context) ([]models.Award, error) {
	var awards []models.Award
	err := c.doJSON(ctx, http.MethodGet, "/api/awards", nil, &awards)
	return awards, err
}

func (c *Client) CreateAward(ctx context.Context, in AwardFields) (*models.Award, error) {
	var award models.Award
	if err := c.doJSON(ctx, http.MethodPost, "/api/awards", in, &award); err != nil {
		return nil, err
	}
	return &award, nil
}

func (c *Client) UpdateAward(ctx context.Context, id uint, in AwardFields) (*models.Award, error) {
	var award models.Award
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/awards/%d", id), in, &award); err != nil {
		return nil, err
	}
	return &award, nil
}

func (c *Client) DeleteAward(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/awards/%d", id), nil, nil)
}

// Reorder sends one category's complete order as a single batch.
func (c *Client) Reorder(ctx context.Context, pairs []OrderPair) error {
	body := struct {
		Awards []OrderPair `json:"awards"`
	}{Awards: pairs}
	return c.doJSON(ctx, http.MethodPatch, "/api/awards/reorder", body, nil)
}

func (c *Client) Summaries(ctx context.Context) ([]models.Summary, error) {
	var summaries []models.Summary
	err := c.doJSON(ctx, http.MethodGet, "/api/summaries", nil, &summaries)
	return summaries, err
}

// Upload sends an image and returns the path to store as media_path.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out struct {
		FilePath string `json:"file_path"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/upload", &buf, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	return out.FilePath, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}
