// Package client talks to the bizdir HTTP API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bizdir/internal/csvio"
	"bizdir/internal/domain"

	"github.com/goccy/go-json"
)

// APIError is a non-2xx answer carrying the server's error envelope.
type APIError struct {
	Status  int
	Err     string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d: %s: %s", e.Status, e.Err, e.Message)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Err)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends token as a bearer credential, required by admin routes.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
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

type ToggleResult struct {
	Liked  bool              `json:"liked"`
	Count  int64             `json:"count"`
	Action domain.LikeAction `json:"action"`
}

type ImportResult struct {
	Message string `json:"message"`
	csvio.ImportResult
}

// ListBusinesses fetches the directory, optionally narrowed by type and city.
func (c *Client) ListBusinesses(ctx context.Context, typ, city string) ([]domain.Business, error) {
	q := url.Values{}
	if typ != "" {
		q.Set("type", typ)
	}
	if city != "" {
		q.Set("city", city)
	}

	var out struct {
		Data []domain.Business `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/biz", q, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) LikeStatus(ctx context.Context, userID, businessID string) (domain.LikeStatus, error) {
	q := url.Values{"userId": {userID}, "businessId": {businessID}}

	var st domain.LikeStatus
	if err := c.do(ctx, http.MethodGet, "/api/likes", q, nil, "", &st); err != nil {
		return domain.LikeStatus{}, err
	}
	return st, nil
}

func (c *Client) ToggleLike(ctx context.Context, userID, businessID string) (ToggleResult, error) {
	body, err := json.Marshal(map[string]string{"userId": userID, "businessId": businessID})
	if err != nil {
		return ToggleResult{}, err
	}

	var res ToggleResult
	if err := c.do(ctx, http.MethodPost, "/api/likes", nil, bytes.NewReader(body), "application/json", &res); err != nil {
		return ToggleResult{}, err
	}
	return res, nil
}

func (c *Client) LikedBusinesses(ctx context.Context, userID string) ([]string, error) {
	var out struct {
		Data []string `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/likes/user", url.Values{"userId": {userID}}, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ImportCSV uploads r as filename to the admin import endpoint.
func (c *Client) ImportCSV(ctx context.Context, filename string, r io.Reader) (ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return ImportResult{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return ImportResult{}, err
	}
	if err := mw.Close(); err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	if err := c.do(ctx, http.MethodPost, "/api/biz/import", nil, &buf, mw.FormDataContentType(), &res); err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

// ExportBusinesses downloads the business CSV and the server's suggested
// filename.
func (c *Client) ExportBusinesses(ctx context.Context) (string, []byte, error) {
	return c.download(ctx, "/api/biz/export")
}

func (c *Client) ExportUsers(ctx context.Context) (string, []byte, error) {
	return c.download(ctx, "/api/users/export")
}

func (c *Client) download(ctx context.Context, path string) (string, []byte, error) {
	resp, err := c.send(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	var filename string
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return filename, body, nil
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body io.Reader, contentType string) (*http.Response, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.http.Do(req)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, contentType string, out interface{}) error {
	resp, err := c.send(ctx, method, path, q, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var env struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &env) == nil && env.Error != "" {
		apiErr.Err = env.Error
		apiErr.Message = env.Message
	} else {
		apiErr.Err = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
