package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bizdir/internal/config"
	"bizdir/internal/database"
	jwtsvc "bizdir/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "router-test-secret"

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

func setupApp(t *testing.T, secret string) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppEnv:             "test",
		JWTSecret:          secret,
		AdminTokenTTL:      time.Hour,
		SiteURL:            "https://example.com",
		MaxUploadBytes:     1 << 20,
		RecentDefaultLimit: 3,
	}
	a := newApp(cfg, db, prometheus.NewRegistry(), nil)
	t.Cleanup(a.hub.Close)
	return a
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := jwtsvc.New(testSecret, time.Hour).GenerateToken("ops", jwtsvc.RoleAdmin)
	require.NoError(t, err)
	return token
}

func makeRequest(t *testing.T, a *app, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAdminRoutesRequireToken(t *testing.T) {
	a := setupApp(t, testSecret)
	create := gin.H{"businessData": gin.H{"title": "Bakery"}}

	w := makeRequest(t, a, http.MethodPost, "/api/biz/admin", create, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = makeRequest(t, a, http.MethodGet, "/api/users/export", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = makeRequest(t, a, http.MethodPost, "/api/biz/admin", create, adminToken(t))
	assert.Equal(t, http.StatusCreated, w.Code)

	// public reads stay open
	w = makeRequest(t, a, http.MethodGet, "/api/biz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), "Bakery")
}

func TestAdminRoutesOpenWithoutSecret(t *testing.T) {
	a := setupApp(t, "")

	w := makeRequest(t, a, http.MethodPost, "/api/biz/admin", gin.H{"businessData": gin.H{"title": "Bakery"}}, "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDirectoryFlow(t *testing.T) {
	a := setupApp(t, testSecret)
	token := adminToken(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "biz.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("title,phone,city,type\nCafe Aroma,03-1234567,Tel Aviv,Food\n,999,Nowhere,X\n\"Book, Worm\",02-1111111,\"Jerusalem, Old City\",Retail\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/biz/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"imported":2`)

	w = makeRequest(t, a, http.MethodGet, "/api/biz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []struct {
		ID    string `json:"_id"`
		Title string `json:"title"`
		City  string `json:"city"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	require.Len(t, list, 2)
	cities := map[string]string{}
	for _, b := range list {
		cities[b.Title] = b.City
	}
	assert.Equal(t, map[string]string{"Cafe Aroma": "Tel Aviv", "Book, Worm": "Jerusalem, Old City"}, cities)

	w = makeRequest(t, a, http.MethodPost, "/api/likes", gin.H{"userId": "u1", "businessId": list[0].ID}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"liked":true`)

	w = makeRequest(t, a, http.MethodPost, "/api/users/check", gin.H{"email": "owner@example.com", "userData": gin.H{"uid": "u1"}}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"created":true`)

	w = makeRequest(t, a, http.MethodGet, "/api/users/export", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))

	w = makeRequest(t, a, http.MethodGet, "/sitemap.xml", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://example.com/business/"+list[0].ID)

	w = makeRequest(t, a, http.MethodPost, "/api/sitemap/update", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"businessesCount":2`)
}

func TestHealthAndMetrics(t *testing.T) {
	a := setupApp(t, "")

	w := makeRequest(t, a, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	makeRequest(t, a, http.MethodGet, "/api/biz", nil, "")
	w = makeRequest(t, a, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `bizdir_http_requests_total{method="GET",route="/api/biz",status="200"}`))
}

func TestLogConfig_UsesInstalledLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	logConfig(&config.Config{AppEnv: "dev", HTTPAddr: ":8080", SiteURL: "https://example.com"})

	entries := logs.FilterMessage("config loaded").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "dev", fields["env"])
	assert.Equal(t, false, fields["adminAuth"])
}
