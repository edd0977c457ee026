package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(ttl time.Duration) (*gin.Engine, *Service) {
	gin.SetMode(gin.TestMode)
	svc := NewService(ttl, zap.NewNop())
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/v1"))
	return router, svc
}

func TestCreateSessionEndpoint(t *testing.T) {
	router, _ := setupRouter(time.Hour)

	body := `{
		"url": "https://news.example.com/a",
		"locale": "en-US",
		"section_map": {
			"title": "A Story",
			"sections": [
				{"id": "main-article", "label": "Main article", "role": "main"},
				{"id": "comments", "label": "Comments", "role": "region"}
			]
		}
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SessionID string `json:"session_id"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Regexp(t, `^sess_[0-9a-f]{12}$`, resp.SessionID)
	assert.Equal(t, 3600, resp.ExpiresIn)
}

func TestCreateSessionMissingFields(t *testing.T) {
	router, _ := setupRouter(time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"url": "https://x.com"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
