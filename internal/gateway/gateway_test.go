package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/project-amenities/backend/internal/config"
	"github.com/project-amenities/backend/internal/models"
)

func setupTestGateway(t *testing.T, handlerURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := NewGateway(&config.Config{Role: "gateway", HandlerURL: handlerURL}, zap.NewNop())

	engine := gin.New()
	engine.GET("/health", gw.HealthCheck)
	gw.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestProxy_ForwardsRequest(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotType, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Session", "abc")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"validation_failed"}`))
	}))
	defer upstream.Close()

	engine := setupTestGateway(t, upstream.URL)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/forms/sessions/abc/urls/0?x=1", strings.NewReader(`{"value":"v"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/forms/sessions/abc/urls/0", gotPath)
	assert.Equal(t, "x=1", gotQuery)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, `{"value":"v"}`, gotBody)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "abc", w.Header().Get("X-Session"))
	assert.JSONEq(t, `{"error":"validation_failed"}`, w.Body.String())
}

func TestProxy_MultipartPassesThrough(t *testing.T) {
	var gotType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	engine := setupTestGateway(t, upstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/sessions/abc/images", strings.NewReader("--b--"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "multipart/form-data; boundary=b", gotType)
}

func TestProxy_HandlerUnavailable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	addr := upstream.URL
	upstream.Close()

	engine := setupTestGateway(t, addr)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/amenities", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "service_unavailable", response.Error)
}

func TestHealthCheck(t *testing.T) {
	engine := setupTestGateway(t, "http://localhost:1")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"gateway"`)
}
