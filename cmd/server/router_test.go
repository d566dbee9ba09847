package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blackboxscan/internal/config"
	"blackboxscan/internal/handler"
	"blackboxscan/internal/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func requestCounted(metrics, path string) bool {
	for _, line := range strings.Split(metrics, "\n") {
		if strings.HasPrefix(line, "gin_requests_total{") && strings.Contains(line, `url="`+path+`"`) {
			return true
		}
	}
	return false
}

func TestRouterRecordsRouteMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	h := handler.NewHandler(handler.Options{FlashSecret: "test-secret"}, log,
		mocks.NewMockAnalysisService(t), mocks.NewMockContributionService(t), mocks.NewMockContactService(t))

	router := newRouter(&config.Config{MaxUploadBytes: 1 << 20}, log, nil, h, nil)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)

	assert.True(t, requestCounted(string(body), "/health"), "no request counter for /health")
	assert.True(t, requestCounted(string(body), "/static/style.css"), "no request counter for static assets")
	assert.False(t, requestCounted(string(body), "/metrics"))
}
