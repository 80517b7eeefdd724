package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/draft-payout-sim/pkg/logger"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf})

	router := gin.New()
	router.Use(RequestLogger(log))
	router.GET("/api/v1/simulations/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/simulations/abc?verbose=1", nil)
	req.Header.Set("User-Agent", "draft-client/1.0")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "GET", entry["http_method"])
	assert.Equal(t, "/api/v1/simulations/abc", entry["http_path"])
	assert.Equal(t, "draft-client/1.0", entry["http_user_agent"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, "verbose=1", entry["query"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "Client Error", entry["msg"])
}
