package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerWritesOneLinePerRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	Init(&buf, "debug")
	t.Cleanup(func() { Init(os.Stdout, "info") })

	router := gin.New()
	router.Use(RequestID(), JSONLogger())
	router.GET("/pm/briefs", func(c *gin.Context) {
		c.Set("username", "pm")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/pm/briefs?limit=5", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "request", line["message"])
	assert.Equal(t, "/pm/briefs", line["path"])
	assert.Equal(t, "limit=5", line["query"])
	assert.Equal(t, float64(200), line["status"])
	assert.Equal(t, "req-123", line["request_id"])
	assert.Equal(t, "pm", line["user"])
	assert.Equal(t, "plm", line["service"])
}

func TestJSONLoggerUsesErrorLevelForServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	Init(&buf, "info")
	t.Cleanup(func() { Init(os.Stdout, "info") })

	router := gin.New()
	router.Use(JSONLogger())
	router.POST("/admin/clear_all", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/clear_all", nil))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, float64(500), line["status"])
	assert.IsType(t, float64(0), line["latency_ms"])
	assert.NotContains(t, line, "request_id")
	assert.NotContains(t, line, "user")
}

func TestRequestIDIsGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

func TestLogKVUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "")
	t.Cleanup(func() { Init(os.Stdout, "info") })

	LogKV("loud", "hello", map[string]interface{}{"k": "v"})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "v", line["k"])
}
