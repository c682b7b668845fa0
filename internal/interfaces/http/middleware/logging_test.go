package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/testutil"
)

func newEngine(log *testutil.MockLogger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogging(log, DefaultLoggingConfig()))
	r.GET("/status", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func serve(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRequestLogging(t *testing.T) {
	log := testutil.NewMockLogger()
	r := newEngine(log)

	assert.Equal(t, http.StatusOK, serve(r, "/status?verbose=1").Code)
	msg, ok := log.Find("info", "HTTP request completed")
	require.True(t, ok)
	path, _ := msg.Field("path")
	assert.Equal(t, "/status?verbose=1", path)
	status, _ := msg.Field("status")
	assert.EqualValues(t, http.StatusOK, status)

	serve(r, "/broken")
	assert.True(t, log.HasMessage("error", "HTTP request completed with server error"))

	serve(r, "/missing")
	assert.True(t, log.HasMessage("warn", "HTTP request completed with client error"))
}

func TestRequestLogging_SkipPaths(t *testing.T) {
	log := testutil.NewMockLogger()
	r := newEngine(log)

	serve(r, "/healthz")
	assert.Empty(t, log.GetMessages())
}

//Personal.AI order the ending
