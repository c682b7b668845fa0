package http

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/interfaces/http/handlers"
)

func TestServer_StartAndShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterConfig{HealthHandler: handlers.NewHealthHandler("test")})
	srv := NewServer("127.0.0.1:0", router, nil)
	require.NoError(t, srv.Start())

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"alive"`)

	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	srv := NewServer("127.0.0.1:0", http.NewServeMux(), nil)
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestServer_StartBindError(t *testing.T) {
	srv := NewServer("256.0.0.1:99999", http.NewServeMux(), nil)
	assert.Error(t, srv.Start())
}

//Personal.AI order the ending
