// Package http is the status server that runs next to an import.  It exposes
// liveness and readiness probes, the import progress and the Prometheus
// metrics.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/prometheus"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/interfaces/http/handlers"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil handlers leave their routes unregistered.
type RouterConfig struct {
	HealthHandler *handlers.HealthHandler
	StatusHandler *handlers.StatusHandler

	Logger           logging.Logger
	LoggingConfig    *middleware.LoggingConfig
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the status server routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if cfg.Logger != nil {
		lc := middleware.DefaultLoggingConfig()
		if cfg.LoggingConfig != nil {
			lc = *cfg.LoggingConfig
		}
		r.Use(middleware.RequestLogging(cfg.Logger, lc))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.StatusHandler != nil {
		r.GET("/status", cfg.StatusHandler.Status)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}
	return r
}

//Personal.AI order the ending
