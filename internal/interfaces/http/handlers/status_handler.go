package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/application/importer"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// StatusProvider exposes the state of the running import.
type StatusProvider interface {
	Snapshot() importer.Status
}

type StatusHandler struct {
	provider StatusProvider
}

func NewStatusHandler(p StatusProvider) *StatusHandler {
	return &StatusHandler{provider: p}
}

// Status handles GET /status.
func (h *StatusHandler) Status(c *gin.Context) {
	if h.provider == nil {
		respondError(c, errors.New(errors.ErrCodeServiceUnavailable, "no import attached"))
		return
	}
	c.JSON(http.StatusOK, h.provider.Snapshot())
}

//Personal.AI order the ending
