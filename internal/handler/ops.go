package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	domrepo "StressWatch/internal/domain/repository"
)

// OpsHandler exposes liveness and readiness probes. Readiness follows the
// result store; the engine is useless if it cannot persist.
type OpsHandler struct {
	store domrepo.ResultStore
}

func NewOpsHandler(store domrepo.ResultStore) *OpsHandler {
	return &OpsHandler{store: store}
}

func (h *OpsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.healthz)
	e.GET("/readyz", h.readyz)
}

func (h *OpsHandler) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OpsHandler) readyz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Health(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
