package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports whether the service and its database are reachable
func (h *Handler) HealthCheck(c echo.Context) error {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":  "unhealthy",
			"service": "rental-service",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "rental-service",
	})
}
