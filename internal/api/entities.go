package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// initEntityRoutes registers entity inventory endpoints.
func (c *Controller) initEntityRoutes() {
	entities := c.Group.Group("/entities")
	entities.GET("", c.GetEntities)
}

// GetEntities returns the full entity inventory cross-referenced with
// matching alert conditions: one record per entity with its friendly type
// label, a hasAlerts flag, and the deduplicated matched condition names.
func (c *Controller) GetEntities(ctx echo.Context) error {
	results := c.svc.EntitiesWithAlerts(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, results)
}
