package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alertlens/alertlens/internal/correlation"
)

// initAlertRoutes registers alert condition endpoints.
func (c *Controller) initAlertRoutes() {
	alerts := c.Group.Group("/alerts")
	alerts.GET("", c.GetAllAlerts)
	alerts.GET("/policy/:id", c.GetAlertsByPolicy)

	c.Group.GET("/policies", c.GetPolicies)
	c.Group.GET("/health", c.GetHealth)
}

// GetAllAlerts returns every alert condition, enriched with resolved
// entity metadata, policy names, and formatted threshold terms. Remote
// failures degrade to a partial or empty array.
func (c *Controller) GetAllAlerts(ctx echo.Context) error {
	conds := c.svc.AllConditions(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, conds)
}

// GetAlertsByPolicy returns the enriched conditions of a single policy.
func (c *Controller) GetAlertsByPolicy(ctx echo.Context) error {
	conds, err := c.svc.ConditionsByPolicy(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, correlation.ErrMissingPolicyID) || errors.Is(err, correlation.ErrInvalidPolicyID) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.HandleError(ctx, err, "Failed to fetch alert conditions", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, conds)
}

// GetPolicies returns the policy id → name lookup table as an array.
func (c *Controller) GetPolicies(ctx echo.Context) error {
	policies := c.svc.Policies(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, policies)
}
