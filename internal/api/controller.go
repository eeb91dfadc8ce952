// Package api exposes the correlated alert–entity view over HTTP. Each
// exposed operation is synchronous to the caller: pagination, enrichment,
// and matching are fully resolved before the response is emitted.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/alertlens/alertlens/internal/correlation"
	"github.com/alertlens/alertlens/internal/logger"
	"github.com/alertlens/alertlens/internal/observability"
)

// Controller registers and serves the HTTP API.
type Controller struct {
	Echo    *echo.Echo
	Group   *echo.Group
	svc     *correlation.Service
	metrics *observability.Metrics
	log     logger.Logger
}

// New creates the controller and registers all routes on e.
func New(e *echo.Echo, svc *correlation.Service, metrics *observability.Metrics, staticDir string, log logger.Logger) *Controller {
	c := &Controller{
		Echo:    e,
		Group:   e.Group("/api/v2"),
		svc:     svc,
		metrics: metrics,
		log:     log,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	c.initAlertRoutes()
	c.initEntityRoutes()

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	if staticDir != "" {
		e.Static("/", staticDir)
	}
	return c
}

// HandleError logs the failure and writes the standard error envelope.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	c.log.Error(message, logger.Error(err), logger.String("path", ctx.Path()))
	return ctx.JSON(code, map[string]string{"error": message})
}

// GetHealth reports liveness.
func (c *Controller) GetHealth(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
