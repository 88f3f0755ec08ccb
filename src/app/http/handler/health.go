// Package handler contains HTTP handlers for the API.
// Handlers are responsible for:
// - Parsing and validating HTTP requests
// - Calling use case methods
// - Converting results to HTTP responses
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"profileapi/src/app/http/response"
	"profileapi/src/app/middleware"
	"profileapi/src/core/usecase"
	"profileapi/src/infra/logger"
)

// HealthHandler handles liveness and database diagnostic endpoints.
type HealthHandler struct {
	healthService *usecase.HealthService
	timeout       time.Duration
	log           *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(healthService *usecase.HealthService, timeout time.Duration, log *slog.Logger) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		timeout:       timeout,
		log:           log,
	}
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health reports that the process is up. It never touches the database.
// GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "Server is running",
	})
}

// DBTest runs a trivial query and reports pool occupancy.
// GET /api/db-test
func (h *HealthHandler) DBTest(c *gin.Context) {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	status, err := h.healthService.CheckDatabase(ctx)
	if err != nil {
		logger.WithRequestID(h.log, middleware.GetRequestID(c)).Error("database test failed", "error", err)
		c.JSON(http.StatusInternalServerError, response.Message{
			Message: "Database connection failed",
			Error:   err.Error(),
		})
		return
	}
	response.OK(c, status)
}

// requestContext detaches the work from client disconnects so a borrowed
// connection always finishes and is released; timeout bounds it instead.
func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), timeout)
}
