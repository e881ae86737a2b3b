package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/marminbh/indexpush-svc/internal/database"
)

// BrokerStatus reports whether the queue connection is usable
type BrokerStatus interface {
	IsHealthy() bool
}

// ProcessingStatus reports whether publish notifications are being processed
type ProcessingStatus interface {
	Enabled() bool
}

// HealthHandler handles the health check endpoint
type HealthHandler struct {
	pingDB     func(ctx context.Context) error
	broker     BrokerStatus
	processing ProcessingStatus
	timeout    time.Duration
}

// NewHealthHandler creates a health handler. broker may be nil when the
// service runs without a queue connection.
func NewHealthHandler(db *gorm.DB, broker BrokerStatus, processing ProcessingStatus) *HealthHandler {
	return &HealthHandler{
		pingDB: func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		},
		broker:     broker,
		processing: processing,
		timeout:    5 * time.Second,
	}
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Services   map[string]string `json:"services"`
	Processing string            `json:"processing"`
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	services := make(map[string]string)
	status := "healthy"

	if err := h.pingDB(ctx); err != nil {
		services["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		services["database"] = "healthy"
	}

	if h.broker == nil || !h.broker.IsHealthy() {
		services["rabbitmq"] = "unhealthy: connection closed"
		status = "unhealthy"
	} else {
		services["rabbitmq"] = "healthy"
	}

	// Disabled processing means the tenant configuration was rejected at
	// start-up; the service itself is still up.
	processing := "disabled"
	if h.processing != nil && h.processing.Enabled() {
		processing = "enabled"
	}

	response := HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Services:   services,
		Processing: processing,
	}

	if status == "unhealthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}

	return c.JSON(response)
}
