package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/marminbh/indexpush-svc/internal/models"
)

// NotificationHandler processes one publish notification and never fails
type NotificationHandler interface {
	Handle(ctx context.Context, n models.PublishNotification)
}

// FailureLister lists failed pushes from the push audit log
type FailureLister interface {
	RecentFailures(ctx context.Context, since time.Time, limit int) ([]models.PushAttemptLog, error)
}

// EventsHandler accepts publish notifications over HTTP and exposes the push
// audit log
type EventsHandler struct {
	notifications NotificationHandler
	pushes        FailureLister
	logger        *zap.Logger
	now           func() time.Time
}

// NewEventsHandler creates a new events handler with dependencies
func NewEventsHandler(notifications NotificationHandler, pushes FailureLister, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		notifications: notifications,
		pushes:        pushes,
		logger:        logger,
		now:           time.Now,
	}
}

// PostPublishEvent handles POST /api/v1/publish-events. The notification is
// processed before the response is written; delivery failures are logged, not
// returned.
func (h *EventsHandler) PostPublishEvent(c *fiber.Ctx) error {
	notification, err := models.ParseNotification(c.Body())
	if err != nil {
		h.logger.Debug("Rejected malformed publish notification",
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.notifications.Handle(c.UserContext(), notification)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "accepted",
		"item_id": notification.ItemID,
	})
}

// PushFailuresResponse represents the response structure for GET /pushes/failures
type PushFailuresResponse struct {
	Pushes  []PushDTO `json:"pushes"`
	HasMore bool      `json:"has_more"`
}

// PushDTO represents a single failed push in the response
type PushDTO struct {
	ID              string  `json:"id"`
	EventID         string  `json:"event_id"`
	Site            string  `json:"site"`
	Language        string  `json:"language"`
	ContentSourceID int     `json:"content_source_id"`
	URLCount        int     `json:"url_count"`
	Status          string  `json:"status"`      // HTTP status code, or "network_error"
	StatusCode      *int    `json:"status_code"` // HTTP status code if a response arrived
	Error           *string `json:"error"`
	Timestamp       string  `json:"timestamp"` // UTC ISO 8601 format
}

// GetPushFailures handles GET /api/v1/pushes/failures
// Query parameters:
//   - since (optional, default 24h ago): RFC 3339 timestamp
//   - limit (optional, default 25): Number of pushes to return
func (h *EventsHandler) GetPushFailures(c *fiber.Ctx) error {
	since := h.now().Add(-24 * time.Hour)
	if sinceStr := c.Query("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "since must be an RFC 3339 timestamp",
			})
		}
		since = parsed
	}

	limit := 25
	if limitStr := c.Query("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		limit = parsedLimit
	}

	// Fetch one extra to determine has_more
	attempts, err := h.pushes.RecentFailures(c.UserContext(), since, limit+1)
	if err != nil {
		h.logger.Error("Failed to query push attempt log",
			zap.Time("since", since),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch pushes",
		})
	}

	hasMore := len(attempts) > limit
	if hasMore {
		attempts = attempts[:limit]
	}

	pushes := make([]PushDTO, 0, len(attempts))
	for _, attempt := range attempts {
		pushes = append(pushes, PushDTO{
			ID:              attempt.ID.String(),
			EventID:         attempt.EventID.String(),
			Site:            attempt.SiteName,
			Language:        attempt.Language,
			ContentSourceID: attempt.ContentSourceID,
			URLCount:        attempt.URLCount,
			Status:          displayStatus(attempt.HTTPStatus),
			StatusCode:      attempt.HTTPStatus,
			Error:           attempt.LastError,
			Timestamp:       attempt.StartedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(PushFailuresResponse{
		Pushes:  pushes,
		HasMore: hasMore,
	})
}

// displayStatus shows the HTTP status code when the API answered
func displayStatus(httpStatus *int) string {
	if httpStatus != nil {
		return strconv.Itoa(*httpStatus)
	}
	return "network_error"
}
