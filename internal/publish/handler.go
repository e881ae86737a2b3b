// Package publish is the entry point for publish notifications. Handle never
// returns an error and never panics; every failure ends in a log entry.
package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marminbh/indexpush-svc/internal/classifier"
	"github.com/marminbh/indexpush-svc/internal/links"
	"github.com/marminbh/indexpush-svc/internal/metrics"
	"github.com/marminbh/indexpush-svc/internal/models"
	"github.com/marminbh/indexpush-svc/internal/pusher"
)

// Notification outcomes, used as the metrics label
const (
	OutcomeDisabled    = "disabled"
	OutcomeIgnored     = "ignored"
	OutcomeDispatched  = "dispatched"
	OutcomePartial     = "partial"
	OutcomeUnknownSite = "unknown_site"
	OutcomeUnsupported = "unsupported_link_policy"
	OutcomeNoSource    = "no_content_source"
	OutcomeFailed      = "failed"
)

// Classifier decides which items a notification affects
type Classifier interface {
	Classify(ctx context.Context, n models.PublishNotification) (classifier.Decision, error)
}

// Dispatcher pushes a batch of items to the indexing API
type Dispatcher interface {
	Dispatch(ctx context.Context, eventID uuid.UUID, items []models.ItemRef) (pusher.Summary, error)
}

type Handler struct {
	enabled    bool
	classifier Classifier
	dispatcher Dispatcher
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewHandler creates the handler. When enabled is false (the tenant
// configuration was invalid) every notification is dropped for the lifetime
// of the process.
func NewHandler(enabled bool, c Classifier, d Dispatcher, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		enabled:    enabled,
		classifier: c,
		dispatcher: d,
		metrics:    m,
		logger:     logger,
	}
}

// Enabled reports whether notifications are processed
func (h *Handler) Enabled() bool {
	return h.enabled
}

// Handle processes one notification to completion on the calling goroutine
func (h *Handler) Handle(ctx context.Context, n models.PublishNotification) {
	if !h.enabled {
		h.metrics.ObserveNotification(OutcomeDisabled)
		return
	}

	eventID := uuid.New()
	logger := h.logger.With(
		zap.String("event_id", eventID.String()),
		zap.String("item_id", n.ItemID),
		zap.String("kind", string(n.Kind)),
	)

	outcome, err := h.process(ctx, eventID, n, logger)
	h.metrics.ObserveNotification(outcome)

	switch {
	case err == nil:
	case errors.Is(err, pusher.ErrSiteNotFound):
		// Content outside every registered site is expected
		logger.Debug("No site found for item, skipping", zap.Error(err))
	case errors.Is(err, links.ErrUnsupportedLanguageEmbedding):
		// Already logged as a warning by the resolver
	default:
		logger.Error("Failed to process publish notification", zap.Error(err))
	}
}

func (h *Handler) process(ctx context.Context, eventID uuid.UUID, n models.PublishNotification, logger *zap.Logger) (outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeFailed
			err = fmt.Errorf("panic while processing notification: %v", r)
		}
	}()

	decision, err := h.classifier.Classify(ctx, n)
	if err != nil {
		return OutcomeFailed, err
	}
	if decision.Action == classifier.ActionIgnore || len(decision.Items) == 0 {
		logger.Debug("Ignoring publish notification", zap.String("reason", decision.Reason))
		return OutcomeIgnored, nil
	}

	logger.Debug("Dispatching publish notification",
		zap.String("action", string(decision.Action)),
		zap.Int("item_count", len(decision.Items)),
	)

	summary, err := h.dispatcher.Dispatch(ctx, eventID, decision.Items)
	switch {
	case errors.Is(err, pusher.ErrSiteNotFound):
		return OutcomeUnknownSite, err
	case errors.Is(err, links.ErrUnsupportedLanguageEmbedding):
		return OutcomeUnsupported, err
	case err != nil:
		return OutcomeFailed, err
	case summary.Failed > 0:
		return OutcomePartial, nil
	case summary.Delivered == 0 && summary.Skipped > 0:
		logger.Debug("No content source configured for any language, nothing pushed",
			zap.String("site", summary.Site),
			zap.Int("skipped", summary.Skipped),
		)
		return OutcomeNoSource, nil
	}

	logger.Debug("Publish notification processed",
		zap.String("site", summary.Site),
		zap.Int("groups", summary.Groups),
		zap.Int("delivered", summary.Delivered),
		zap.Int("skipped", summary.Skipped),
	)
	return OutcomeDispatched, nil
}
