package pusher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marminbh/indexpush-svc/internal/config"
	"github.com/marminbh/indexpush-svc/internal/metrics"
	"github.com/marminbh/indexpush-svc/internal/models"
	"github.com/marminbh/indexpush-svc/internal/sites"
)

// ErrSiteNotFound is returned when the batch's first item belongs to no
// registered site
var ErrSiteNotFound = errors.New("no site matches item path")

// SiteResolver finds the site owning an item path
type SiteResolver interface {
	Resolve(path string) (sites.Site, bool)
}

// URLResolver renders the URLs of a batch under a site context
type URLResolver interface {
	ResolveURLs(ctx context.Context, items []models.ItemRef, site sites.Site) ([]string, error)
}

// Pusher sends one URL list to a content source
type Pusher interface {
	PushURLs(ctx context.Context, contentSourceID int, urls []string) *PushResult
}

// Recorder persists push attempts. Recording is best effort.
type Recorder interface {
	RecordPush(ctx context.Context, attempt *models.PushAttemptLog) error
}

// LanguageGroup is the part of a batch sharing one language
type LanguageGroup struct {
	Language string
	Items    []models.ItemRef
	URLs     []string
}

// Summary reports what a dispatch did
type Summary struct {
	Site      string
	Groups    int
	Delivered int
	Failed    int
	Skipped   int
}

// Dispatcher delivers a batch of items to the indexing API, one push per
// language
type Dispatcher struct {
	tenant   *config.TenantConfig
	sites    SiteResolver
	urls     URLResolver
	pusher   Pusher
	recorder Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. recorder and m may be nil.
func NewDispatcher(
	tenant *config.TenantConfig,
	siteResolver SiteResolver,
	urlResolver URLResolver,
	pusher Pusher,
	recorder Recorder,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		tenant:   tenant,
		sites:    siteResolver,
		urls:     urlResolver,
		pusher:   pusher,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
	}
}

// Dispatch resolves the batch's site and URLs and pushes each language group.
// The whole batch is assumed to belong to the site of its first item.
// Failed pushes are logged and do not stop the remaining groups; only
// failures that prevent any push are returned.
func (d *Dispatcher) Dispatch(ctx context.Context, eventID uuid.UUID, items []models.ItemRef) (Summary, error) {
	var summary Summary
	if len(items) == 0 {
		return summary, nil
	}

	site, ok := d.sites.Resolve(items[0].FullPath())
	if !ok {
		return summary, fmt.Errorf("%w: %s", ErrSiteNotFound, items[0].FullPath())
	}
	summary.Site = site.Info.Name

	urls, err := d.urls.ResolveURLs(ctx, items, site)
	if err != nil {
		return summary, err
	}
	if len(urls) != len(items) {
		return summary, fmt.Errorf("resolved %d urls for %d items", len(urls), len(items))
	}

	groups := GroupByLanguage(items, urls)
	summary.Groups = len(groups)

	for _, group := range groups {
		contentSourceID := d.tenant.ContentSourceID(group.Language)
		if contentSourceID <= 0 {
			summary.Skipped++
			continue
		}

		if d.push(ctx, eventID, site, group, contentSourceID) {
			summary.Delivered++
		} else {
			summary.Failed++
		}
	}

	return summary, nil
}

// push delivers one language group and reports whether it succeeded
func (d *Dispatcher) push(ctx context.Context, eventID uuid.UUID, site sites.Site, group LanguageGroup, contentSourceID int) bool {
	startedAt := time.Now()
	result := d.pusher.PushURLs(ctx, contentSourceID, group.URLs)
	finishedAt := time.Now()

	status := ProcessPushResult(result)
	d.metrics.ObservePush(status.Result, time.Duration(result.LatencyMs)*time.Millisecond)

	switch {
	case status.Succeeded:
		d.logger.Info("Pushed urls to indexing API",
			zap.String("event_id", eventID.String()),
			zap.String("site", site.Info.Name),
			zap.String("language", group.Language),
			zap.Int("content_source_id", contentSourceID),
			zap.Int("url_count", len(group.URLs)),
			zap.Int("http_status", *result.HTTPStatus),
			zap.Int("latency_ms", result.LatencyMs),
		)
	case result.HTTPStatus != nil:
		d.logger.Error("Invalid request to indexing API",
			zap.String("event_id", eventID.String()),
			zap.String("request_uri", result.RequestURI),
			zap.Int("http_status", *result.HTTPStatus),
			zap.String("response_body", result.ResponseBody),
			zap.String("language", group.Language),
		)
	default:
		d.logger.Error("Push to indexing API failed",
			zap.String("event_id", eventID.String()),
			zap.String("request_uri", result.RequestURI),
			zap.String("language", group.Language),
			zap.Error(result.Error),
		)
	}

	d.record(ctx, &models.PushAttemptLog{
		ID:              uuid.New(),
		EventID:         eventID,
		SiteName:        site.Info.Name,
		Language:        group.Language,
		ContentSourceID: contentSourceID,
		URLCount:        len(group.URLs),
		RequestURI:      result.RequestURI,
		StartedAt:       startedAt,
		FinishedAt:      finishedAt,
		HTTPStatus:      result.HTTPStatus,
		LatencyMs:       &result.LatencyMs,
		Succeeded:       status.Succeeded,
		ResponseSummary: result.ResponseSummary,
		LastError:       status.LastError,
	})

	return status.Succeeded
}

func (d *Dispatcher) record(ctx context.Context, attempt *models.PushAttemptLog) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordPush(ctx, attempt); err != nil {
		d.logger.Warn("Failed to record push attempt",
			zap.String("event_id", attempt.EventID.String()),
			zap.Error(err),
		)
	}
}

// GroupByLanguage splits items and their parallel urls by language name,
// ignoring case like the content source lookup does. Groups are ordered by
// first occurrence, named after their first item and keep the relative item
// order.
func GroupByLanguage(items []models.ItemRef, urls []string) []LanguageGroup {
	var groups []LanguageGroup
	index := map[string]int{}

	for i, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Language))
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, LanguageGroup{Language: item.Language})
		}
		groups[g].Items = append(groups[g].Items, item)
		groups[g].URLs = append(groups[g].URLs, urls[i])
	}
	return groups
}
