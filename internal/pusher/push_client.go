package pusher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/marminbh/indexpush-svc/internal/config"
)

// PushResult represents the result of a single push to the indexing API
type PushResult struct {
	RequestURI      string
	HTTPStatus      *int
	LatencyMs       int
	ResponseBody    string
	ResponseSummary *string
	Error           error
}

// Client posts URL lists to the tenant's push endpoint
type Client struct {
	tenant     *config.TenantConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a push client whose requests time out after the tenant's
// HTTP timeout
func NewClient(tenant *config.TenantConfig, logger *zap.Logger) *Client {
	return &Client{
		tenant: tenant,
		httpClient: &http.Client{
			Timeout: tenant.HTTPTimeout,
		},
		logger: logger,
	}
}

// PushURLs performs one HTTP POST of urls to the given content source
func (c *Client) PushURLs(ctx context.Context, contentSourceID int, urls []string) *PushResult {
	result := &PushResult{
		RequestURI: c.tenant.PushURL(contentSourceID),
	}

	// A nil slice would marshal as null
	if urls == nil {
		urls = []string{}
	}
	body, err := json.Marshal(urls)
	if err != nil {
		result.Error = fmt.Errorf("failed to marshal urls: %w", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, result.RequestURI, bytes.NewReader(body))
	if err != nil {
		result.Error = fmt.Errorf("failed to create HTTP request: %w", err)
		return result
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.tenant.BasicAuth())

	startTime := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network/timeout error
		result.LatencyMs = int(time.Since(startTime).Milliseconds())
		result.Error = fmt.Errorf("HTTP request failed: %w", err)
		return result
	}
	defer resp.Body.Close()

	result.LatencyMs = int(time.Since(startTime).Milliseconds())
	result.HTTPStatus = &resp.StatusCode

	maxSize := c.tenant.MaxResponseBodySize
	responseBody, readErr := io.ReadAll(io.LimitReader(resp.Body, int64(maxSize)+1))
	if readErr != nil {
		c.logger.Warn("Failed to read response body",
			zap.Error(readErr),
			zap.String("url", result.RequestURI),
		)
	}

	if len(responseBody) > maxSize {
		result.ResponseBody = string(responseBody[:maxSize])
		summary := fmt.Sprintf("Response body truncated (max %d bytes)", maxSize)
		result.ResponseSummary = &summary
	} else {
		result.ResponseBody = string(responseBody)
		if len(responseBody) > 0 {
			summary := fmt.Sprintf("Response body: %s", result.ResponseBody)
			if len(summary) > 500 {
				summary = summary[:500] + "..."
			}
			result.ResponseSummary = &summary
		}
	}

	return result
}
