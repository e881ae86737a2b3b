package pusher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/marminbh/indexpush-svc/internal/config"
	"github.com/marminbh/indexpush-svc/internal/models"
	"github.com/marminbh/indexpush-svc/internal/sites"
)

type capturedRequest struct {
	Path   string
	Header http.Header
	URLs   []string
	Raw    string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   map[string]int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{status: map[string]int{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var urls []string
		_ = json.Unmarshal(body, &urls)

		api.mu.Lock()
		api.requests = append(api.requests, capturedRequest{Path: r.URL.Path, Header: r.Header.Clone(), URLs: urls, Raw: string(body)})
		status, ok := api.status[r.URL.Path]
		api.mu.Unlock()

		if !ok {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte(`{"error":"content source not found"}`))
		}
	}))
	t.Cleanup(server.Close)
	return api, server
}

func testTenant(baseURL string) *config.TenantConfig {
	return &config.TenantConfig{
		CustomerID:             42,
		CustomerKey:            "secret",
		APIBaseURL:             baseURL + "/",
		DefaultContentSourceID: 0,
		ContentSourceIDs:       map[string]int{"en": 12, "fr": 13},
		HTTPTimeout:            2 * time.Second,
		MaxResponseBodySize:    1024,
	}
}

func testRegistry() *sites.Registry {
	return sites.NewRegistry([]models.SiteInfo{
		models.NewSiteInfo(map[string]string{
			"name":      "website",
			"rootPath":  "/sitecore/content",
			"startItem": "/home",
			"hostName":  "www.example.com",
		}),
	})
}

// idURLs resolves each item to https://www.example.com/<id>
type idURLs struct {
	calls int
	err   error
}

func (r *idURLs) ResolveURLs(_ context.Context, items []models.ItemRef, _ sites.Site) ([]string, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	urls := make([]string, len(items))
	for i, it := range items {
		urls[i] = "https://www.example.com/" + it.ID
	}
	return urls, nil
}

type memRecorder struct {
	attempts []*models.PushAttemptLog
	err      error
}

func (m *memRecorder) RecordPush(_ context.Context, attempt *models.PushAttemptLog) error {
	m.attempts = append(m.attempts, attempt)
	return m.err
}

func item(id, lang string) models.ItemRef {
	return models.ItemRef{
		ID:            id,
		Path:          models.SplitPath("/sitecore/content/home/" + id),
		Language:      lang,
		IsContentItem: true,
	}
}

func newDispatcher(tenant *config.TenantConfig, urls URLResolver, recorder Recorder, logger *zap.Logger) *Dispatcher {
	return NewDispatcher(tenant, testRegistry(), urls, NewClient(tenant, logger), recorder, nil, logger)
}

func TestDispatchGroupsByLanguage(t *testing.T) {
	api, server := newFakeAPI(t)
	recorder := &memRecorder{}
	d := newDispatcher(testTenant(server.URL), &idURLs{}, recorder, zap.NewNop())

	summary, err := d.Dispatch(context.Background(), uuid.New(), []models.ItemRef{
		item("u1", "en"),
		item("u2", "fr"),
		item("u3", "en"),
	})
	require.NoError(t, err)

	assert.Equal(t, Summary{Site: "website", Groups: 2, Delivered: 2}, summary)
	require.Len(t, api.requests, 2)

	assert.Equal(t, "/api/v3/42/content/12/pushurls", api.requests[0].Path)
	assert.Equal(t, []string{"https://www.example.com/u1", "https://www.example.com/u3"}, api.requests[0].URLs)
	assert.Equal(t, "/api/v3/42/content/13/pushurls", api.requests[1].Path)
	assert.Equal(t, []string{"https://www.example.com/u2"}, api.requests[1].URLs)

	header := api.requests[0].Header
	assert.Equal(t, "Basic NDI6c2VjcmV0", header.Get("Authorization"))
	assert.Equal(t, "application/json", header.Get("Accept"))
	assert.True(t, strings.HasPrefix(header.Get("Content-Type"), "application/json"))

	require.Len(t, recorder.attempts, 2)
	assert.True(t, recorder.attempts[0].Succeeded)
	assert.Equal(t, 12, recorder.attempts[0].ContentSourceID)
	assert.Equal(t, 2, recorder.attempts[0].URLCount)
}

func TestDispatchIsNotDeduplicated(t *testing.T) {
	api, server := newFakeAPI(t)
	d := newDispatcher(testTenant(server.URL), &idURLs{}, nil, zap.NewNop())
	batch := []models.ItemRef{item("u1", "en")}

	for i := 0; i < 2; i++ {
		_, err := d.Dispatch(context.Background(), uuid.New(), batch)
		require.NoError(t, err)
	}

	require.Len(t, api.requests, 2)
	assert.Equal(t, api.requests[0].Raw, api.requests[1].Raw)
	assert.Equal(t, `["https://www.example.com/u1"]`, api.requests[0].Raw)
}

func TestDispatchFailureDoesNotAbortOtherGroups(t *testing.T) {
	api, server := newFakeAPI(t)
	api.status["/api/v3/42/content/12/pushurls"] = http.StatusBadRequest

	core, logs := observer.New(zap.ErrorLevel)
	recorder := &memRecorder{}
	d := newDispatcher(testTenant(server.URL), &idURLs{}, recorder, zap.New(core))

	summary, err := d.Dispatch(context.Background(), uuid.New(), []models.ItemRef{
		item("u1", "en"),
		item("u2", "fr"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Delivered)
	require.Len(t, api.requests, 2)

	entries := logs.FilterMessage("Invalid request to indexing API").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusBadRequest), fields["http_status"])
	assert.Contains(t, fields["request_uri"], "/api/v3/42/content/12/pushurls")
	assert.Contains(t, fields["response_body"], "content source not found")

	require.Len(t, recorder.attempts, 2)
	assert.False(t, recorder.attempts[0].Succeeded)
	require.NotNil(t, recorder.attempts[0].LastError)
	assert.Equal(t, "HTTP 400", *recorder.attempts[0].LastError)
}

func TestDispatchSkipsUnconfiguredLanguage(t *testing.T) {
	api, server := newFakeAPI(t)
	d := newDispatcher(testTenant(server.URL), &idURLs{}, nil, zap.NewNop())

	summary, err := d.Dispatch(context.Background(), uuid.New(), []models.ItemRef{
		item("u1", "de"),
		item("u2", "en"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, api.requests, 1)
	assert.Equal(t, "/api/v3/42/content/12/pushurls", api.requests[0].Path)
}

func TestDispatchDefaultContentSource(t *testing.T) {
	api, server := newFakeAPI(t)
	tenant := testTenant(server.URL)
	tenant.DefaultContentSourceID = 7
	d := newDispatcher(tenant, &idURLs{}, nil, zap.NewNop())

	_, err := d.Dispatch(context.Background(), uuid.New(), []models.ItemRef{item("u1", "de")})
	require.NoError(t, err)

	require.Len(t, api.requests, 1)
	assert.Equal(t, "/api/v3/42/content/7/pushurls", api.requests[0].Path)
}

func TestDispatchUnknownSite(t *testing.T) {
	api, server := newFakeAPI(t)
	urls := &idURLs{}
	d := newDispatcher(testTenant(server.URL), urls, nil, zap.NewNop())

	outside := models.ItemRef{ID: "x", Path: models.SplitPath("/sitecore/system/x"), Language: "en", IsContentItem: true}
	_, err := d.Dispatch(context.Background(), uuid.New(), []models.ItemRef{outside, item("u1", "en")})

	require.ErrorIs(t, err, ErrSiteNotFound)
	assert.Zero(t, urls.calls)
	assert.Empty(t, api.requests)
}

func TestDispatchURLResolutionFailure(t *testing.T) {
	api, server := newFakeAPI(t)
	resolveErr := errors.New("unsupported embedding")
	d := newDispatcher(testTenant(server.URL), &idURLs{err: resolveErr}, nil, zap.NewNop())

	_, err := d.Dispatch(context.Background(), uuid.New(), []models.ItemRef{item("u1", "en")})
	require.ErrorIs(t, err, resolveErr)
	assert.Empty(t, api.requests)
}

func TestDispatchRecorderFailureIsIgnored(t *testing.T) {
	api, server := newFakeAPI(t)
	d := newDispatcher(testTenant(server.URL), &idURLs{}, &memRecorder{err: errors.New("db down")}, zap.NewNop())

	summary, err := d.Dispatch(context.Background(), uuid.New(), []models.ItemRef{item("u1", "en")})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Delivered)
	assert.Len(t, api.requests, 1)
}

func TestPushURLsNetworkError(t *testing.T) {
	tenant := testTenant("http://127.0.0.1:1")
	client := NewClient(tenant, zap.NewNop())

	result := client.PushURLs(context.Background(), 12, []string{"https://www.example.com/"})
	require.Error(t, result.Error)
	assert.Nil(t, result.HTTPStatus)

	status := ProcessPushResult(result)
	assert.False(t, status.Succeeded)
	assert.Equal(t, ResultNetworkError, status.Result)
}

func TestPushURLsTruncatesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	tenant := testTenant(server.URL)
	tenant.MaxResponseBodySize = 10
	result := NewClient(tenant, zap.NewNop()).PushURLs(context.Background(), 12, nil)

	require.NoError(t, result.Error)
	assert.Equal(t, http.StatusInternalServerError, *result.HTTPStatus)
	assert.Equal(t, strings.Repeat("x", 10), result.ResponseBody)
	require.NotNil(t, result.ResponseSummary)
	assert.Contains(t, *result.ResponseSummary, "truncated")
}

func TestProcessPushResult(t *testing.T) {
	status := func(code int) *int { return &code }

	tests := []struct {
		name   string
		result *PushResult
		want   string
	}{
		{"ok", &PushResult{HTTPStatus: status(200)}, ResultSucceeded},
		{"accepted", &PushResult{HTTPStatus: status(202)}, ResultSucceeded},
		{"redirect", &PushResult{HTTPStatus: status(301)}, ResultHTTPError},
		{"unauthorized", &PushResult{HTTPStatus: status(401)}, ResultHTTPError},
		{"server error", &PushResult{HTTPStatus: status(503)}, ResultHTTPError},
		{"no status", &PushResult{}, ResultNetworkError},
		{"network", &PushResult{Error: errors.New("reset")}, ResultNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProcessPushResult(tt.result)
			assert.Equal(t, tt.want, got.Result)
			assert.Equal(t, tt.want == ResultSucceeded, got.Succeeded)
		})
	}
}

func TestGroupByLanguage(t *testing.T) {
	items := []models.ItemRef{item("a", "en"), item("b", "fr"), item("c", "en"), item("d", "da")}
	urls := []string{"ua", "ub", "uc", "ud"}

	groups := GroupByLanguage(items, urls)
	require.Len(t, groups, 3)

	assert.Equal(t, "en", groups[0].Language)
	assert.Equal(t, []string{"ua", "uc"}, groups[0].URLs)
	assert.Equal(t, "fr", groups[1].Language)
	assert.Equal(t, []string{"ub"}, groups[1].URLs)
	assert.Equal(t, "da", groups[2].Language)
	assert.Equal(t, []string{"ud"}, groups[2].URLs)
}

func TestGroupByLanguageIgnoresCase(t *testing.T) {
	items := []models.ItemRef{item("a", "en"), item("b", "EN"), item("c", "da-DK"), item("d", "da-dk")}
	urls := []string{"ua", "ub", "uc", "ud"}

	groups := GroupByLanguage(items, urls)
	require.Len(t, groups, 2)

	assert.Equal(t, "en", groups[0].Language)
	assert.Equal(t, []string{"ua", "ub"}, groups[0].URLs)
	assert.Equal(t, "da-DK", groups[1].Language)
	assert.Equal(t, []string{"uc", "ud"}, groups[1].URLs)
}
