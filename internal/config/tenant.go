package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultIndexingAPIURL is used when INDEXING_API_URL is not set
const DefaultIndexingAPIURL = "https://api.cludo.com/"

const (
	defaultHTTPTimeout         = 5 * time.Second
	defaultMaxResponseBodySize = 4096
)

// TenantConfig holds the credentials and content source mapping for the remote
// indexing API. It is built once at start-up and never mutated.
type TenantConfig struct {
	CustomerID             int
	CustomerKey            string
	APIBaseURL             string
	DefaultContentSourceID int
	// Keys are lowercased language names
	ContentSourceIDs    map[string]int
	HTTPTimeout         time.Duration
	MaxResponseBodySize int
}

// LoadTenant reads the indexing tenant settings from the environment.
// Every missing or malformed setting is reported; the returned error joins all
// of them and the config is nil.
func LoadTenant() (*TenantConfig, error) {
	return loadTenant(os.Getenv)
}

func loadTenant(getenv func(string) string) (*TenantConfig, error) {
	var errs []error

	tenant := &TenantConfig{
		APIBaseURL:          strings.TrimSpace(getenv("INDEXING_API_URL")),
		ContentSourceIDs:    map[string]int{},
		HTTPTimeout:         defaultHTTPTimeout,
		MaxResponseBodySize: defaultMaxResponseBodySize,
	}
	if tenant.APIBaseURL == "" {
		tenant.APIBaseURL = DefaultIndexingAPIURL
	}

	tenant.CustomerKey = strings.TrimSpace(getenv("INDEXING_CUSTOMER_KEY"))
	if tenant.CustomerKey == "" {
		errs = append(errs, errors.New("INDEXING_CUSTOMER_KEY is not specified"))
	}

	customerID, err := strconv.Atoi(strings.TrimSpace(getenv("INDEXING_CUSTOMER_ID")))
	if err != nil {
		errs = append(errs, errors.New("INDEXING_CUSTOMER_ID is not specified or is invalid"))
	}
	tenant.CustomerID = customerID

	overrides, err := parseContentSourceIDs(getenv("INDEXING_CONTENT_SOURCE_IDS"))
	if err != nil {
		errs = append(errs, err)
	}
	tenant.ContentSourceIDs = overrides

	if raw := strings.TrimSpace(getenv("INDEXING_CONTENT_SOURCE_ID")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, errors.New("INDEXING_CONTENT_SOURCE_ID is invalid"))
		}
		tenant.DefaultContentSourceID = id
	} else if len(overrides) == 0 {
		errs = append(errs, errors.New("INDEXING_CONTENT_SOURCE_ID is not specified and no INDEXING_CONTENT_SOURCE_IDS are set"))
	}

	if raw := strings.TrimSpace(getenv("INDEXING_HTTP_TIMEOUT_SECONDS")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			errs = append(errs, errors.New("INDEXING_HTTP_TIMEOUT_SECONDS must be a positive integer"))
		} else {
			tenant.HTTPTimeout = time.Duration(seconds) * time.Second
		}
	}

	if raw := strings.TrimSpace(getenv("INDEXING_MAX_RESPONSE_BODY_SIZE")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			errs = append(errs, errors.New("INDEXING_MAX_RESPONSE_BODY_SIZE must be a positive integer"))
		} else {
			tenant.MaxResponseBodySize = size
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return tenant, nil
}

// parseContentSourceIDs parses "en=12,da-DK=14" into a lowercased language map
func parseContentSourceIDs(raw string) (map[string]int, error) {
	ids := map[string]int{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ids, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		lang, value, ok := strings.Cut(pair, "=")
		lang = strings.ToLower(strings.TrimSpace(lang))
		if !ok || lang == "" {
			return nil, fmt.Errorf("INDEXING_CONTENT_SOURCE_IDS entry %q must be language=id", pair)
		}
		id, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("INDEXING_CONTENT_SOURCE_IDS entry %q has an invalid id", pair)
		}
		ids[lang] = id
	}
	return ids, nil
}

// ContentSourceID returns the content source for a language, falling back to
// the default. A result <= 0 means the language is not configured.
func (t *TenantConfig) ContentSourceID(language string) int {
	if id, ok := t.ContentSourceIDs[strings.ToLower(strings.TrimSpace(language))]; ok {
		return id
	}
	return t.DefaultContentSourceID
}

// PushURL returns the push endpoint for a content source
func (t *TenantConfig) PushURL(contentSourceID int) string {
	return fmt.Sprintf("%s/api/v3/%d/content/%d/pushurls",
		strings.TrimRight(t.APIBaseURL, "/"), t.CustomerID, contentSourceID)
}

// BasicAuth returns the Authorization header value for the tenant
func (t *TenantConfig) BasicAuth() string {
	credentials := fmt.Sprintf("%d:%s", t.CustomerID, t.CustomerKey)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}
