package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadTenant(t *testing.T) {
	tenant, err := loadTenant(envFrom(map[string]string{
		"INDEXING_CUSTOMER_KEY":         "secret",
		"INDEXING_CUSTOMER_ID":          "42",
		"INDEXING_CONTENT_SOURCE_ID":    "7",
		"INDEXING_CONTENT_SOURCE_IDS":   "en=12, da-DK=14",
		"INDEXING_HTTP_TIMEOUT_SECONDS": "3",
	}))
	require.NoError(t, err)

	assert.Equal(t, 42, tenant.CustomerID)
	assert.Equal(t, "secret", tenant.CustomerKey)
	assert.Equal(t, DefaultIndexingAPIURL, tenant.APIBaseURL)
	assert.Equal(t, 7, tenant.DefaultContentSourceID)
	assert.Equal(t, map[string]int{"en": 12, "da-dk": 14}, tenant.ContentSourceIDs)
	assert.Equal(t, 3*time.Second, tenant.HTTPTimeout)
	assert.Equal(t, defaultMaxResponseBodySize, tenant.MaxResponseBodySize)
}

func TestLoadTenantInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr []string
	}{
		{
			name:    "nothing set",
			env:     map[string]string{},
			wantErr: []string{"INDEXING_CUSTOMER_KEY", "INDEXING_CUSTOMER_ID", "INDEXING_CONTENT_SOURCE_ID"},
		},
		{
			name: "customer id not a number",
			env: map[string]string{
				"INDEXING_CUSTOMER_KEY":      "secret",
				"INDEXING_CUSTOMER_ID":       "abc",
				"INDEXING_CONTENT_SOURCE_ID": "7",
			},
			wantErr: []string{"INDEXING_CUSTOMER_ID"},
		},
		{
			name: "default content source not a number",
			env: map[string]string{
				"INDEXING_CUSTOMER_KEY":      "secret",
				"INDEXING_CUSTOMER_ID":       "42",
				"INDEXING_CONTENT_SOURCE_ID": "seven",
			},
			wantErr: []string{"INDEXING_CONTENT_SOURCE_ID is invalid"},
		},
		{
			name: "malformed override",
			env: map[string]string{
				"INDEXING_CUSTOMER_KEY":       "secret",
				"INDEXING_CUSTOMER_ID":        "42",
				"INDEXING_CONTENT_SOURCE_ID":  "7",
				"INDEXING_CONTENT_SOURCE_IDS": "en:12",
			},
			wantErr: []string{"INDEXING_CONTENT_SOURCE_IDS"},
		},
		{
			name: "bad timeout",
			env: map[string]string{
				"INDEXING_CUSTOMER_KEY":         "secret",
				"INDEXING_CUSTOMER_ID":          "42",
				"INDEXING_CONTENT_SOURCE_ID":    "7",
				"INDEXING_HTTP_TIMEOUT_SECONDS": "0",
			},
			wantErr: []string{"INDEXING_HTTP_TIMEOUT_SECONDS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant, err := loadTenant(envFrom(tt.env))
			require.Error(t, err)
			assert.Nil(t, tenant)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestLoadTenantOverridesWithoutDefault(t *testing.T) {
	tenant, err := loadTenant(envFrom(map[string]string{
		"INDEXING_CUSTOMER_KEY":       "secret",
		"INDEXING_CUSTOMER_ID":        "42",
		"INDEXING_CONTENT_SOURCE_IDS": "en=12",
	}))
	require.NoError(t, err)

	assert.Equal(t, 12, tenant.ContentSourceID("EN"))
	assert.Equal(t, 0, tenant.ContentSourceID("fr"), "unconfigured language has no content source")
}

func TestTenantPushURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://api.cludo.com/", "https://api.cludo.com/api/v3/42/content/7/pushurls"},
		{"https://api.cludo.com", "https://api.cludo.com/api/v3/42/content/7/pushurls"},
		{"http://localhost:8080//", "http://localhost:8080/api/v3/42/content/7/pushurls"},
	}

	for _, tt := range tests {
		tenant := &TenantConfig{CustomerID: 42, APIBaseURL: tt.base}
		assert.Equal(t, tt.want, tenant.PushURL(7))
	}
}

func TestTenantBasicAuth(t *testing.T) {
	tenant := &TenantConfig{CustomerID: 42, CustomerKey: "secret"}
	// base64("42:secret")
	assert.Equal(t, "Basic NDI6c2VjcmV0", tenant.BasicAuth())
}
