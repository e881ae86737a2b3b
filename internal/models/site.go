package models

import (
	"strconv"
	"strings"
)

// Site property names understood by the registry and the link provider
const (
	SitePropertyName              = "name"
	SitePropertyRootPath          = "rootPath"
	SitePropertyStartItem         = "startItem"
	SitePropertyHostName          = "hostName"
	SitePropertyTargetHostName    = "targetHostName"
	SitePropertyScheme            = "scheme"
	SitePropertyPort              = "port"
	SitePropertyLanguage          = "language"
	SitePropertyLanguageEmbedding = "languageEmbedding"
	SitePropertyLowercaseURLs     = "lowercaseUrls"
)

// LanguageEmbedding controls whether a resolved URL carries a language segment
type LanguageEmbedding string

const (
	LanguageEmbeddingAlways   LanguageEmbedding = "always"
	LanguageEmbeddingNever    LanguageEmbedding = "never"
	LanguageEmbeddingAsNeeded LanguageEmbedding = "asNeeded"
)

// SiteInfo is a configured site with its raw string properties
type SiteInfo struct {
	Name       string
	Properties map[string]string
}

// NewSiteInfo builds a SiteInfo from a property bag, taking the name from the
// "name" property
func NewSiteInfo(properties map[string]string) SiteInfo {
	props := make(map[string]string, len(properties))
	for k, v := range properties {
		props[k] = v
	}
	return SiteInfo{
		Name:       props[SitePropertyName],
		Properties: props,
	}
}

// Property returns the named property, or "" when it is not set
func (s SiteInfo) Property(name string) string {
	return strings.TrimSpace(s.Properties[name])
}

func (s SiteInfo) RootPath() string  { return s.Property(SitePropertyRootPath) }
func (s SiteInfo) StartItem() string { return s.Property(SitePropertyStartItem) }

// StartPath is the full path of the site's home item
func (s SiteInfo) StartPath() string {
	return s.RootPath() + s.StartItem()
}

// HostName returns the host URLs are generated for. targetHostName wins over
// hostName, and only the first entry of a pipe separated host list is used.
func (s SiteInfo) HostName() string {
	host := s.Property(SitePropertyTargetHostName)
	if host == "" {
		host = s.Property(SitePropertyHostName)
	}
	if i := strings.Index(host, "|"); i >= 0 {
		host = host[:i]
	}
	return strings.TrimSpace(host)
}

func (s SiteInfo) Scheme() string {
	if scheme := s.Property(SitePropertyScheme); scheme != "" {
		return strings.ToLower(scheme)
	}
	return "https"
}

// Port returns the configured port, or 0 when none (or an invalid one) is set
func (s SiteInfo) Port() int {
	port, err := strconv.Atoi(s.Property(SitePropertyPort))
	if err != nil || port <= 0 {
		return 0
	}
	return port
}

// LanguageEmbedding returns the site's embedding policy and whether the site
// sets one at all
func (s SiteInfo) LanguageEmbedding() (LanguageEmbedding, bool) {
	value := s.Property(SitePropertyLanguageEmbedding)
	if value == "" {
		return "", false
	}
	return LanguageEmbedding(value), true
}

// LowercaseURLs reports whether the site asks for lowercased URL paths
func (s SiteInfo) LowercaseURLs() (bool, bool) {
	value := s.Property(SitePropertyLowercaseURLs)
	if value == "" {
		return false, false
	}
	lower, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return lower, true
}
