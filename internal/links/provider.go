package links

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/marminbh/indexpush-svc/internal/host"
	"github.com/marminbh/indexpush-svc/internal/models"
)

var (
	ErrNoSite     = errors.New("no site context for url")
	ErrNoHostName = errors.New("site has no host name")
)

// Provider renders item URLs from the site's properties:
// scheme://host[:port]/[language/]path-below-start-item
type Provider struct {
	defaults host.URLOptions
}

// NewProvider creates a provider whose defaults use the given embedding policy
func NewProvider(embedding models.LanguageEmbedding, lowercase bool) *Provider {
	return &Provider{
		defaults: host.URLOptions{
			LanguageEmbedding: embedding,
			LowercaseURLs:     lowercase,
		},
	}
}

func (p *Provider) DefaultURLOptions() host.URLOptions {
	return p.defaults
}

func (p *Provider) ItemURL(_ context.Context, item models.ItemRef, opts host.URLOptions) (string, error) {
	if opts.Site == nil {
		return "", ErrNoSite
	}
	site := *opts.Site

	segments := relativeSegments(item.Path, site)
	if opts.LanguageEmbedding == models.LanguageEmbeddingAlways && item.Language != "" {
		segments = append([]string{strings.ToLower(item.Language)}, segments...)
	}
	for i, segment := range segments {
		if opts.ShortenURLs {
			segment = strings.ReplaceAll(segment, " ", "-")
		}
		if opts.LowercaseURLs {
			segment = strings.ToLower(segment)
		}
		segments[i] = segment
	}

	u := url.URL{Path: "/" + strings.Join(segments, "/")}
	if opts.AlwaysIncludeServerURL {
		hostName := site.HostName()
		if hostName == "" || strings.Contains(hostName, "*") {
			return "", ErrNoHostName
		}
		u.Scheme = site.Scheme()
		u.Host = hostName
		if port := site.Port(); port > 0 && !isDefaultPort(u.Scheme, port) {
			u.Host = hostName + ":" + strconv.Itoa(port)
		}
	}
	return u.String(), nil
}

// relativeSegments strips the site's start path from the item path. Items
// outside the start item keep the part below the root path, or their full
// path when they are outside the site altogether.
func relativeSegments(path []string, site models.SiteInfo) []string {
	for _, prefix := range []string{site.StartPath(), site.RootPath()} {
		prefixSegments := models.SplitPath(prefix)
		if len(prefixSegments) == 0 || len(prefixSegments) > len(path) {
			continue
		}
		matched := true
		for i, segment := range prefixSegments {
			if !strings.EqualFold(segment, path[i]) {
				matched = false
				break
			}
		}
		if matched {
			return append([]string(nil), path[len(prefixSegments):]...)
		}
	}
	return append([]string(nil), path...)
}

func isDefaultPort(scheme string, port int) bool {
	return (scheme == "https" && port == 443) || (scheme == "http" && port == 80)
}
