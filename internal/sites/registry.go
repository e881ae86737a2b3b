package sites

import (
	"strings"

	"github.com/marminbh/indexpush-svc/internal/models"
)

// Site is a registered site keyed by its start path (rootPath + startItem)
type Site struct {
	Key  string
	Info models.SiteInfo
}

// Registry maps item paths to the site that owns them. It is immutable after
// NewRegistry and safe for concurrent reads.
type Registry struct {
	sites []Site
}

// NewRegistry registers sites in the given order. Sites without both a rootPath
// and a startItem cannot own items and are left out.
func NewRegistry(infos []models.SiteInfo) *Registry {
	sites := make([]Site, 0, len(infos))
	for _, info := range infos {
		if info.RootPath() == "" || info.StartItem() == "" {
			continue
		}
		sites = append(sites, Site{
			Key:  info.StartPath(),
			Info: info,
		})
	}
	return &Registry{sites: sites}
}

// Resolve returns the site owning path. All sites are scanned in registration
// order and the last one whose key prefixes the path (ignoring case) wins, so a
// site registered later shadows an earlier, more generic one.
func (r *Registry) Resolve(path string) (Site, bool) {
	var (
		match Site
		found bool
	)
	for _, site := range r.sites {
		if hasPrefixFold(path, site.Key) {
			match = site
			found = true
		}
	}
	return match, found
}

// Sites returns a copy of the registered sites in registration order
func (r *Registry) Sites() []Site {
	out := make([]Site, len(r.sites))
	copy(out, r.sites)
	return out
}

func (r *Registry) Len() int {
	return len(r.sites)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
