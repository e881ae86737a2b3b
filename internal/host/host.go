// Package host defines the capabilities the publish pipeline needs from the
// content management host: item lookup, descendant traversal, link resolution
// and scoped site activation.
package host

import (
	"context"
	"errors"

	"github.com/marminbh/indexpush-svc/internal/models"
)

// ErrItemNotFound is returned by ItemStore when no item has the requested id
var ErrItemNotFound = errors.New("item not found")

// ItemStore reads items from the published database
type ItemStore interface {
	GetItem(ctx context.Context, id string) (models.ItemRef, error)
	// GetDescendants returns every item below item, parents before children
	GetDescendants(ctx context.Context, item models.ItemRef) ([]models.ItemRef, error)
}

// URLOptions controls how LinkProvider renders an item URL
type URLOptions struct {
	AlwaysIncludeServerURL bool
	ShortenURLs            bool
	SiteResolving          bool
	LowercaseURLs          bool
	LanguageEmbedding      models.LanguageEmbedding
	// Site is the context the URL is generated under
	Site *models.SiteInfo
}

// LinkProvider resolves canonical item URLs
type LinkProvider interface {
	DefaultURLOptions() URLOptions
	ItemURL(ctx context.Context, item models.ItemRef, opts URLOptions) (string, error)
}

// SiteActivator switches the host's active site. The returned release func
// restores the previous site and must be called exactly once.
type SiteActivator interface {
	Activate(ctx context.Context, site models.SiteInfo) (release func(), err error)
}
