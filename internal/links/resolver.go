package links

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/marminbh/indexpush-svc/internal/host"
	"github.com/marminbh/indexpush-svc/internal/models"
	"github.com/marminbh/indexpush-svc/internal/sites"
)

// ErrUnsupportedLanguageEmbedding is returned when the active embedding policy
// is neither "always" nor "never"
var ErrUnsupportedLanguageEmbedding = errors.New("unsupported language embedding")

// Resolver turns items into canonical public URLs under a site context
type Resolver struct {
	provider  host.LinkProvider
	activator host.SiteActivator
	logger    *zap.Logger
}

// NewResolver creates a resolver. activator may be nil when the provider takes
// the site from URLOptions alone.
func NewResolver(provider host.LinkProvider, activator host.SiteActivator, logger *zap.Logger) *Resolver {
	return &Resolver{
		provider:  provider,
		activator: activator,
		logger:    logger,
	}
}

// ResolveURLs returns one URL per item, in item order. Either every URL is
// resolved or an error is returned; partial results are never handed out.
func (r *Resolver) ResolveURLs(ctx context.Context, items []models.ItemRef, site sites.Site) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	if r.activator != nil {
		release, err := r.activator.Activate(ctx, site.Info)
		if err != nil {
			return nil, fmt.Errorf("failed to activate site %s: %w", site.Info.Name, err)
		}
		defer release()
	}

	opts := r.urlOptions(site)
	if opts.LanguageEmbedding != models.LanguageEmbeddingAlways &&
		opts.LanguageEmbedding != models.LanguageEmbeddingNever {
		r.logger.Warn("Language embedding must be always or never, skipping URL resolution",
			zap.String("site", site.Info.Name),
			zap.String("language_embedding", string(opts.LanguageEmbedding)),
		)
		return nil, fmt.Errorf("%w: %q on site %s", ErrUnsupportedLanguageEmbedding, opts.LanguageEmbedding, site.Info.Name)
	}

	urls := make([]string, 0, len(items))
	for _, item := range items {
		u, err := r.provider.ItemURL(ctx, item, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve url for item %s: %w", item.ID, err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// urlOptions starts from the provider defaults, forces the options the index
// needs and applies the site's own link settings
func (r *Resolver) urlOptions(site sites.Site) host.URLOptions {
	opts := r.provider.DefaultURLOptions()
	opts.AlwaysIncludeServerURL = true
	opts.ShortenURLs = true
	opts.SiteResolving = true

	info := site.Info
	opts.Site = &info
	if embedding, ok := info.LanguageEmbedding(); ok {
		opts.LanguageEmbedding = embedding
	}
	if lower, ok := info.LowercaseURLs(); ok {
		opts.LowercaseURLs = lower
	}
	return opts
}
