// Package catalog exposes artifacts and their images as read-only views over
// a graph store.
package catalog

import (
	"context"
	"log/slog"

	"github.com/perseus-aa/manifest-compiler/iiif"
	"github.com/perseus-aa/manifest-compiler/vocabulary/aa"
)

// NoLabel is returned by Entity.Label when the entity has no rdfs:label.
const NoLabel = "no label"

// ThumbnailKey is the reserved property key holding the thumbnail URL.
const ThumbnailKey = "thumbnail"

// DefaultManifestBaseURL prefixes manifest identifiers.
const DefaultManifestBaseURL = "https://www.perseus.tufts.edu/api"

// PageRenderer renders the web page of an entity.
type PageRenderer interface {
	RenderPage(ctx context.Context, e *Entity) (string, error)
}

// Options configures how entities derive their fields.
type Options struct {
	// Prober checks image existence (default: iiif.NewClient with defaults).
	Prober iiif.Prober

	// Templates are the IIIF request templates for derived image URLs.
	Templates iiif.Templates

	// ImageNamespace is the canonical namespace of image IRIs
	// (default: aa.ImageNamespace).
	ImageNamespace string

	// ImageBaseURL, when set, replaces ImageNamespace in image service URLs.
	ImageBaseURL string

	// ManifestBaseURL prefixes manifest identifiers (default: DefaultManifestBaseURL).
	ManifestBaseURL string

	// Language tags localized manifest values (default: "en").
	Language string

	// Pages renders web pages for Entity.WebPage.
	Pages PageRenderer

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Prober == nil {
		o.Prober = iiif.NewClient(iiif.ClientConfig{Logger: o.Logger})
	}
	o.Templates = o.Templates.WithDefaults()
	if o.ImageNamespace == "" {
		o.ImageNamespace = aa.ImageNamespace
	}
	if o.ManifestBaseURL == "" {
		o.ManifestBaseURL = DefaultManifestBaseURL
	}
	if o.Language == "" {
		o.Language = "en"
	}
	return o
}
