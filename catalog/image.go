package catalog

import (
	"context"

	"github.com/perseus-aa/manifest-compiler/graph"
	"github.com/perseus-aa/manifest-compiler/iiif"
	"github.com/perseus-aa/manifest-compiler/vocabulary/aa"
)

// Image is an IIIF image representing an entity.
type Image struct {
	iri   graph.Term
	store *graph.Store
	opts  *Options
}

// IRI returns the image's IRI as it appears in the graph.
func (i *Image) IRI() string { return i.iri.Value }

// ID returns the last path segment of the image IRI.
func (i *Image) ID() string { return lastSegment(i.iri.Value) }

// ServiceURL returns the image service URL, rebased onto the configured
// image server.
func (i *Image) ServiceURL() string {
	return iiif.Rebase(i.iri.Value, i.opts.ImageNamespace, i.opts.ImageBaseURL)
}

// Exists probes the image server. The result is not cached.
func (i *Image) Exists(ctx context.Context) bool {
	_, ok := i.opts.Prober.Probe(ctx, i.ServiceURL())
	return ok
}

// Info probes the image server and returns the decoded info.json, which may
// be nil for a present image whose info could not be decoded.
func (i *Image) Info(ctx context.Context) (*iiif.ImageInfo, bool) {
	return i.opts.Prober.Probe(ctx, i.ServiceURL())
}

// Thumbnail returns the thumbnail URL if the image exists.
func (i *Image) Thumbnail(ctx context.Context) (string, bool) {
	return i.derived(ctx, i.opts.Templates.Thumbnail)
}

// Small returns the small rendition URL if the image exists.
func (i *Image) Small(ctx context.Context) (string, bool) {
	return i.derived(ctx, i.opts.Templates.Small)
}

// Full returns the full-size rendition URL if the image exists.
func (i *Image) Full(ctx context.Context) (string, bool) {
	return i.derived(ctx, i.opts.Templates.Full)
}

// URLs holds the derived rendition URLs of an image.
type URLs struct {
	Thumbnail string
	Small     string
	Full      string
}

// URLs probes once and returns every derived URL; all fields are empty
// when the image does not exist.
func (i *Image) URLs(ctx context.Context) (URLs, bool) {
	if !i.Exists(ctx) {
		return URLs{}, false
	}
	svc := i.ServiceURL()
	return URLs{
		Thumbnail: iiif.ImageURL(svc, i.opts.Templates.Thumbnail),
		Small:     iiif.ImageURL(svc, i.opts.Templates.Small),
		Full:      iiif.ImageURL(svc, i.opts.Templates.Full),
	}, true
}

func (i *Image) derived(ctx context.Context, template string) (string, bool) {
	if !i.Exists(ctx) {
		return "", false
	}
	return iiif.ImageURL(i.ServiceURL(), template), true
}

// Caption returns the first schema:caption of the image.
func (i *Image) Caption() (string, bool) {
	return i.first(aa.PredicateCaption)
}

// CreditText returns the first schema:creditText of the image.
func (i *Image) CreditText() (string, bool) {
	return i.first(aa.PredicateCreditText)
}

// Notes returns every crm:P3_has_note of the image.
func (i *Image) Notes() []string {
	return values(i.store.Objects(i.iri, graph.IRI(aa.PredicateNote)))
}

func (i *Image) first(predicate string) (string, bool) {
	v, ok := i.store.Value(i.iri, graph.IRI(predicate))
	if !ok {
		return "", false
	}
	return v.Value, true
}

func values(terms []graph.Term) []string {
	out := make([]string, len(terms))
	for n, t := range terms {
		out[n] = t.Value
	}
	return out
}
