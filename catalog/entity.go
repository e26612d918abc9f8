package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/perseus-aa/manifest-compiler/graph"
	"github.com/perseus-aa/manifest-compiler/iiif"
	"github.com/perseus-aa/manifest-compiler/vocabulary/aa"
)

// Property is one parsed note, in graph order.
type Property struct {
	Key   string
	Value string
}

// Entity is a read-only view of one artifact. Derived fields are computed
// on first access and kept for the life of the Entity.
type Entity struct {
	iri   graph.Term
	store *graph.Store
	opts  *Options

	typeDone bool
	typeIRI  string

	images []*Image

	thumbDone bool
	thumbnail string

	props []Property

	manifest *iiif.Manifest
	webPage  *string
}

func newEntity(iri string, store *graph.Store, opts *Options) *Entity {
	return &Entity{iri: graph.IRI(iri), store: store, opts: opts}
}

// IRI returns the subject IRI of the entity.
func (e *Entity) IRI() string { return e.iri.Value }

// ID returns the last path segment of the subject IRI.
func (e *Entity) ID() string { return lastSegment(e.iri.Value) }

// TypeIRI returns the first rdf:type that is not a generic class, or "".
// If several remain, the first in graph order wins and a warning is logged.
func (e *Entity) TypeIRI() string {
	if e.typeDone {
		return e.typeIRI
	}
	e.typeDone = true

	var candidates []string
	for _, t := range e.store.Objects(e.iri, graph.IRI(aa.PredicateType)) {
		if !t.IsIRI() || aa.IsGenericClass(t.Value) {
			continue
		}
		candidates = append(candidates, t.Value)
	}

	switch len(candidates) {
	case 0:
		e.opts.Logger.Debug("Entity has no artifact type", "id", e.ID())
	case 1:
		e.typeIRI = candidates[0]
	default:
		e.typeIRI = candidates[0]
		e.opts.Logger.Warn("Entity has several artifact types, using the first",
			"id", e.ID(),
			"chosen", candidates[0],
			"candidates", candidates)
	}
	return e.typeIRI
}

// Type returns the artifact subtype.
func (e *Entity) Type() aa.ArtifactType {
	return aa.ArtifactTypeFromIRI(e.TypeIRI())
}

// Label returns the first rdfs:label, or NoLabel.
func (e *Entity) Label() string {
	v, ok := e.store.Value(e.iri, graph.IRI(aa.PredicateLabel))
	if !ok {
		return NoLabel
	}
	return v.Value
}

// Notes returns the raw crm:P3_has_note values.
func (e *Entity) Notes() []string {
	return values(e.store.Objects(e.iri, graph.IRI(aa.PredicateNote)))
}

// Images returns the images representing the entity.
func (e *Entity) Images() []*Image {
	if e.images == nil {
		objs := e.store.Objects(e.iri, graph.IRI(aa.PredicateRepresentedBy))
		e.images = make([]*Image, 0, len(objs))
		for _, o := range objs {
			e.images = append(e.images, &Image{iri: o, store: e.store, opts: e.opts})
		}
	}
	return e.images
}

// Thumbnail returns the thumbnail URL of the first image, provided that
// image exists.
func (e *Entity) Thumbnail(ctx context.Context) (string, bool) {
	if !e.thumbDone {
		e.thumbDone = true
		if images := e.Images(); len(images) > 0 {
			e.thumbnail, _ = images[0].Thumbnail(ctx)
		}
	}
	return e.thumbnail, e.thumbnail != ""
}

// Properties returns the entity's properties in graph order. The thumbnail,
// when derivable, comes first under ThumbnailKey. A later note with the
// same key replaces the value in place.
func (e *Entity) Properties(ctx context.Context) []Property {
	if e.props != nil {
		return e.props
	}

	props := make([]Property, 0)
	index := make(map[string]int)
	set := func(k, v string) {
		if i, ok := index[k]; ok {
			props[i].Value = v
			return
		}
		index[k] = len(props)
		props = append(props, Property{Key: k, Value: v})
	}

	if thumb, ok := e.Thumbnail(ctx); ok {
		set(ThumbnailKey, thumb)
	}
	for _, note := range e.Notes() {
		k, v, ok := ParseNote(note)
		if !ok {
			e.opts.Logger.Warn("Skipping malformed note", "id", e.ID(), "note", note)
			continue
		}
		set(k, v)
	}

	e.props = props
	return e.props
}

// Props returns the entity's properties as a map.
func (e *Entity) Props(ctx context.Context) map[string]string {
	out := make(map[string]string)
	for _, p := range e.Properties(ctx) {
		out[p.Key] = p.Value
	}
	return out
}

// ParseNote splits a "key: value" note on its colon. The value is trimmed;
// the key is kept as written. Notes without exactly one colon are rejected.
func ParseNote(note string) (key, value string, ok bool) {
	if strings.Count(note, ":") != 1 {
		return "", "", false
	}
	k, v, _ := strings.Cut(note, ":")
	return k, strings.TrimSpace(v), true
}

// ManifestID returns the identifier the entity's manifest is published under.
func (e *Entity) ManifestID() string {
	return strings.TrimRight(e.opts.ManifestBaseURL, "/") + "/" + e.ID()
}

// Manifest builds the entity's IIIF manifest: label, metadata from
// Properties, a thumbnail, and one canvas per image that passes its probe.
func (e *Entity) Manifest(ctx context.Context) *iiif.Manifest {
	if e.manifest != nil {
		return e.manifest
	}

	lang := e.opts.Language
	m := iiif.NewManifest(e.ManifestID(), lang, e.Label())
	for _, p := range e.Properties(ctx) {
		m.AddMetadata(p.Key, p.Value)
	}

	images := e.Images()
	if thumb, ok := e.Thumbnail(ctx); ok {
		m.AddThumbnail(thumb, images[0].ServiceURL())
	}

	for _, img := range images {
		info, ok := img.Info(ctx)
		if !ok {
			e.opts.Logger.Info("Image not found", "id", e.ID(), "image", img.IRI())
			continue
		}
		canvas := m.NewCanvas(img.ServiceURL(), e.opts.Templates.Full, info)
		for _, label := range canvasLabels(img) {
			canvas.AddLabel(lang, label)
		}
		m.AddItem(canvas)
	}

	e.manifest = m
	return m
}

// canvasLabels returns the caption and credit of an image, falling back to
// its notes when it has neither.
func canvasLabels(img *Image) []string {
	var labels []string
	if c, ok := img.Caption(); ok {
		labels = append(labels, c)
	}
	if c, ok := img.CreditText(); ok {
		labels = append(labels, c)
	}
	if len(labels) == 0 {
		labels = img.Notes()
	}
	return labels
}

// WebPage renders the entity's web page with the configured renderer.
func (e *Entity) WebPage(ctx context.Context) (string, error) {
	if e.webPage != nil {
		return *e.webPage, nil
	}
	if e.opts.Pages == nil {
		return "", ErrNoRenderer
	}
	page, err := e.opts.Pages.RenderPage(ctx, e)
	if err != nil {
		return "", fmt.Errorf("render page for %s: %w", e.ID(), err)
	}
	e.webPage = &page
	return page, nil
}

func lastSegment(iri string) string {
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}
