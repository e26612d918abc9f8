package iiif

import (
	"mime"
	"path"
	"strings"
)

// Default IIIF Image API request templates (region/size/rotation/quality.format).
const (
	DefaultThumbnailTemplate = "full/pct:20/0/default.png"
	DefaultSmallTemplate     = "full/pct:50/0/default.png"
	DefaultFullTemplate      = "full/max/0/default.png"
)

// Templates holds the request templates appended to an image service URL.
type Templates struct {
	Thumbnail string `yaml:"thumbnail"`
	Small     string `yaml:"small"`
	Full      string `yaml:"full"`
}

// DefaultTemplates returns the default request templates.
func DefaultTemplates() Templates {
	return Templates{
		Thumbnail: DefaultThumbnailTemplate,
		Small:     DefaultSmallTemplate,
		Full:      DefaultFullTemplate,
	}
}

// WithDefaults fills empty templates from DefaultTemplates.
func (t Templates) WithDefaults() Templates {
	d := DefaultTemplates()
	if t.Thumbnail == "" {
		t.Thumbnail = d.Thumbnail
	}
	if t.Small == "" {
		t.Small = d.Small
	}
	if t.Full == "" {
		t.Full = d.Full
	}
	return t
}

// ImageURL joins a service URL and a request template.
func ImageURL(serviceURL, template string) string {
	return strings.TrimRight(serviceURL, "/") + "/" + strings.TrimLeft(template, "/")
}

// InfoURL returns the info.json URL of an image service.
func InfoURL(serviceURL string) string {
	return ImageURL(serviceURL, "info.json")
}

// FormatOf returns the MIME type implied by a template's format suffix,
// defaulting to image/jpeg.
func FormatOf(template string) string {
	ext := path.Ext(template)
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case "":
		return "image/jpeg"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "image/" + strings.TrimPrefix(ext, ".")
}

// Rebase moves an image IRI from the canonical namespace onto base. IRIs
// outside the namespace, or an empty base, are returned unchanged.
func Rebase(iri, namespace, base string) string {
	if base == "" || namespace == "" || !strings.HasPrefix(iri, namespace) {
		return iri
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimPrefix(iri, namespace)
}
