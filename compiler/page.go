package compiler

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/perseus-aa/manifest-compiler/catalog"
)

//go:embed templates/artifact.html
var artifactTemplate string

// PageData is the value the page template is executed with.
type PageData struct {
	ID          string
	Bucket      string
	Label       string
	Type        string
	Directory   string
	Thumbnail   string
	ManifestURL string
	Properties  []catalog.Property
}

// PageRenderer renders artifact pages from an HTML template. It implements
// catalog.PageRenderer.
type PageRenderer struct {
	tmpl *template.Template
}

// NewPageRenderer returns a renderer using the embedded artifact template.
func NewPageRenderer() *PageRenderer {
	return &PageRenderer{
		tmpl: template.Must(template.New("artifact.html").Parse(artifactTemplate)),
	}
}

// ParsePageTemplate returns a renderer using the template file at path.
func ParsePageTemplate(path string) (*PageRenderer, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page template: %w", err)
	}
	tmpl, err := template.New("artifact.html").Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("parse page template %s: %w", path, err)
	}
	return &PageRenderer{tmpl: tmpl}, nil
}

// Data collects the template data of an entity. The thumbnail is listed
// separately and left out of Properties.
func Data(ctx context.Context, e *catalog.Entity) PageData {
	// Identifiers without a numeric suffix still get a page.
	bucket, _ := Bucket(e.ID())
	thumb, _ := e.Thumbnail(ctx)

	var props []catalog.Property
	for _, p := range e.Properties(ctx) {
		if p.Key == catalog.ThumbnailKey {
			continue
		}
		props = append(props, p)
	}

	return PageData{
		ID:          e.ID(),
		Bucket:      bucket,
		Label:       e.Label(),
		Type:        e.Type().String(),
		Directory:   e.Type().Directory(),
		Thumbnail:   thumb,
		ManifestURL: e.ManifestID(),
		Properties:  props,
	}
}

// RenderPage implements catalog.PageRenderer.
func (r *PageRenderer) RenderPage(ctx context.Context, e *catalog.Entity) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, Data(ctx, e)); err != nil {
		return "", fmt.Errorf("execute page template: %w", err)
	}
	return sb.String(), nil
}
