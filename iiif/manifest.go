package iiif

import (
	"encoding/json"
	"fmt"
)

// PresentationContext is the JSON-LD context of Presentation 3 documents.
const PresentationContext = "http://iiif.io/api/presentation/3/context.json"

// LanguageMap maps a language tag to one or more strings.
type LanguageMap map[string][]string

// NewLanguageMap returns a map holding a single value.
func NewLanguageMap(lang, value string) LanguageMap {
	return LanguageMap{lang: {value}}
}

// KeyValue is a metadata entry.
type KeyValue struct {
	Label LanguageMap `json:"label"`
	Value LanguageMap `json:"value"`
}

// Service references an image service.
type Service struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Profile string `json:"profile,omitempty"`
}

// Resource is an image content resource.
type Resource struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Format  string    `json:"format,omitempty"`
	Width   int       `json:"width,omitempty"`
	Height  int       `json:"height,omitempty"`
	Service []Service `json:"service,omitempty"`
}

// Annotation paints a resource onto a canvas.
type Annotation struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Motivation string   `json:"motivation"`
	Body       Resource `json:"body"`
	Target     string   `json:"target"`
}

// AnnotationPage groups annotations.
type AnnotationPage struct {
	ID    string       `json:"id"`
	Type  string       `json:"type"`
	Items []Annotation `json:"items"`
}

// Canvas is one view of the object.
type Canvas struct {
	ID     string           `json:"id"`
	Type   string           `json:"type"`
	Label  LanguageMap      `json:"label,omitempty"`
	Width  int              `json:"width,omitempty"`
	Height int              `json:"height,omitempty"`
	Items  []AnnotationPage `json:"items"`
}

// AddLabel appends a localized label value.
func (c *Canvas) AddLabel(lang, value string) {
	if c.Label == nil {
		c.Label = LanguageMap{}
	}
	c.Label[lang] = append(c.Label[lang], value)
}

// Manifest is a IIIF Presentation 3 manifest.
type Manifest struct {
	Context   string      `json:"@context"`
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Label     LanguageMap `json:"label"`
	Metadata  []KeyValue  `json:"metadata,omitempty"`
	Thumbnail []Resource  `json:"thumbnail,omitempty"`
	Items     []*Canvas   `json:"items"`

	lang string
	seq  int
}

// NewManifest creates an empty manifest. lang is used for the label and
// for every localized value added later.
func NewManifest(id, lang, label string) *Manifest {
	return &Manifest{
		Context: PresentationContext,
		ID:      id,
		Type:    "Manifest",
		Label:   NewLanguageMap(lang, label),
		Items:   []*Canvas{},
		lang:    lang,
	}
}

// Language returns the manifest's default language.
func (m *Manifest) Language() string { return m.lang }

// AddMetadata appends a label/value pair.
func (m *Manifest) AddMetadata(label, value string) {
	m.Metadata = append(m.Metadata, KeyValue{
		Label: NewLanguageMap(m.lang, label),
		Value: NewLanguageMap(m.lang, value),
	})
}

// AddThumbnail sets a thumbnail rendition backed by an image service.
func (m *Manifest) AddThumbnail(url, serviceURL string) {
	m.Thumbnail = append(m.Thumbnail, Resource{
		ID:      url,
		Type:    "Image",
		Format:  FormatOf(url),
		Service: []Service{imageService(serviceURL)},
	})
}

// NewCanvas creates a canvas painted with the image behind serviceURL.
// info may be nil, in which case the canvas carries no dimensions. The
// canvas is not added to the manifest.
func (m *Manifest) NewCanvas(serviceURL, fullTemplate string, info *ImageInfo) *Canvas {
	m.seq++
	canvasID := fmt.Sprintf("%s/canvas/%d", m.ID, m.seq)

	var width, height int
	if info != nil {
		width, height = info.Width, info.Height
	}

	return &Canvas{
		ID:     canvasID,
		Type:   "Canvas",
		Width:  width,
		Height: height,
		Items: []AnnotationPage{{
			ID:   canvasID + "/page",
			Type: "AnnotationPage",
			Items: []Annotation{{
				ID:         canvasID + "/page/annotation",
				Type:       "Annotation",
				Motivation: "painting",
				Body: Resource{
					ID:      ImageURL(serviceURL, fullTemplate),
					Type:    "Image",
					Format:  FormatOf(fullTemplate),
					Width:   width,
					Height:  height,
					Service: []Service{imageService(serviceURL)},
				},
				Target: canvasID,
			}},
		}},
	}
}

// AddItem appends a canvas.
func (m *Manifest) AddItem(c *Canvas) {
	m.Items = append(m.Items, c)
}

// JSON returns the manifest as indented JSON.
func (m *Manifest) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

func imageService(serviceURL string) Service {
	return Service{ID: serviceURL, Type: "ImageService3", Profile: "level1"}
}
