package compiler

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/perseus-aa/manifest-compiler/catalog"
	"github.com/perseus-aa/manifest-compiler/iiif"
)

// Table column schemas.
var (
	EntityTableColumns = []string{
		"objectid", "title", "object_location", "image_small", "image_thumb",
		"display_template", "format", "description", "source", "type",
	}
	ImageTableColumns = []string{
		"objectid", "parentid", "title", "image_alt_text", "object_location",
		"image_small", "image_thumb", "display_template", "format",
		"description", "source", "type",
	}
)

// Values of the display_template, format and type columns.
const (
	TemplateCompound = "compound_object"
	TemplateImage    = "image"
	TemplateRecord   = "record"

	TypePhysicalObject = "Physical Object"
	TypeStillImage     = "Image;StillImage"
)

// EntityTableCompiler writes entity_table.csv: one row per entity of the
// configured type. Image columns come from the entity's first image and
// are blank when that image fails its probe.
type EntityTableCompiler struct {
	catalog *catalog.Catalog
	out     output
}

// NewEntityTableCompiler creates an entity table compiler.
func NewEntityTableCompiler(cat *catalog.Catalog, cfg Config) *EntityTableCompiler {
	return &EntityTableCompiler{catalog: cat, out: newOutput("entity-table", cfg)}
}

// Name implements Compiler.
func (c *EntityTableCompiler) Name() string { return "entity-table" }

// Compile implements Compiler.
func (c *EntityTableCompiler) Compile(ctx context.Context) (Result, error) {
	rows := [][]string{EntityTableColumns}
	for e := range c.catalog.EntitiesByType(c.out.cfg.TableType) {
		if err := ctx.Err(); err != nil {
			return Result{Compiler: c.Name()}, err
		}
		rows = append(rows, c.row(ctx, e))
	}
	return writeTable(ctx, c.out, c.Name(), KindEntityTable, EntityTableFile, rows)
}

func (c *EntityTableCompiler) row(ctx context.Context, e *catalog.Entity) []string {
	images := e.Images()

	var urls catalog.URLs
	var source string
	if len(images) > 0 {
		urls, _ = images[0].URLs(ctx)
		source, _ = images[0].CreditText()
	}

	template, format := TemplateRecord, TemplateRecord
	switch {
	case len(images) > 1:
		template, format = TemplateCompound, TemplateCompound
	case len(images) == 1:
		template, format = TemplateImage, iiif.FormatOf(c.catalog.Options().Templates.Full)
	}

	return []string{
		e.ID(),
		e.Label(),
		urls.Full,
		urls.Small,
		urls.Thumbnail,
		template,
		format,
		describe(e.Properties(ctx)),
		source,
		TypePhysicalObject,
	}
}

// ImageTableCompiler writes image_table.csv: one row per image of every
// entity of the configured type.
type ImageTableCompiler struct {
	catalog *catalog.Catalog
	out     output
}

// NewImageTableCompiler creates an image table compiler.
func NewImageTableCompiler(cat *catalog.Catalog, cfg Config) *ImageTableCompiler {
	return &ImageTableCompiler{catalog: cat, out: newOutput("image-table", cfg)}
}

// Name implements Compiler.
func (c *ImageTableCompiler) Name() string { return "image-table" }

// Compile implements Compiler.
func (c *ImageTableCompiler) Compile(ctx context.Context) (Result, error) {
	format := iiif.FormatOf(c.catalog.Options().Templates.Full)
	rows := [][]string{ImageTableColumns}
	for e := range c.catalog.EntitiesByType(c.out.cfg.TableType) {
		for _, img := range e.Images() {
			if err := ctx.Err(); err != nil {
				return Result{Compiler: c.Name()}, err
			}
			urls, ok := img.URLs(ctx)
			if !ok {
				c.out.logger.Info("Image not found", "id", e.ID(), "image", img.IRI())
			}
			caption, _ := img.Caption()
			credit, _ := img.CreditText()
			notes := strings.Join(img.Notes(), "; ")

			title := caption
			if title == "" {
				title = e.Label()
			}
			alt := caption
			if alt == "" {
				alt = notes
			}

			rows = append(rows, []string{
				img.ID(),
				e.ID(),
				title,
				alt,
				urls.Full,
				urls.Small,
				urls.Thumbnail,
				TemplateImage,
				format,
				notes,
				credit,
				TypeStillImage,
			})
		}
	}
	return writeTable(ctx, c.out, c.Name(), KindImageTable, ImageTableFile, rows)
}

// describe joins properties into "key: value; key: value", leaving out the
// thumbnail.
func describe(props []catalog.Property) string {
	parts := make([]string, 0, len(props))
	for _, p := range props {
		if p.Key == catalog.ThumbnailKey {
			continue
		}
		parts = append(parts, p.Key+": "+p.Value)
	}
	return strings.Join(parts, "; ")
}

func writeTable(ctx context.Context, out output, name string, kind Kind, file string, rows [][]string) (Result, error) {
	res := Result{Compiler: name}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		out.record(&res, OutcomeFailed)
		return res, fmt.Errorf("encode %s: %w", file, err)
	}
	if err := out.write(ctx, Artifact{Kind: kind, Key: file}, buf.Bytes()); err != nil {
		out.record(&res, OutcomeFailed)
		return res, err
	}
	out.record(&res, OutcomeWritten)
	out.logger.Info("Wrote table", "key", file, "rows", len(rows)-1, "type", out.cfg.TableType)
	return res, nil
}
