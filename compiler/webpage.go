package compiler

import (
	"context"
	"fmt"
	"path"

	"github.com/perseus-aa/manifest-compiler/catalog"
)

// WebPageCompiler writes one HTML page per entity to
// <root>/<type-directory>/<id>.html, replacing existing pages. With
// Config.Markdown set it also writes <id>.md beside each page; the pair
// counts as one outcome.
type WebPageCompiler struct {
	catalog  *catalog.Catalog
	out      output
	markdown *MarkdownConverter
}

// NewWebPageCompiler creates a web page compiler. Entities render with the
// catalog's own renderer when it has one. Otherwise the configured page
// template becomes the catalog's renderer, so pages stay memoized on their
// entities.
func NewWebPageCompiler(cat *catalog.Catalog, cfg Config) (*WebPageCompiler, error) {
	c := &WebPageCompiler{catalog: cat, out: newOutput("pages", cfg)}
	if cat.Options().Pages == nil {
		renderer := NewPageRenderer()
		if cfg.PageTemplate != "" {
			r, err := ParsePageTemplate(cfg.PageTemplate)
			if err != nil {
				return nil, err
			}
			renderer = r
		}
		cat.SetPageRenderer(renderer)
	}
	if cfg.Markdown {
		c.markdown = NewMarkdownConverter()
	}
	return c, nil
}

// Name implements Compiler.
func (c *WebPageCompiler) Name() string { return "pages" }

// PageKey returns the output key of an entity's web page.
func PageKey(e *catalog.Entity) string {
	return path.Join(e.Type().Directory(), e.ID()+KindRegistry[KindWebPage].Extension)
}

// Compile implements Compiler.
func (c *WebPageCompiler) Compile(ctx context.Context) (Result, error) {
	res := Result{Compiler: c.Name()}
	for _, e := range c.catalog.Entities() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		outcome := OutcomeWritten
		if err := c.compileEntity(ctx, e); err != nil {
			c.out.logger.Error("Failed to compile web page", "id", e.ID(), "error", err)
			outcome = OutcomeFailed
		}
		c.out.record(&res, outcome)
	}
	c.out.done(res)
	return res, nil
}

func (c *WebPageCompiler) compileEntity(ctx context.Context, e *catalog.Entity) error {
	c.out.logger.Debug("Compiling web page", "id", e.ID())

	page, err := e.WebPage(ctx)
	if err != nil {
		return err
	}

	key := PageKey(e)
	if err := c.out.write(ctx, Artifact{Kind: KindWebPage, EntityID: e.ID(), Key: key}, []byte(page)); err != nil {
		return err
	}

	if c.markdown == nil {
		return nil
	}
	bucket, _ := Bucket(e.ID())
	text, err := c.markdown.Convert(page, FrontMatter{
		ID:       e.ID(),
		Type:     e.Type().String(),
		Series:   bucket,
		Manifest: e.ManifestID(),
	})
	if err != nil {
		return fmt.Errorf("convert %s to markdown: %w", key, err)
	}
	mdKey := path.Join(path.Dir(key), e.ID()+KindRegistry[KindMarkdown].Extension)
	return c.out.write(ctx, Artifact{Kind: KindMarkdown, EntityID: e.ID(), Key: mdKey}, []byte(text))
}
