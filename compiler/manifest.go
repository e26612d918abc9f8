package compiler

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/perseus-aa/manifest-compiler/catalog"
)

// ManifestCompiler writes one IIIF manifest per entity to
// <root>/<bucket>/<id>.json. Existing files are left alone, so repeated
// runs only fill in what is missing.
type ManifestCompiler struct {
	catalog *catalog.Catalog
	out     output
}

// NewManifestCompiler creates a manifest compiler.
func NewManifestCompiler(cat *catalog.Catalog, cfg Config) *ManifestCompiler {
	return &ManifestCompiler{catalog: cat, out: newOutput("manifests", cfg)}
}

// Name implements Compiler.
func (c *ManifestCompiler) Name() string { return "manifests" }

// ManifestKey returns the output key of an entity's manifest.
func ManifestKey(id string) (string, error) {
	bucket, err := Bucket(id)
	if err != nil {
		return "", err
	}
	return path.Join(bucket, id+KindRegistry[KindManifest].Extension), nil
}

// Compile implements Compiler.
func (c *ManifestCompiler) Compile(ctx context.Context) (Result, error) {
	res := Result{Compiler: c.Name()}
	for _, e := range c.catalog.Entities() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		outcome, err := c.CompileEntity(ctx, e)
		switch {
		case errors.Is(err, ErrNoImages):
			c.out.logger.Warn("Entity has no images, skipping manifest", "id", e.ID())
		case err != nil:
			c.out.logger.Error("Failed to compile manifest", "id", e.ID(), "error", err)
		}
		c.out.record(&res, outcome)
	}
	c.out.done(res)
	return res, nil
}

// CompileEntity writes the manifest of one entity. An existing file is
// reported as skipped before any image is probed.
func (c *ManifestCompiler) CompileEntity(ctx context.Context, e *catalog.Entity) (Outcome, error) {
	key, err := ManifestKey(e.ID())
	if err != nil {
		return OutcomeFailed, err
	}
	if c.out.exists(key) {
		c.out.logger.Info("Skipping existing manifest", "id", e.ID(), "key", key)
		return OutcomeSkipped, nil
	}
	if len(e.Images()) == 0 {
		return OutcomeSkipped, fmt.Errorf("%s: %w", e.ID(), ErrNoImages)
	}

	c.out.logger.Debug("Compiling manifest", "id", e.ID())
	data, err := e.Manifest(ctx).JSON()
	if err != nil {
		return OutcomeFailed, err
	}
	if err := c.out.write(ctx, Artifact{Kind: KindManifest, EntityID: e.ID(), Key: key}, data); err != nil {
		return OutcomeFailed, err
	}
	c.out.logger.Info("Wrote manifest", "id", e.ID(), "key", key)
	return OutcomeWritten, nil
}

// CompileOne writes the manifest of the entity with the given identifier.
func (c *ManifestCompiler) CompileOne(ctx context.Context, id string) (Outcome, error) {
	e, err := c.catalog.EntityByID(id)
	if err != nil {
		return OutcomeFailed, err
	}
	outcome, err := c.CompileEntity(ctx, e)
	if c.out.cfg.Recorder != nil {
		c.out.cfg.Recorder.RecordOutcome(c.Name(), outcome)
	}
	return outcome, err
}
