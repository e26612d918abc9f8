package compiler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/perseus-aa/manifest-compiler/catalog"
)

// PropsCompiler writes props.json: the properties of every entity that has
// any, keyed by identifier.
type PropsCompiler struct {
	catalog *catalog.Catalog
	out     output
}

// NewPropsCompiler creates a property index compiler.
func NewPropsCompiler(cat *catalog.Catalog, cfg Config) *PropsCompiler {
	return &PropsCompiler{catalog: cat, out: newOutput("props", cfg)}
}

// Name implements Compiler.
func (c *PropsCompiler) Name() string { return "props" }

// Compile implements Compiler.
func (c *PropsCompiler) Compile(ctx context.Context) (Result, error) {
	res := Result{Compiler: c.Name()}

	props := c.catalog.Props(ctx)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	data, err := json.MarshalIndent(props, "", "  ")
	if err != nil {
		c.out.record(&res, OutcomeFailed)
		return res, fmt.Errorf("marshal props: %w", err)
	}
	data = append(data, '\n')

	if err := c.out.write(ctx, Artifact{Kind: KindProps, Key: PropsFile}, data); err != nil {
		c.out.record(&res, OutcomeFailed)
		return res, err
	}
	c.out.record(&res, OutcomeWritten)
	c.out.logger.Info("Wrote property index", "key", PropsFile, "entities", len(props))
	return res, nil
}
