package compiler

import (
	"bytes"
	"context"
	"fmt"

	"github.com/perseus-aa/manifest-compiler/catalog"
	"github.com/perseus-aa/manifest-compiler/graph"
)

// DumpCompiler writes the merged graph to graph.<ext> in Config.DumpFormat.
type DumpCompiler struct {
	catalog *catalog.Catalog
	out     output
	format  graph.Format
}

// NewDumpCompiler creates a graph dump compiler.
func NewDumpCompiler(cat *catalog.Catalog, cfg Config) *DumpCompiler {
	format := cfg.DumpFormat
	if format == "" {
		format = graph.FormatTurtle
	}
	return &DumpCompiler{catalog: cat, out: newOutput("dump", cfg), format: format}
}

// Name implements Compiler.
func (c *DumpCompiler) Name() string { return "dump" }

// Key returns the output key of the dump.
func (c *DumpCompiler) Key() string {
	info, _ := graph.GetFormatInfo(c.format)
	ext := ".ttl"
	if len(info.Extensions) > 0 {
		ext = info.Extensions[0]
	}
	return DumpBaseName + ext
}

// Compile implements Compiler.
func (c *DumpCompiler) Compile(ctx context.Context) (Result, error) {
	res := Result{Compiler: c.Name()}

	var buf bytes.Buffer
	if err := c.catalog.Store().Dump(&buf, c.format); err != nil {
		c.out.record(&res, OutcomeFailed)
		return res, fmt.Errorf("dump graph: %w", err)
	}

	info, _ := graph.GetFormatInfo(c.format)
	key := c.Key()
	if err := c.out.write(ctx, Artifact{Kind: KindDump, Key: key, ContentType: info.MIMEType}, buf.Bytes()); err != nil {
		c.out.record(&res, OutcomeFailed)
		return res, err
	}
	c.out.record(&res, OutcomeWritten)
	c.out.logger.Info("Wrote graph dump", "key", key, "triples", c.catalog.Store().Len())
	return res, nil
}
