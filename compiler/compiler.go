package compiler

import (
	"context"
	"fmt"
	"sort"

	"github.com/perseus-aa/manifest-compiler/catalog"
)

// Compiler produces one kind of output from a catalog.
type Compiler interface {
	// Name identifies the compiler on the command line and in metrics.
	Name() string

	// Compile writes every output file. Per-entity failures are counted in
	// the Result; the error is reserved for failures that stop the run,
	// such as a cancelled context.
	Compile(ctx context.Context) (Result, error)
}

// Factory creates a compiler over a catalog.
type Factory func(cat *catalog.Catalog, cfg Config) (Compiler, error)

var registry = map[string]Factory{
	"manifests": func(cat *catalog.Catalog, cfg Config) (Compiler, error) {
		return NewManifestCompiler(cat, cfg), nil
	},
	"pages": func(cat *catalog.Catalog, cfg Config) (Compiler, error) {
		return NewWebPageCompiler(cat, cfg)
	},
	"entity-table": func(cat *catalog.Catalog, cfg Config) (Compiler, error) {
		return NewEntityTableCompiler(cat, cfg), nil
	},
	"image-table": func(cat *catalog.Catalog, cfg Config) (Compiler, error) {
		return NewImageTableCompiler(cat, cfg), nil
	},
	"props": func(cat *catalog.Catalog, cfg Config) (Compiler, error) {
		return NewPropsCompiler(cat, cfg), nil
	},
	"dump": func(cat *catalog.Catalog, cfg Config) (Compiler, error) {
		return NewDumpCompiler(cat, cfg), nil
	},
}

// DefaultOrder is the order "all" runs compilers in. Pages run after
// manifests and reuse the thumbnails entities cached while building them.
var DefaultOrder = []string{"manifests", "pages", "entity-table", "image-table", "props"}

// Names returns every registered compiler name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup creates the compiler registered under name.
func Lookup(name string, cat *catalog.Catalog, cfg Config) (Compiler, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompiler, name)
	}
	return factory(cat, cfg)
}

// Run executes compilers in order and returns their results. It stops at
// the first compiler that returns an error.
func Run(ctx context.Context, compilers ...Compiler) ([]Result, error) {
	results := make([]Result, 0, len(compilers))
	for _, c := range compilers {
		res, err := c.Compile(ctx)
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("compile %s: %w", c.Name(), err)
		}
	}
	return results, nil
}
