package compiler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/perseus-aa/manifest-compiler/graph"
	"github.com/perseus-aa/manifest-compiler/vocabulary/aa"
)

// Default output file names, relative to Config.Root.
const (
	EntityTableFile = "entity_table.csv"
	ImageTableFile  = "image_table.csv"
	PropsFile       = "props.json"
	DumpBaseName    = "graph"
)

// Config is shared by every compiler. Manifest base URL, language and image
// templates travel with the catalog's Options, which entities derive their
// fields from.
type Config struct {
	// Root is the output directory.
	Root string

	// Markdown also writes a Markdown rendition next to every web page.
	Markdown bool

	// TableType selects the artifacts the CSV tables cover.
	TableType aa.ArtifactType

	// DumpFormat is the serialization of the graph dump.
	DumpFormat graph.Format

	// PageTemplate, when set, replaces the embedded page template.
	PageTemplate string

	// RunID tags log lines and published artifacts.
	RunID string

	// Sinks receive every written file.
	Sinks []Sink

	// Recorder counts outcomes. Optional.
	Recorder Recorder

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Root:       "output",
		TableType:  aa.ArtifactTypeVase,
		DumpFormat: graph.FormatTurtle,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Root == "" {
		return errors.New("output root is required")
	}
	if c.DumpFormat != "" {
		info, ok := graph.GetFormatInfo(c.DumpFormat)
		if !ok || !info.Writable {
			return fmt.Errorf("dump format %q is not writable", c.DumpFormat)
		}
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	l := c.Logger
	if l == nil {
		l = slog.Default()
	}
	if c.RunID != "" {
		l = l.With("run_id", c.RunID)
	}
	return l
}
