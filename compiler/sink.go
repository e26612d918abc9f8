package compiler

import "context"

// Artifact describes one file a compiler wrote.
type Artifact struct {
	// Kind is the class of output.
	Kind Kind `json:"kind"`

	// EntityID is the artifact the file describes; empty for tables,
	// property indexes and dumps.
	EntityID string `json:"entity_id,omitempty"`

	// Path is the file on disk.
	Path string `json:"-"`

	// Key is the path relative to the output root, slash separated.
	Key string `json:"key"`

	// ContentType is the MIME type of the file.
	ContentType string `json:"content_type"`

	// Size is the file size in bytes.
	Size int `json:"size"`

	// RunID identifies the compile run.
	RunID string `json:"run_id,omitempty"`
}

// Sink receives written artifacts. Sink failures are logged and never
// fail the compile.
type Sink interface {
	Publish(ctx context.Context, a Artifact) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, a Artifact) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, a Artifact) error { return f(ctx, a) }
