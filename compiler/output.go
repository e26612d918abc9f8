package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

// output writes files under the configured root on behalf of one compiler
// and reports them to sinks and the recorder.
type output struct {
	name   string
	cfg    Config
	logger *slog.Logger
}

func newOutput(name string, cfg Config) output {
	return output{
		name:   name,
		cfg:    cfg,
		logger: cfg.logger().With("compiler", name),
	}
}

// path returns the filesystem path of a slash-separated key.
func (o output) path(key string) string {
	return filepath.Join(o.cfg.Root, filepath.FromSlash(key))
}

// exists reports whether key is already present under the root.
func (o output) exists(key string) bool {
	_, err := os.Stat(o.path(key))
	return err == nil
}

// write stores data under a.Key, then publishes a to every sink.
func (o output) write(ctx context.Context, a Artifact, data []byte) error {
	p := o.path(a.Key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", a.Key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", a.Key, err)
	}

	a.Path = p
	a.Key = path.Clean(a.Key)
	a.Size = len(data)
	a.RunID = o.cfg.RunID
	if a.ContentType == "" {
		if info, ok := GetKindInfo(a.Kind); ok {
			a.ContentType = info.MIMEType
		}
	}

	for _, sink := range o.cfg.Sinks {
		if err := sink.Publish(ctx, a); err != nil {
			o.logger.Warn("Failed to publish artifact", "key", a.Key, "error", err)
		}
	}
	return nil
}

// record counts an outcome in res and in the recorder.
func (o output) record(res *Result, outcome Outcome) {
	res.count(outcome)
	if o.cfg.Recorder != nil {
		o.cfg.Recorder.RecordOutcome(o.name, outcome)
	}
}

// done logs the summary of a run.
func (o output) done(res Result) {
	o.logger.Info("Compile finished",
		"written", res.Written,
		"skipped", res.Skipped,
		"failed", res.Failed)
}
