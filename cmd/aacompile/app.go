package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/perseus-aa/manifest-compiler/catalog"
	"github.com/perseus-aa/manifest-compiler/compiler"
	"github.com/perseus-aa/manifest-compiler/config"
	"github.com/perseus-aa/manifest-compiler/iiif"
	"github.com/perseus-aa/manifest-compiler/metrics"
	"github.com/perseus-aa/manifest-compiler/publish"
	"github.com/perseus-aa/manifest-compiler/watch"
)

// App wires the catalog, compilers, sinks and metrics together.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	// catalog is replaced as a whole by every successful LoadGraph.
	catalog     *catalog.Catalog
	catalogOpts catalog.Options
	metrics     *metrics.Metrics

	// Sinks
	uploader *publish.Uploader
	notifier *publish.Notifier

	// Graph directories found by the last LoadGraph
	dirs  []string
	files int
}

// NewApp creates a new application instance. Nothing is loaded or
// connected until LoadGraph and Connect are called.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m := metrics.New()

	var pages catalog.PageRenderer = compiler.NewPageRenderer()
	if cfg.Output.PageTemplate != "" {
		r, err := compiler.ParsePageTemplate(cfg.Output.PageTemplate)
		if err != nil {
			return nil, fmt.Errorf("load page template: %w", err)
		}
		pages = r
	}

	prober := iiif.NewClient(iiif.ClientConfig{
		Timeout:   cfg.IIIF.Timeout,
		UserAgent: cfg.IIIF.UserAgent,
		Observer:  m,
		Logger:    logger,
	})

	opts := catalog.Options{
		Prober:          prober,
		Templates:       cfg.IIIF.Templates,
		ImageNamespace:  cfg.IIIF.ImageNamespace,
		ImageBaseURL:    cfg.IIIF.ImageBaseURL,
		ManifestBaseURL: cfg.IIIF.ManifestBaseURL,
		Language:        cfg.IIIF.Language,
		Pages:           pages,
		Logger:          logger,
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		catalog:     catalog.New(opts),
		catalogOpts: opts,
		metrics:     m,
	}, nil
}

// Catalog returns the application's catalog.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// Metrics returns the application's metrics.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Connect sets up the configured sinks: the S3 uploader (creating the
// bucket when missing) and the NATS notifier.
func (a *App) Connect(ctx context.Context) error {
	if a.cfg.Publish.S3.Enabled() {
		u, err := publish.NewUploader(a.cfg.Publish.S3, a.logger)
		if err != nil {
			return fmt.Errorf("create uploader: %w", err)
		}
		if err := u.Init(ctx); err != nil {
			return fmt.Errorf("init bucket: %w", err)
		}
		a.uploader = u
	}

	if a.cfg.Publish.NATS.Enabled() {
		n, err := publish.Connect(a.cfg.Publish.NATS, a.logger)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		a.notifier = n
	}
	return nil
}

// Close releases the NATS connection, if any.
func (a *App) Close() {
	if a.notifier != nil {
		if err := a.notifier.Close(); err != nil {
			a.logger.Warn("Failed to close NATS connection", "error", err)
		}
	}
}

// sinks returns the artifact sinks in publish order: objects are uploaded
// before they are announced.
func (a *App) sinks() []compiler.Sink {
	var sinks []compiler.Sink
	if a.uploader != nil {
		sinks = append(sinks, a.uploader)
	}
	if a.notifier != nil {
		sinks = append(sinks, a.notifier)
	}
	return sinks
}

// LoadGraph loads every configured graph directory into a new catalog.
// Missing directories are skipped with a warning. The new catalog replaces
// the current one only when every file parsed; on error the app keeps
// compiling from the last good graph.
func (a *App) LoadGraph() error {
	cat := catalog.New(a.catalogOpts)
	var dirs []string
	files := 0

	for _, dir := range a.cfg.Graph.Dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			a.logger.Warn("Graph directory not found, skipping", "dir", dir)
			continue
		}
		n, err := cat.LoadAll(dir, a.cfg.Graph.Patterns...)
		files += n
		if err != nil {
			return err
		}
		dirs = append(dirs, dir)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("%w: no graph directory found in %v", config.ErrInvalid, a.cfg.Graph.Dirs)
	}

	a.catalog = cat
	a.dirs = dirs
	a.files = files

	byType := make(map[string]int)
	for _, e := range cat.Entities() {
		byType[e.Type().String()]++
	}
	a.metrics.UpdateGraphStats(files, cat.Store().Len(), byType)

	a.logger.Info("Graph loaded",
		"files", files,
		"triples", cat.Store().Len(),
		"entities", len(cat.Entities()))
	return nil
}

// compilerConfig builds the compiler configuration for one run.
func (a *App) compilerConfig(runID string) compiler.Config {
	return compiler.Config{
		Root:         a.cfg.Output.Root,
		Markdown:     a.cfg.Output.Markdown,
		TableType:    a.cfg.Tables.Type,
		DumpFormat:   a.cfg.Output.DumpFormat,
		PageTemplate: a.cfg.Output.PageTemplate,
		RunID:        runID,
		Sinks:        a.sinks(),
		Recorder:     a.metrics,
		Logger:       a.logger,
	}
}

// Compile runs the named compilers in order under a fresh run id.
func (a *App) Compile(ctx context.Context, names ...string) ([]compiler.Result, error) {
	runID := uuid.NewString()
	cfg := a.compilerConfig(runID)
	logger := a.logger.With("run_id", runID)

	var results []compiler.Result
	err := a.run(func() error {
		for _, name := range names {
			c, err := compiler.Lookup(name, a.catalog, cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := c.Compile(ctx)
			a.metrics.RecordCompile(name, time.Since(start))
			results = append(results, res)
			if err != nil {
				return fmt.Errorf("compile %s: %w", name, err)
			}
			logger.Info("Compiled", "result", res.String(), "duration", time.Since(start))
		}
		return nil
	})
	return results, err
}

// CompileManifests writes the manifests of the given entities only.
func (a *App) CompileManifests(ctx context.Context, ids ...string) (compiler.Result, error) {
	c := compiler.NewManifestCompiler(a.catalog, a.compilerConfig(uuid.NewString()))
	res := compiler.Result{Compiler: c.Name()}

	err := a.run(func() error {
		var errs []error
		for _, id := range ids {
			outcome, err := c.CompileOne(ctx, id)
			switch outcome {
			case compiler.OutcomeWritten:
				res.Written++
			case compiler.OutcomeSkipped:
				res.Skipped++
			default:
				res.Failed++
			}
			if err != nil && !errors.Is(err, compiler.ErrNoImages) {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
	a.logger.Info("Compiled", "result", res.String())
	return res, err
}

// run executes fn and records the run in metrics, writing the textfile
// when one is configured.
func (a *App) run(fn func() error) error {
	err := fn()
	a.metrics.RecordRun(err, time.Now())
	if path := a.cfg.Metrics.Textfile; path != "" {
		if werr := a.metrics.WriteToTextfile(path); werr != nil {
			a.logger.Warn("Failed to write metrics", "path", path, "error", werr)
		}
	}
	return err
}

// Watch compiles once, then reloads and recompiles on graph changes and on
// the configured schedule until ctx is done.
func (a *App) Watch(ctx context.Context, names ...string) error {
	if _, err := a.Compile(ctx, names...); err != nil {
		a.logger.Error("Initial compile failed", "error", err)
	}

	w, err := watch.NewWatcher(watch.WatcherConfig{
		Dirs:          slices.Clone(a.dirs),
		Patterns:      a.cfg.Graph.Patterns,
		DebounceDelay: a.cfg.Watch.Debounce,
		Logger:        a.logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	var ticks <-chan watch.Trigger
	if spec := a.cfg.Watch.Schedule; spec != "" {
		s, err := watch.NewScheduler(spec, a.logger)
		if err != nil {
			return err
		}
		s.Start()
		defer s.Stop()
		ticks = s.Triggers()
	}

	watch.Loop(ctx, w.Triggers(), ticks, a.recompile(names), a.logger)
	return nil
}

// recompile returns the watch handler. File changes reload the graph; a
// graph that fails to load leaves the previous one in place. Scheduled
// runs keep the graph but drop every memoized entity field, so pages,
// props and tables all see fresh probes.
func (a *App) recompile(names []string) watch.Func {
	return func(ctx context.Context, t watch.Trigger) error {
		switch t.Reason {
		case watch.ReasonChange:
			a.logger.Debug("Graph files changed", "paths", t.Paths)
			if err := a.LoadGraph(); err != nil {
				return fmt.Errorf("reload graph: %w", err)
			}
		default:
			a.catalog.Refresh()
		}
		_, err := a.Compile(ctx, names...)
		return err
	}
}

// publishTree uploads the whole output directory to the configured bucket.
func publishTree(ctx context.Context, cfg *config.Config, logger *slog.Logger) (int, error) {
	if !cfg.Publish.S3.Enabled() {
		return 0, fmt.Errorf("%w: publish.s3 is not configured", config.ErrInvalid)
	}
	u, err := publish.NewUploader(cfg.Publish.S3, logger)
	if err != nil {
		return 0, fmt.Errorf("create uploader: %w", err)
	}
	if err := u.Init(ctx); err != nil {
		return 0, fmt.Errorf("init bucket: %w", err)
	}
	return u.UploadTree(ctx, cfg.Output.Root)
}
