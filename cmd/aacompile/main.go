// Package main provides the aacompile binary entry point.
// aacompile compiles the Perseus Art & Archaeology graph into IIIF
// manifests, web pages and collection tables.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/perseus-aa/manifest-compiler/compiler"
	"github.com/perseus-aa/manifest-compiler/config"
	"github.com/perseus-aa/manifest-compiler/graph"
	"github.com/perseus-aa/manifest-compiler/vocabulary/aa"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "aacompile"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	outputRoot string
	graphDirs  []string
	imageBase  string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Art & Archaeology artifact compiler",
		Long: `aacompile reads the Perseus Art & Archaeology RDF graph and compiles it
into static outputs:

- IIIF Presentation 3 manifests, one per artifact with images
- HTML web pages (and optional Markdown renditions)
- CollectionBuilder-style entity and image CSV tables
- a props.json summary and a normalized graph dump

Outputs can be mirrored to an S3 bucket and announced on NATS.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVarP(&flags.outputRoot, "output", "o", "", "Output directory (overrides config)")
	pf.StringSliceVarP(&flags.graphDirs, "graph", "g", nil, "Graph directories to load (overrides config)")
	pf.StringVar(&flags.imageBase, "image-base-url", "", "IIIF image server base URL (overrides config)")

	for _, name := range []string{"pages", "entity-table", "image-table", "props"} {
		cmd.AddCommand(compileCmd(&flags, name))
	}
	cmd.AddCommand(
		manifestsCmd(&flags),
		dumpCmd(&flags),
		allCmd(&flags),
		watchCmd(&flags),
		publishCmd(&flags),
		configCmd(&flags),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

var compileDescriptions = map[string]string{
	"pages":        "Compile HTML web pages",
	"entity-table": "Compile the entity CSV table",
	"image-table":  "Compile the image CSV table",
	"props":        "Compile props.json",
}

func compileCmd(flags *globalFlags, name string) *cobra.Command {
	var (
		markdown  bool
		tableType string
	)

	cmd := &cobra.Command{
		Use:   name,
		Short: compileDescriptions[name],
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(cfg *config.Config) error {
				if markdown {
					cfg.Output.Markdown = true
				}
				return setTableType(cfg, tableType)
			}, func(ctx context.Context, app *App) error {
				_, err := app.Compile(ctx, name)
				return err
			})
		},
	}

	switch name {
	case "pages":
		cmd.Flags().BoolVar(&markdown, "markdown", false, "Also write Markdown renditions")
	case "entity-table", "image-table":
		cmd.Flags().StringVarP(&tableType, "type", "t", "", "Artifact type to tabulate (e.g. vase, coins)")
	}
	return cmd
}

func manifestsCmd(flags *globalFlags) *cobra.Command {
	var ids []string

	cmd := &cobra.Command{
		Use:   "manifests",
		Short: "Compile IIIF manifests",
		Long: `Compile one IIIF manifest per artifact into <output>/<series>/<id>.json.
Existing manifests are left untouched. With --id only the named artifacts
are compiled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, nil, func(ctx context.Context, app *App) error {
				if len(ids) > 0 {
					_, err := app.CompileManifests(ctx, ids...)
					return err
				}
				_, err := app.Compile(ctx, "manifests")
				return err
			})
		},
	}

	cmd.Flags().StringSliceVar(&ids, "id", nil, "Artifact identifiers to compile (e.g. aa_1000)")
	return cmd
}

func dumpCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the loaded graph as a single file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(cfg *config.Config) error {
				if format != "" {
					cfg.Output.DumpFormat = graph.Format(format)
				}
				return nil
			}, func(ctx context.Context, app *App) error {
				_, err := app.Compile(ctx, "dump")
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Dump format (turtle, ntriples)")
	return cmd
}

func allCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every compiler in order",
		Long:  "Run " + strings.Join(compiler.DefaultOrder, ", ") + " in that order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, nil, func(ctx context.Context, app *App) error {
				_, err := app.Compile(ctx, compiler.DefaultOrder...)
				return err
			})
		},
	}
}

func watchCmd(flags *globalFlags) *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompile whenever the graph changes",
		Long: `Compile everything once, then reload the graph and recompile whenever
graph files change. With --schedule (or watch.schedule) a recompile also
runs on a cron schedule, e.g. "0 3 * * *" or "@hourly".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(cfg *config.Config) error {
				if schedule != "" {
					cfg.Watch.Schedule = schedule
				}
				return nil
			}, func(ctx context.Context, app *App) error {
				return app.Watch(ctx, compiler.DefaultOrder...)
			})
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule for periodic recompiles")
	return cmd
}

func publishCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Upload the output directory to the configured bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(cmd, flags, nil, func(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
				n, err := publishTree(ctx, cfg, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d files from %s\n", n, cfg.Output.Root)
				return nil
			})
		},
	}
}

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(cmd, flags, nil, func(_ context.Context, cfg *config.Config, _ *slog.Logger) error {
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("marshal config: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.logLevel)
			path, err := config.NewLoader(logger).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "List supported environment variables",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.EnvNames()
			slices.Sort(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	})

	return cmd
}

// newLogger builds the process logger and installs it as the default.
func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig loads layered configuration and applies command-line
// overrides on top.
func loadConfig(flags *globalFlags, logger *slog.Logger, override func(*config.Config) error) (*config.Config, error) {
	loader := config.NewLoader(logger)
	loader.ConfigFile = flags.configPath
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if flags.outputRoot != "" {
		cfg.Output.Root = flags.outputRoot
	}
	if len(flags.graphDirs) > 0 {
		cfg.Graph.Dirs = flags.graphDirs
	}
	if flags.imageBase != "" {
		cfg.IIIF.ImageBaseURL = flags.imageBase
	}
	if override != nil {
		if err := override(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setTableType(cfg *config.Config, name string) error {
	if name == "" {
		return nil
	}
	t, err := aa.ParseArtifactType(name)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	cfg.Tables.Type = t
	return nil
}

func withConfig(
	cmd *cobra.Command,
	flags *globalFlags,
	override func(*config.Config) error,
	fn func(ctx context.Context, cfg *config.Config, logger *slog.Logger) error,
) error {
	logger := newLogger(flags.logLevel)
	cfg, err := loadConfig(flags, logger, override)
	if err != nil {
		return err
	}
	return fn(cmd.Context(), cfg, logger)
}

// withApp loads configuration, builds and connects an App, loads the
// graph and hands the app to fn.
func withApp(
	cmd *cobra.Command,
	flags *globalFlags,
	override func(*config.Config) error,
	fn func(ctx context.Context, app *App) error,
) error {
	return withConfig(cmd, flags, override, func(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
		app, err := NewApp(cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Connect(ctx); err != nil {
			return err
		}
		if err := app.LoadGraph(); err != nil {
			return err
		}
		return fn(ctx, app)
	})
}
