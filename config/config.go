// Package config provides configuration loading and management for aacompile.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/perseus-aa/manifest-compiler/catalog"
	"github.com/perseus-aa/manifest-compiler/graph"
	"github.com/perseus-aa/manifest-compiler/iiif"
	"github.com/perseus-aa/manifest-compiler/publish"
	"github.com/perseus-aa/manifest-compiler/vocabulary/aa"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the complete aacompile configuration
type Config struct {
	Graph   GraphConfig   `yaml:"graph"`
	Output  OutputConfig  `yaml:"output"`
	IIIF    IIIFConfig    `yaml:"iiif"`
	Tables  TablesConfig  `yaml:"tables"`
	Publish PublishConfig `yaml:"publish"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
}

// GraphConfig configures where graph files are read from
type GraphConfig struct {
	// Dirs are loaded in order (default: ["rdf", "rdf/object_image_graphs"])
	Dirs []string `yaml:"dirs"`
	// Patterns select files within each dir (default: ["*.ttl"])
	Patterns []string `yaml:"patterns"`
}

// OutputConfig configures the compiled output tree
type OutputConfig struct {
	// Root is the output directory (default: output)
	Root string `yaml:"root"`
	// Markdown also writes a Markdown rendition of every page
	Markdown bool `yaml:"markdown"`
	// PageTemplate replaces the built-in page template
	PageTemplate string `yaml:"page_template"`
	// DumpFormat is the graph dump serialization (default: turtle)
	DumpFormat graph.Format `yaml:"dump_format"`
}

// IIIFConfig configures manifests and the image server
type IIIFConfig struct {
	// ManifestBaseURL prefixes manifest ids (default: https://www.perseus.tufts.edu/api)
	ManifestBaseURL string `yaml:"manifest_base_url"`
	// ImageBaseURL replaces ImageNamespace when probing and linking images
	ImageBaseURL string `yaml:"image_base_url"`
	// ImageNamespace is the namespace image IRIs are minted in
	ImageNamespace string `yaml:"image_namespace"`
	// Language tags localized manifest values (default: en)
	Language string `yaml:"language"`
	// Templates are the image request templates
	Templates iiif.Templates `yaml:"templates"`
	// Timeout bounds each image probe (default: 30s)
	Timeout time.Duration `yaml:"timeout"`
	// UserAgent is sent with every probe
	UserAgent string `yaml:"user_agent"`
}

// TablesConfig configures the CSV tables
type TablesConfig struct {
	// Type is the artifact type the tables cover (default: vase)
	Type aa.ArtifactType `yaml:"type"`
}

// PublishConfig configures output sinks
type PublishConfig struct {
	S3   publish.S3Config   `yaml:"s3"`
	NATS publish.NATSConfig `yaml:"nats"`
}

// MetricsConfig configures metrics export
type MetricsConfig struct {
	// Textfile receives Prometheus metrics after every run (empty = off)
	Textfile string `yaml:"textfile"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// Debounce is how long file changes must settle (default: 500ms)
	Debounce time.Duration `yaml:"debounce"`
	// Schedule is an optional cron expression for periodic recompiles
	Schedule string `yaml:"schedule"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Graph: GraphConfig{
			Dirs:     []string{"rdf", filepath.Join("rdf", "object_image_graphs")},
			Patterns: append([]string(nil), graph.DefaultPatterns...),
		},
		Output: OutputConfig{
			Root:       "output",
			DumpFormat: graph.FormatTurtle,
		},
		IIIF: IIIFConfig{
			ManifestBaseURL: catalog.DefaultManifestBaseURL,
			ImageNamespace:  aa.ImageNamespace,
			Language:        "en",
			Templates:       iiif.DefaultTemplates(),
			Timeout:         iiif.DefaultTimeout,
		},
		Tables: TablesConfig{
			Type: aa.ArtifactTypeVase,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Graph.Dirs) == 0 {
		return fmt.Errorf("%w: graph.dirs is required", ErrInvalid)
	}
	if c.Output.Root == "" {
		return fmt.Errorf("%w: output.root is required", ErrInvalid)
	}
	if info, ok := graph.GetFormatInfo(c.Output.DumpFormat); !ok || !info.Writable {
		return fmt.Errorf("%w: output.dump_format %q is not writable", ErrInvalid, c.Output.DumpFormat)
	}
	if c.IIIF.Language == "" {
		return fmt.Errorf("%w: iiif.language is required", ErrInvalid)
	}
	if c.IIIF.Timeout < 0 {
		return fmt.Errorf("%w: iiif.timeout must not be negative", ErrInvalid)
	}
	if c.Tables.Type == aa.ArtifactTypeUnknown {
		return fmt.Errorf("%w: tables.type is required", ErrInvalid)
	}
	if c.Publish.S3.Endpoint != "" && c.Publish.S3.Bucket == "" {
		return fmt.Errorf("%w: publish.s3.bucket is required with an endpoint", ErrInvalid)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%w: watch.debounce must not be negative", ErrInvalid)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Graph
	if len(other.Graph.Dirs) > 0 {
		c.Graph.Dirs = other.Graph.Dirs
	}
	if len(other.Graph.Patterns) > 0 {
		c.Graph.Patterns = other.Graph.Patterns
	}

	// Output
	if other.Output.Root != "" {
		c.Output.Root = other.Output.Root
	}
	if other.Output.Markdown {
		c.Output.Markdown = true
	}
	if other.Output.PageTemplate != "" {
		c.Output.PageTemplate = other.Output.PageTemplate
	}
	if other.Output.DumpFormat != "" {
		c.Output.DumpFormat = other.Output.DumpFormat
	}

	// IIIF
	if other.IIIF.ManifestBaseURL != "" {
		c.IIIF.ManifestBaseURL = other.IIIF.ManifestBaseURL
	}
	if other.IIIF.ImageBaseURL != "" {
		c.IIIF.ImageBaseURL = other.IIIF.ImageBaseURL
	}
	if other.IIIF.ImageNamespace != "" {
		c.IIIF.ImageNamespace = other.IIIF.ImageNamespace
	}
	if other.IIIF.Language != "" {
		c.IIIF.Language = other.IIIF.Language
	}
	if other.IIIF.Templates.Thumbnail != "" {
		c.IIIF.Templates.Thumbnail = other.IIIF.Templates.Thumbnail
	}
	if other.IIIF.Templates.Small != "" {
		c.IIIF.Templates.Small = other.IIIF.Templates.Small
	}
	if other.IIIF.Templates.Full != "" {
		c.IIIF.Templates.Full = other.IIIF.Templates.Full
	}
	if other.IIIF.Timeout != 0 {
		c.IIIF.Timeout = other.IIIF.Timeout
	}
	if other.IIIF.UserAgent != "" {
		c.IIIF.UserAgent = other.IIIF.UserAgent
	}

	// Tables
	if other.Tables.Type != aa.ArtifactTypeUnknown {
		c.Tables.Type = other.Tables.Type
	}

	// Publish
	mergeS3(&c.Publish.S3, other.Publish.S3)
	if other.Publish.NATS.URL != "" {
		c.Publish.NATS.URL = other.Publish.NATS.URL
	}
	if other.Publish.NATS.Subject != "" {
		c.Publish.NATS.Subject = other.Publish.NATS.Subject
	}

	// Metrics
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Watch.Schedule != "" {
		c.Watch.Schedule = other.Watch.Schedule
	}
}

func mergeS3(dst *publish.S3Config, src publish.S3Config) {
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.AccessKey != "" {
		dst.AccessKey = src.AccessKey
	}
	if src.SecretKey != "" {
		dst.SecretKey = src.SecretKey
	}
	if src.UseSSL {
		dst.UseSSL = true
	}
	if src.Bucket != "" {
		dst.Bucket = src.Bucket
	}
	if src.Prefix != "" {
		dst.Prefix = src.Prefix
	}
}
