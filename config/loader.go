package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/perseus-aa/manifest-compiler/graph"
	"github.com/perseus-aa/manifest-compiler/vocabulary/aa"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "aacompile.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/aacompile"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "AACOMPILE_"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger

	// ConfigFile, when set, replaces the project config search.
	ConfigFile string

	// WorkDir is where the project config search starts (default: cwd).
	WorkDir string

	// HomeDir holds the user config (default: the user's home).
	HomeDir string

	// DotEnv files are loaded into the environment before overrides are
	// read. Variables already set are kept. Missing files are ignored.
	DotEnv []string

	// LookupEnv reads environment variables (default: os.LookupEnv).
	LookupEnv func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger,
		DotEnv:    []string{".env"},
		LookupEnv: os.LookupEnv,
	}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/aacompile/config.yaml)
// 3. Project config (aacompile.yaml in current or parent directories)
// 4. Environment variables (AACOMPILE_*, after .env is loaded)
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	// Load user config
	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		if userConfig, err := readLayer(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	// Load project config
	if l.ConfigFile != "" {
		projectConfig, err := readLayer(l.ConfigFile)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config file", slog.String("path", l.ConfigFile))
		config.Merge(projectConfig)
	} else if projectConfigPath := l.findProjectConfig(); projectConfigPath != "" {
		if projectConfig, err := readLayer(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	// Load environment
	l.loadDotEnv()
	if err := ApplyEnv(config, l.lookupEnv()); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() (string, error) {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return "", errors.New("cannot determine home directory")
	}

	if _, err := os.Stat(userConfigPath); err == nil {
		return userConfigPath, nil
	}

	if err := DefaultConfig().SaveToFile(userConfigPath); err != nil {
		return "", err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return userConfigPath, nil
}

// readLayer reads a config file without defaults, so that only the values
// it sets take part in Merge.
func readLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var layer Config
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &layer, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home := l.HomeDir
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for aacompile.yaml in the work directory and its parents
func (l *Loader) findProjectConfig() string {
	dir := l.WorkDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func (l *Loader) loadDotEnv() {
	for _, path := range l.DotEnv {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			l.logger.Warn("Failed to load env file", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		l.logger.Debug("Loaded env file", slog.String("path", path))
	}
}

func (l *Loader) lookupEnv() func(string) (string, bool) {
	if l.LookupEnv == nil {
		return os.LookupEnv
	}
	return l.LookupEnv
}

// envVars maps override names, without EnvPrefix, to setters.
var envVars = map[string]func(c *Config, v string) error{
	"GRAPH_DIRS":     func(c *Config, v string) error { c.Graph.Dirs = splitList(v); return nil },
	"GRAPH_PATTERNS": func(c *Config, v string) error { c.Graph.Patterns = splitList(v); return nil },
	"OUTPUT_ROOT":    func(c *Config, v string) error { c.Output.Root = v; return nil },
	"OUTPUT_MARKDOWN": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Output.Markdown = b
		return err
	},
	"DUMP_FORMAT":            func(c *Config, v string) error { c.Output.DumpFormat = graph.Format(v); return nil },
	"IIIF_MANIFEST_BASE_URL": func(c *Config, v string) error { c.IIIF.ManifestBaseURL = v; return nil },
	"IIIF_IMAGE_BASE_URL":    func(c *Config, v string) error { c.IIIF.ImageBaseURL = v; return nil },
	"IIIF_LANGUAGE":          func(c *Config, v string) error { c.IIIF.Language = v; return nil },
	"IIIF_TIMEOUT": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		c.IIIF.Timeout = d
		return err
	},
	"TABLE_TYPE": func(c *Config, v string) error {
		t, err := aa.ParseArtifactType(v)
		c.Tables.Type = t
		return err
	},
	"S3_ENDPOINT":   func(c *Config, v string) error { c.Publish.S3.Endpoint = v; return nil },
	"S3_ACCESS_KEY": func(c *Config, v string) error { c.Publish.S3.AccessKey = v; return nil },
	"S3_SECRET_KEY": func(c *Config, v string) error { c.Publish.S3.SecretKey = v; return nil },
	"S3_BUCKET":     func(c *Config, v string) error { c.Publish.S3.Bucket = v; return nil },
	"S3_PREFIX":     func(c *Config, v string) error { c.Publish.S3.Prefix = v; return nil },
	"S3_USE_SSL": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Publish.S3.UseSSL = b
		return err
	},
	"NATS_URL":         func(c *Config, v string) error { c.Publish.NATS.URL = v; return nil },
	"NATS_SUBJECT":     func(c *Config, v string) error { c.Publish.NATS.Subject = v; return nil },
	"METRICS_TEXTFILE": func(c *Config, v string) error { c.Metrics.Textfile = v; return nil },
	"WATCH_SCHEDULE":   func(c *Config, v string) error { c.Watch.Schedule = v; return nil },
}

// EnvNames returns every supported environment variable.
func EnvNames() []string {
	names := make([]string, 0, len(envVars))
	for name := range envVars {
		names = append(names, EnvPrefix+name)
	}
	return names
}

// ApplyEnv overrides config from AACOMPILE_* variables.
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	for name, set := range envVars {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		if err := set(c, v); err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalid, EnvPrefix, name, err)
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
