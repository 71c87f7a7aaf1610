// Package config builds the immutable service configuration from an optional YAML
// file and AUTOSLIDES_* environment variables
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aouyang1/autoslides/settings"
	"github.com/aouyang1/autoslides/slideshow"
	"gopkg.in/yaml.v3"
)

const Version = "1"

const (
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Config is built once at startup and passed by value. Accessors hand out copies
// of the maps it holds.
type Config struct {
	RootPath      string `yaml:"root_path"`
	ListenAddr    string `yaml:"listen_addr"`
	PublicBaseURL string `yaml:"public_base_url"`
	LogLevel      string `yaml:"log_level"`

	PropertyBackend string `yaml:"property_backend"`
	AWSProfile      string `yaml:"aws_profile"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3Prefix        string `yaml:"s3_prefix"`

	ShortenerEndpoint string `yaml:"shortener_endpoint"`
	// Root endpoints of the Google APIs, e.g. https://slides.googleapis.com/.
	// Empty keeps the public ones.
	SlidesAPIURL      string `yaml:"slides_api_url"`
	DriveAPIURL       string `yaml:"drive_api_url"`

	// DefaultOverrides replaces individual factory settings.
	DefaultOverrides map[string]string `yaml:"defaults"`

	// Geometry of the host viewer. Not configurable from the file.
	Geometry slideshow.Geometry `yaml:"-"`
}

func Default() Config {
	return Config{
		RootPath:        ".",
		ListenAddr:      "0.0.0.0:8080",
		PublicBaseURL:   "http://localhost:8080",
		LogLevel:        "info",
		PropertyBackend: BackendSQLite,
		Geometry:        slideshow.DefaultGeometry,
	}
}

// Defaults returns the settings written by initialize and reset.
func (c Config) Defaults() settings.Settings {
	d := settings.Defaults()
	for k, v := range c.DefaultOverrides {
		d[k] = v
	}
	return d
}

func (c Config) DatabasePath() string {
	return filepath.Join(c.RootPath, "autoslides.db")
}

// PublicURL is the address of a document's public slideshow page.
func (c Config) PublicURL(documentID string) string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/d/" + documentID
}

func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads the file named by AUTOSLIDES_CONFIG, if any, then applies the
// environment on top.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("AUTOSLIDES_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("config file not found, using defaults", "path", path)
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	vars := []struct {
		name string
		dst  *string
	}{
		{"AUTOSLIDES_ROOT_PATH", &c.RootPath},
		{"AUTOSLIDES_LISTEN_ADDR", &c.ListenAddr},
		{"AUTOSLIDES_PUBLIC_URL", &c.PublicBaseURL},
		{"AUTOSLIDES_LOG_LEVEL", &c.LogLevel},
		{"AUTOSLIDES_BACKEND", &c.PropertyBackend},
		{"AUTOSLIDES_AWS_PROFILE", &c.AWSProfile},
		{"AUTOSLIDES_S3_BUCKET", &c.S3Bucket},
		{"AUTOSLIDES_S3_PREFIX", &c.S3Prefix},
		{"AUTOSLIDES_SHORTENER_URL", &c.ShortenerEndpoint},
		{"AUTOSLIDES_SLIDES_API_URL", &c.SlidesAPIURL},
		{"AUTOSLIDES_DRIVE_API_URL", &c.DriveAPIURL},
	}
	for _, v := range vars {
		if value := strings.TrimSpace(getenv(v.name)); value != "" {
			*v.dst = value
		}
	}
}

func (c Config) Validate() error {
	switch c.PropertyBackend {
	case BackendSQLite, BackendMemory:
	case BackendS3:
		if c.S3Bucket == "" {
			return errors.New("s3 property backend needs AUTOSLIDES_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown property backend %q, want sqlite, s3 or memory", c.PropertyBackend)
	}

	if c.ListenAddr == "" {
		return errors.New("listen address is required")
	}
	if c.PublicBaseURL == "" {
		return errors.New("public base url is required")
	}

	for k := range c.DefaultOverrides {
		if !settings.FormKeys.Contains(k) {
			return fmt.Errorf("defaults: %q is not a configurable setting", k)
		}
	}
	return nil
}
