package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted after the configuration file is parsed.
const (
	EnvSourceDir     = "DOCNAV_SOURCE_DIR"
	EnvOutputDir     = "DOCNAV_OUTPUT_DIR"
	EnvListen        = "DOCNAV_LISTEN"
	EnvLogLevel      = "DOCNAV_LOG_LEVEL"
	EnvRebuildSecret = "DOCNAV_REBUILD_SECRET"
)

// Config encapsulates runtime and build-time options.
type Config struct {
	SourceDir          string        `json:"sourceDir" yaml:"sourceDir"`
	OutputDir          string        `json:"outputDir" yaml:"outputDir"`
	TOCPage            string        `json:"tocPage" yaml:"tocPage"`
	TemplateDir        string        `json:"templateDir" yaml:"templateDir"`
	SiteName           string        `json:"siteName" yaml:"siteName"`
	Listen             string        `json:"listen" yaml:"listen"`
	LogLevel           string        `json:"logLevel" yaml:"logLevel"`
	DisableMinify      bool          `json:"disableMinify" yaml:"disableMinify"`
	RebuildIntervalSec int           `json:"rebuildIntervalSec" yaml:"rebuildIntervalSec"`
	RebuildSecret      string        `json:"rebuildSecret" yaml:"rebuildSecret"`
	EnableTLS          bool          `json:"enableTLS" yaml:"enableTLS"`
	TLSCert            string        `json:"tlsCert" yaml:"tlsCert"`
	TLSKey             string        `json:"tlsKey" yaml:"tlsKey"`
	RebuildInterval    time.Duration `json:"-" yaml:"-"`
}

// Load reads configuration from disk and applies sane defaults. An empty path
// skips the file and uses defaults plus environment overrides. Files ending in
// .yaml or .yml are parsed as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvSourceDir, &c.SourceDir},
		{EnvOutputDir, &c.OutputDir},
		{EnvListen, &c.Listen},
		{EnvLogLevel, &c.LogLevel},
		{EnvRebuildSecret, &c.RebuildSecret},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.key)); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) applyDefaults() error {
	c.SourceDir = strings.TrimSpace(c.SourceDir)
	if c.SourceDir == "" {
		c.SourceDir = "./doc"
	}
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir == "" {
		c.OutputDir = "./dist"
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	c.SiteName = strings.TrimSpace(c.SiteName)
	if c.SiteName == "" {
		c.SiteName = "Documentation"
	}
	c.TemplateDir = strings.TrimSpace(c.TemplateDir)
	c.RebuildSecret = strings.TrimSpace(c.RebuildSecret)

	page, err := normalizeRelPath(c.TOCPage, "toc.html")
	if err != nil {
		return fmt.Errorf("tocPage: %w", err)
	}
	c.TOCPage = page

	if c.RebuildIntervalSec > 0 {
		c.RebuildInterval = time.Duration(c.RebuildIntervalSec) * time.Second
	} else {
		c.RebuildInterval = 0
	}
	return nil
}

// Validate checks option values and directory layout. Load calls it; callers
// that change fields afterwards should call it again.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.RebuildIntervalSec < 0 {
		return fmt.Errorf("negative rebuild interval")
	}
	if c.EnableTLS {
		if c.TLSCert == "" || c.TLSKey == "" {
			return fmt.Errorf("tls enabled but certificates missing")
		}
	}
	if c.RebuildSecret != "" {
		if n := len(c.RebuildSecret); n < 8 || n > 128 {
			return fmt.Errorf("rebuild secret must be between 8 and 128 characters")
		}
	}
	return c.CheckDirs()
}

// CheckDirs rejects layouts where replacing the output directory, or removing
// its ".old" backup, would delete the sources or the templates.
func (c *Config) CheckDirs() error {
	if sameDir(c.SourceDir, c.OutputDir) {
		return fmt.Errorf("outputDir must differ from sourceDir")
	}
	for _, out := range []string{c.OutputDir, c.OutputDir + ".old"} {
		if within(out, c.SourceDir) {
			return fmt.Errorf("sourceDir %s lies inside %s, which is replaced on every build", c.SourceDir, out)
		}
		if c.TemplateDir != "" && within(out, c.TemplateDir) {
			return fmt.Errorf("templateDir %s lies inside %s, which is replaced on every build", c.TemplateDir, out)
		}
	}
	return nil
}

// TOCPagePath returns the on-disk location of the host page.
func (c *Config) TOCPagePath() string {
	return filepath.Join(c.SourceDir, filepath.FromSlash(c.TOCPage))
}

func normalizeRelPath(raw, fallback string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	if trimmed == "" {
		return fallback, nil
	}
	cleaned := path.Clean(strings.TrimPrefix(trimmed, "/"))
	if cleaned == "." || cleaned == "" {
		return fallback, nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path escapes source directory")
	}
	return cleaned, nil
}

// within reports whether dir equals parent or lies below it.
func within(parent, dir string) bool {
	absParent, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absParent, absDir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
