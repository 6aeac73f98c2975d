// internal/config/config.go
//
// This package handles configuration and the .gavel directory structure.
// Every directory you run gavel from gets a .gavel/ folder holding the
// config file, the journey log, and exported case artifacts.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// GavelDir is the name of the directory we create in each project
	GavelDir = ".gavel"

	defaultBackendURL     = "http://localhost:8000"
	defaultTimeoutSeconds = 120
)

const defaultProjectConfigYAML = `# gavel configuration
version: 1

backend:
  # Origin of the courtroom simulator service. The client appends /api.
  # GAVEL_BACKEND_URL overrides this value.
  base_url: http://localhost:8000
  # Per-request timeout in seconds. Simulations run several debate rounds
  # server-side, so keep this generous.
  timeout_seconds: 120
`

// BackendConfig points the client at the analysis service.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// ProjectConfig models .gavel/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Backend BackendConfig `yaml:"backend"`
}

// Config holds the runtime configuration for gavel.
type Config struct {
	// ProjectDir is the directory where the user ran `gavel` from
	ProjectDir string

	// GavelProjectDir is ProjectDir/.gavel
	GavelProjectDir string

	Project ProjectConfig
}

// InitGavelDir creates the .gavel directory structure in the given project
// directory. Called once at startup before the TUI takes over.
//
// Structure created:
// .gavel/
// ├── logs/        <- journey log (what happened, when)
// ├── cases/       <- reserved for exported case artifacts
// └── config.yaml  <- seeded with commented defaults on first run
func InitGavelDir(projectDir string) error {
	gavelDir := filepath.Join(projectDir, GavelDir)

	dirs := []string{
		filepath.Join(gavelDir, "logs"),
		filepath.Join(gavelDir, "cases"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(gavelDir, "config.yaml"))
}

// NewConfig creates a Config populated from .gavel/config.yaml plus the
// environment. GAVEL_BACKEND_URL wins over the file when set.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:      projectDir,
		GavelProjectDir: filepath.Join(projectDir, GavelDir),
		Project:         defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}

	if env := strings.TrimSpace(os.Getenv("GAVEL_BACKEND_URL")); env != "" {
		cfg.Project.Backend.BaseURL = env
	}

	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.GavelProjectDir, "logs")
}

// CasesDir returns the path to the exported-cases directory
func (c *Config) CasesDir() string {
	return filepath.Join(c.GavelProjectDir, "cases")
}

// JourneyLogPath returns the path to the journey log file
func (c *Config) JourneyLogPath() string {
	return filepath.Join(c.LogsDir(), "journey.log")
}

// ProjectConfigPath returns the on-disk location for the config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.GavelProjectDir, "config.yaml")
}

// BackendURL returns the configured backend origin.
func (c *Config) BackendURL() string {
	return c.Project.Backend.BaseURL
}

// RequestTimeout returns the per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	secs := c.Project.Backend.TimeoutSeconds
	if secs <= 0 {
		secs = defaultTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Backend: BackendConfig{
			BaseURL:        defaultBackendURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	pc.Backend.BaseURL = strings.TrimSpace(pc.Backend.BaseURL)
	if pc.Backend.BaseURL == "" {
		pc.Backend.BaseURL = defaultBackendURL
	}
	if pc.Backend.TimeoutSeconds <= 0 {
		pc.Backend.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	parsed, err := url.Parse(pc.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend base_url %q: %w", pc.Backend.BaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("backend base_url %q must include scheme and host", pc.Backend.BaseURL)
	}
	return nil
}

// ensureProjectConfig seeds config.yaml with commented defaults so users
// have something to edit. An existing file is left alone.
func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
