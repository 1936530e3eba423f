package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Failure policies for a create or update call that errors mid-run.
const (
	OnErrorAbort    = "abort"
	OnErrorContinue = "continue"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Sync        SyncConfig        `toml:"sync"`
	HTTP        HTTPConfig        `toml:"http"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Canvas  CanvasConfig  `toml:"canvas"`
	Todoist TodoistConfig `toml:"todoist"`
}

// CanvasConfig contains Canvas LMS API credentials.
type CanvasConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// TodoistConfig contains Todoist API credentials.
type TodoistConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// SyncConfig controls which tasks are written and how failures are handled.
type SyncConfig struct {
	TargetProjectID string  `toml:"target_project_id"`
	ExcludeCourses  []int64 `toml:"exclude_courses"`
	OnError         string  `toml:"on_error"`
	CourseCodeStart int     `toml:"course_code_start"`
	CourseCodeEnd   int     `toml:"course_code_end"`
}

// HTTPConfig contains outbound HTTP client settings.
type HTTPConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// DatabaseConfig contains run journal connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.applyDefaults()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyDefaults()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyDefaults fills zero values that would otherwise make the config unusable.
func (c *Config) applyDefaults() {
	if c.Sync.OnError == "" {
		c.Sync.OnError = OnErrorAbort
	}
	if c.Sync.CourseCodeStart == 0 && c.Sync.CourseCodeEnd == 0 {
		c.Sync.CourseCodeStart, c.Sync.CourseCodeEnd = 9, 15
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		c.HTTP.TimeoutSeconds = 30
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 1
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 1
	}
}

// Validate reports missing credentials and settings the sync cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.Credentials.Canvas.APIKey == "" {
		missing = append(missing, "credentials.canvas.api_key")
	}
	if c.Credentials.Canvas.BaseURL == "" {
		missing = append(missing, "credentials.canvas.base_url")
	}
	if c.Credentials.Todoist.APIKey == "" {
		missing = append(missing, "credentials.todoist.api_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	if c.Sync.TargetProjectID == "" {
		return fmt.Errorf("%w: sync.target_project_id is required", ErrInvalidConfig)
	}
	if c.Sync.OnError != OnErrorAbort && c.Sync.OnError != OnErrorContinue {
		return fmt.Errorf("%w: sync.on_error must be %q or %q, got %q", ErrInvalidConfig, OnErrorAbort, OnErrorContinue, c.Sync.OnError)
	}
	if c.Sync.CourseCodeStart < 0 || c.Sync.CourseCodeEnd < c.Sync.CourseCodeStart {
		return fmt.Errorf("%w: course code range [%d, %d) is invalid", ErrInvalidConfig, c.Sync.CourseCodeStart, c.Sync.CourseCodeEnd)
	}
	return nil
}

// Timeout returns the configured HTTP timeout as a [time.Duration].
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ExcludedCourses returns the exclusion list as a set keyed by course ID.
func (c *Config) ExcludedCourses() map[int64]bool {
	set := make(map[int64]bool, len(c.Sync.ExcludeCourses))
	for _, id := range c.Sync.ExcludeCourses {
		set[id] = true
	}
	return set
}
