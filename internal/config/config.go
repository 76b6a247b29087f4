package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/BugFinder/internal/bugapi"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Service ServiceConfig `yaml:"service" json:"service"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Watch   WatchConfig   `yaml:"watch" json:"watch"`
}

// ServiceConfig configures the Bug Analysis Service connection
type ServiceConfig struct {
	Endpoint        string        `yaml:"endpoint" json:"endpoint"`                   // service base URL
	FindBugPath     string        `yaml:"find_bug_path" json:"find_bug_path"`         // analysis route
	SampleCasesPath string        `yaml:"sample_cases_path" json:"sample_cases_path"` // sample catalog route
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`                     // request timeout
}

// UIConfig configures the interactive view
type UIConfig struct {
	Theme           string `yaml:"theme" json:"theme"`                       // default|high-contrast|minimal
	DefaultLanguage string `yaml:"default_language" json:"default_language"` // python|javascript|c
	Markdown        bool   `yaml:"markdown" json:"markdown"`                 // render descriptions as markdown
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown|html
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
	LogFile       string `yaml:"log_file" json:"log_file"`             // log destination while the TUI runs
}

// WatchConfig configures re-analysis on file change
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce"` // quiet period before re-analysis
}

// Valid option sets
var (
	ValidThemes     = []string{"default", "high-contrast", "minimal"}
	ValidFormats    = []string{"text", "json", "markdown", "html"}
	ValidColorModes = []string{"auto", "always", "never"}
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Service: ServiceConfig{
			Endpoint:        bugapi.DefaultEndpoint,
			FindBugPath:     bugapi.DefaultFindBugPath,
			SampleCasesPath: bugapi.DefaultSampleCasesPath,
			Timeout:         bugapi.DefaultTimeout,
		},
		UI: UIConfig{
			Theme:           "default",
			DefaultLanguage: string(bugapi.DefaultLanguage),
			Markdown:        true,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// ClientConfig converts the service section into a client configuration
func (c *Config) ClientConfig() bugapi.Config {
	return bugapi.Config{
		Endpoint:        c.Service.Endpoint,
		FindBugPath:     c.Service.FindBugPath,
		SampleCasesPath: c.Service.SampleCasesPath,
		Timeout:         c.Service.Timeout,
	}
}

// Language returns the configured default language, falling back to python
func (c *Config) Language() bugapi.Language {
	lang, err := bugapi.ParseLanguage(c.UI.DefaultLanguage)
	if err != nil {
		return bugapi.DefaultLanguage
	}
	return lang
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServiceConfig(); err != nil {
		return err
	}
	if err := c.validateUIConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateWatchConfig(); err != nil {
		return err
	}
	return nil
}

// validateServiceConfig validates service-related configuration
func (c *Config) validateServiceConfig() error {
	if c.Service.Endpoint == "" {
		return fmt.Errorf("service endpoint is required")
	}
	u, err := url.Parse(c.Service.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid service endpoint: %s (must be an http or https URL)", c.Service.Endpoint)
	}
	if c.Service.FindBugPath != "" && !strings.HasPrefix(c.Service.FindBugPath, "/") {
		return fmt.Errorf("find_bug_path must start with /")
	}
	if c.Service.SampleCasesPath != "" && !strings.HasPrefix(c.Service.SampleCasesPath, "/") {
		return fmt.Errorf("sample_cases_path must start with /")
	}
	if c.Service.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// validateUIConfig validates interactive view configuration
func (c *Config) validateUIConfig() error {
	if c.UI.Theme != "" && !contains(ValidThemes, c.UI.Theme) {
		return fmt.Errorf("invalid theme: %s (must be one of: %s)", c.UI.Theme, strings.Join(ValidThemes, ", "))
	}
	if c.UI.DefaultLanguage != "" {
		if _, err := bugapi.ParseLanguage(c.UI.DefaultLanguage); err != nil {
			return fmt.Errorf("invalid default language: %s (must be one of: python, javascript, c)", c.UI.DefaultLanguage)
		}
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" && !contains(ValidFormats, c.Output.DefaultFormat) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.DefaultFormat, strings.Join(ValidFormats, ", "))
	}
	if c.Output.ColorMode != "" && !contains(ValidColorModes, c.Output.ColorMode) {
		return fmt.Errorf("invalid color mode: %s (must be one of: %s)", c.Output.ColorMode, strings.Join(ValidColorModes, ", "))
	}
	return nil
}

// validateWatchConfig validates watch configuration
func (c *Config) validateWatchConfig() error {
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("debounce must be non-negative")
	}
	if c.Watch.Debounce > time.Minute {
		return fmt.Errorf("debounce must not exceed 1m")
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
