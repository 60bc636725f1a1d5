// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "PAGEGATE_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for Pagegate.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment" json:"environment"`

	// Decision configures the policy decision point client.
	Decision DecisionConfig `yaml:"decision" json:"decision"`

	// RBAC configures the role-binding service client.
	RBAC RBACConfig `yaml:"rbac" json:"rbac"`

	// Log configures logging.
	Log LogConfig `yaml:"log" json:"log"`

	// Per-environment overrides, applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty" json:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty" json:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Decision *DecisionOverrides `yaml:"decision,omitempty" json:"decision,omitempty"`
	RBAC     *RBACConfig        `yaml:"rbac,omitempty" json:"rbac,omitempty"`
	Log      *LogConfig         `yaml:"log,omitempty" json:"log,omitempty"`
}

// DecisionOverrides mirrors DecisionConfig for per-environment
// overrides. Zero values leave the base setting alone; the boolean is a
// pointer so that an explicit false can still turn it off.
type DecisionOverrides struct {
	Endpoint               string `yaml:"endpoint" json:"endpoint"`
	Timeout                string `yaml:"timeout" json:"timeout"`
	Codec                  string `yaml:"codec" json:"codec"`
	Concurrency            int    `yaml:"concurrency" json:"concurrency"`
	PersistActionAttribute *bool  `yaml:"persist_action_attribute" json:"persist_action_attribute"`
}

// DecisionConfig configures the decision point client.
type DecisionConfig struct {
	// Endpoint is the batch decision URL.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Timeout bounds each batch round trip, as a Go duration string.
	// Default: 10s
	Timeout string `yaml:"timeout" json:"timeout"`

	// Codec is the wire encoding: json or cbor.
	// Default: json
	Codec string `yaml:"codec" json:"codec"`

	// Concurrency bounds concurrent element actions.
	// Default: 8
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// PersistActionAttribute writes inferred action names back into
	// the document.
	PersistActionAttribute bool `yaml:"persist_action_attribute" json:"persist_action_attribute"`
}

// RBACConfig configures the role-binding service client.
type RBACConfig struct {
	// BaseURL is the service root; the API lives under /api/rbac.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// PageSize is the number of bindings per page.
	// Default: 20
	PageSize int `yaml:"page_size" json:"page_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level" json:"level"`

	// Format is text, json, or auto (text on a terminal, JSON otherwise).
	// Default: auto
	Format string `yaml:"format" json:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Decision: DecisionConfig{
			Timeout:     "10s",
			Codec:       "json",
			Concurrency: 8,
		},
		RBAC: RBACConfig{
			PageSize: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by PAGEGATE_CONFIG.
// It fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your pagegate.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// Resolve loads flagPath when set, otherwise the file named by
// PAGEGATE_CONFIG when set, otherwise returns Default.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	if os.Getenv(EnvVar) != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		return yaml.Unmarshal(data, c)
	}
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Decision != nil {
		if overrides.Decision.Endpoint != "" {
			c.Decision.Endpoint = overrides.Decision.Endpoint
		}
		if overrides.Decision.Timeout != "" {
			c.Decision.Timeout = overrides.Decision.Timeout
		}
		if overrides.Decision.Codec != "" {
			c.Decision.Codec = overrides.Decision.Codec
		}
		if overrides.Decision.Concurrency != 0 {
			c.Decision.Concurrency = overrides.Decision.Concurrency
		}
		if overrides.Decision.PersistActionAttribute != nil {
			c.Decision.PersistActionAttribute = *overrides.Decision.PersistActionAttribute
		}
	}

	if overrides.RBAC != nil {
		if overrides.RBAC.BaseURL != "" {
			c.RBAC.BaseURL = overrides.RBAC.BaseURL
		}
		if overrides.RBAC.PageSize != 0 {
			c.RBAC.PageSize = overrides.RBAC.PageSize
		}
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Format != "" {
			c.Log.Format = overrides.Log.Format
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in URLs.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Decision.Endpoint = expandVars(c.Decision.Endpoint, vars)
	c.RBAC.BaseURL = expandVars(c.RBAC.BaseURL, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// TimeoutDuration returns Decision.Timeout parsed, or zero when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Decision.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Decision.Timeout)
}

// Validate checks the configuration for errors. An empty endpoint or
// base URL is allowed here; commands that need one check for it.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Decision.Endpoint != "" {
		if err := validateURL(c.Decision.Endpoint); err != nil {
			errs = append(errs, fmt.Errorf("decision.endpoint: %w", err))
		}
	}
	if timeout, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, fmt.Errorf("decision.timeout: %w", err))
	} else if timeout < 0 {
		errs = append(errs, fmt.Errorf("decision.timeout must not be negative"))
	}
	codecs := []string{"json", "cbor"}
	if !slices.Contains(codecs, c.Decision.Codec) {
		errs = append(errs, fmt.Errorf("decision.codec must be one of: %v", codecs))
	}
	if c.Decision.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("decision.concurrency must be at least 1"))
	}

	if c.RBAC.BaseURL != "" {
		if err := validateURL(c.RBAC.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("rbac.base_url: %w", err))
		}
	}
	if c.RBAC.PageSize < 1 {
		errs = append(errs, fmt.Errorf("rbac.page_size must be at least 1"))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levels))
	}
	formats := []string{"auto", "text", "json"}
	if !slices.Contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats))
	}

	return errors.Join(errs...)
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%q is not an absolute http or https URL", raw)
	}
	return nil
}
