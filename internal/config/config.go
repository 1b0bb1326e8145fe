// Package config loads cffcheck settings from defaults, a config file and
// the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"cffcheck/internal/classfile"
	"cffcheck/internal/paths"
)

// Config represents the complete cffcheck configuration
type Config struct {
	SupportedClassFileFormat int      `json:"supportedClassFileFormat" mapstructure:"supportedClassFileFormat" toml:"supportedClassFileFormat"`
	ExcludeScopeTest         bool     `json:"excludeScopeTest" mapstructure:"excludeScopeTest" toml:"excludeScopeTest"`
	ExcludeScopeProvided     bool     `json:"excludeScopeProvided" mapstructure:"excludeScopeProvided" toml:"excludeScopeProvided"`
	IgnoreVersionedEntries   bool     `json:"ignoreVersionedEntries" mapstructure:"ignoreVersionedEntries" toml:"ignoreVersionedEntries"`
	Repositories             []string `json:"repositories" mapstructure:"repositories" toml:"repositories"`

	Cache   CacheConfig   `json:"cache" mapstructure:"cache" toml:"cache"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging" toml:"logging"`
}

// CacheConfig contains scan cache configuration
type CacheConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled" toml:"enabled"`
	Path    string `json:"path" mapstructure:"path" toml:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format"`
	Level  string `json:"level" mapstructure:"level" toml:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		SupportedClassFileFormat: classfile.DefaultMaxFormat,
		ExcludeScopeTest:         true,
		ExcludeScopeProvided:     true,
		IgnoreVersionedEntries:   false,
		Repositories:             []string{paths.DefaultMavenRepository()},
		Cache: CacheConfig{
			Enabled: false,
			Path:    paths.DefaultCachePath(),
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// ConfigPathEnvVar names an explicit config file.
const ConfigPathEnvVar = "CFFCHECK_CONFIG_PATH"

// envVarMappings binds environment variables to config keys.
var envVarMappings = map[string]string{
	"CFFCHECK_SUPPORTED_CLASS_FILE_FORMAT": "supportedClassFileFormat",
	"CFFCHECK_EXCLUDE_SCOPE_TEST":          "excludeScopeTest",
	"CFFCHECK_EXCLUDE_SCOPE_PROVIDED":      "excludeScopeProvided",
	"CFFCHECK_IGNORE_VERSIONED_ENTRIES":    "ignoreVersionedEntries",
	"CFFCHECK_REPOSITORIES":                "repositories",
	"CFFCHECK_CACHE_ENABLED":               "cache.enabled",
	"CFFCHECK_CACHE_PATH":                  "cache.path",
	"CFFCHECK_LOG_LEVEL":                   "logging.level",
	"CFFCHECK_LOG_FORMAT":                  "logging.format",
}

// EnvOverride records one environment variable that changed a setting.
type EnvOverride struct {
	EnvVar string `json:"envVar"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// LoadResult describes where a configuration came from.
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
	EnvOverrides []EnvOverride
}

// LoadConfig loads configuration for the project rooted at root.
func LoadConfig(root string) (*Config, error) {
	result, err := LoadConfigWithDetails(root, "")
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadConfigWithDetails loads configuration from explicitPath, or from
// CFFCHECK_CONFIG_PATH, or from <root>/.cffcheck/config.json. A missing
// default file yields defaults; a missing explicit file is an error.
// Environment overrides are applied on top.
func LoadConfigWithDetails(root, explicitPath string) (*LoadResult, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	for envVar, key := range envVarMappings {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, err
		}
	}

	result := &LoadResult{}

	if explicitPath == "" {
		explicitPath = os.Getenv(ConfigPathEnvVar)
	}
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigError{Field: "config", Message: fmt.Sprintf("cannot read %s: %v", explicitPath, err)}
		}
		result.ConfigPath = explicitPath
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(paths.ProjectDir(root))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, &ConfigError{Field: "config", Message: err.Error()}
			}
			result.UsedDefaults = true
		} else {
			result.ConfigPath = v.ConfigFileUsed()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "config", Message: err.Error()}
	}
	result.Config = &cfg
	result.EnvOverrides = envOverrides()

	return result, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("supportedClassFileFormat", d.SupportedClassFileFormat)
	v.SetDefault("excludeScopeTest", d.ExcludeScopeTest)
	v.SetDefault("excludeScopeProvided", d.ExcludeScopeProvided)
	v.SetDefault("ignoreVersionedEntries", d.IgnoreVersionedEntries)
	v.SetDefault("repositories", d.Repositories)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

func envOverrides() []EnvOverride {
	var out []EnvOverride
	for _, envVar := range GetSupportedEnvVars() {
		if value, ok := os.LookupEnv(envVar); ok && value != "" {
			out = append(out, EnvOverride{EnvVar: envVar, Key: envVarMappings[envVar], Value: value})
		}
	}
	return out
}

// GetSupportedEnvVars returns the recognised environment variables, sorted.
func GetSupportedEnvVars() []string {
	vars := make([]string, 0, len(envVarMappings)+1)
	for envVar := range envVarMappings {
		vars = append(vars, envVar)
	}
	vars = append(vars, ConfigPathEnvVar)
	sort.Strings(vars)
	return vars
}

// Save writes the configuration to <root>/.cffcheck/config.json
func (c *Config) Save(root string) error {
	return c.SaveTo(paths.ConfigPath(root))
}

// SaveTo writes the configuration as indented JSON to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SupportedClassFileFormat < classfile.JDK1_1 {
		return &ConfigError{
			Field:   "supportedClassFileFormat",
			Message: fmt.Sprintf("%d is below the oldest class file format %d", c.SupportedClassFileFormat, classfile.JDK1_1),
		}
	}
	if len(c.Repositories) == 0 {
		return &ConfigError{Field: "repositories", Message: "at least one repository is required"}
	}
	for _, r := range c.Repositories {
		if strings.TrimSpace(r) == "" {
			return &ConfigError{Field: "repositories", Message: "repository path is empty"}
		}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "silent", "off":
	default:
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return &ConfigError{Field: "cache.path", Message: "required when the cache is enabled"}
	}
	return nil
}

// ResolvedRepositories returns the repository roots with ~ expanded and
// relative entries anchored at root.
func (c *Config) ResolvedRepositories(root string) ([]string, error) {
	out := make([]string, 0, len(c.Repositories))
	for _, r := range c.Repositories {
		p, err := paths.Resolve(root, r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ResolvedCachePath returns the cache database location for root.
func (c *Config) ResolvedCachePath(root string) (string, error) {
	return paths.Resolve(root, c.Cache.Path)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
