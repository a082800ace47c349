package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the logsift service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Sources SourcesConfig `yaml:"sources"`
	Rules   RulesConfig   `yaml:"rules"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SourcesConfig holds diagnostic source settings.
type SourcesConfig struct {
	Dirs []DirSourceConfig `yaml:"dirs"`
	// Redis is optional; a nil section disables the Redis source.
	Redis *RedisSourceConfig `yaml:"redis"`
}

// DirSourceConfig holds settings for one directory-backed source.
type DirSourceConfig struct {
	Name      string `yaml:"name"` // health check label (default: directory base name)
	Path      string `yaml:"path"`
	Pattern   string `yaml:"pattern"`     // filepath.Match syntax (default: *)
	MaxSizeMB int    `yaml:"max_size_mb"` // per-file read cap (default: 16)
}

// RedisSourceConfig holds settings for the Redis-backed source.
type RedisSourceConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RulesConfig holds the startup rule set location.
type RulesConfig struct {
	// Path points at a JSON mapping or a compiled .bundle file. Empty means
	// the daemon serves only per-request rules.
	Path string `yaml:"path"`
}

// SearchConfig holds search execution settings.
type SearchConfig struct {
	Workers int `yaml:"workers"` // concurrent diagnostic reads (default: GOMAXPROCS)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	for i := range c.Sources.Dirs {
		d := &c.Sources.Dirs[i]
		if d.Name == "" {
			d.Name = filepath.Base(d.Path)
		}
		if d.Pattern == "" {
			d.Pattern = "*"
		}
		if d.MaxSizeMB <= 0 {
			d.MaxSizeMB = 16
		}
	}
	if r := c.Sources.Redis; r != nil {
		if r.KeyPrefix == "" {
			r.KeyPrefix = "logsift:diag:"
		}
		if r.ReadinessTimeout <= 0 {
			r.ReadinessTimeout = 10
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Sources.Dirs) == 0 && c.Sources.Redis == nil {
		return fmt.Errorf("sources: at least one dir or redis source is required")
	}
	seen := make(map[string]struct{}, len(c.Sources.Dirs))
	for i, d := range c.Sources.Dirs {
		if d.Path == "" {
			return fmt.Errorf("sources.dirs[%d].path is required", i)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("sources.dirs[%d].name %q is not unique", i, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	if r := c.Sources.Redis; r != nil && len(r.Addrs) == 0 {
		return fmt.Errorf("sources.redis.addrs is required")
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search.workers must not be negative, got %d", c.Search.Workers)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
