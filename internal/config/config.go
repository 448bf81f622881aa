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

// Usage store drivers.
const (
	DriverNone   = "none"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// Config holds the justext API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Quota      QuotaConfig      `yaml:"quota"`
	Justify    JustifyConfig    `yaml:"justify"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit"`
	UsageStore UsageStoreConfig `yaml:"usage_store"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// QuotaConfig holds the per-token word quota.
type QuotaConfig struct {
	MaxWords int64 `yaml:"max_words"`
}

// JustifyConfig holds layout settings.
type JustifyConfig struct {
	Width int `yaml:"width"`
}

// RateLimitConfig holds per-IP token issuance limits. Zero disables limiting.
type RateLimitConfig struct {
	IssuePerSecond float64 `yaml:"issue_per_second"`
	IssueBurst     int     `yaml:"issue_burst"`
}

// UsageStoreConfig holds the optional write-behind usage mirror.
type UsageStoreConfig struct {
	Driver           string   `yaml:"driver"` // none (default), redis, valkey
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TTLHours         int      `yaml:"ttl_hours"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a usage mirror is configured.
func (c UsageStoreConfig) Enabled() bool {
	return c.Driver != DriverNone
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from the given YAML file.
func LoadFile(configPath string) (Config, error) {
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
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 4 << 20
	}
	if c.Quota.MaxWords <= 0 {
		c.Quota.MaxWords = 80000
	}
	if c.Justify.Width <= 0 {
		c.Justify.Width = 80
	}
	if c.RateLimit.IssuePerSecond > 0 && c.RateLimit.IssueBurst <= 0 {
		c.RateLimit.IssueBurst = 1
	}
	if c.UsageStore.Driver == "" {
		c.UsageStore.Driver = DriverNone
	}
	if c.UsageStore.KeyPrefix == "" {
		c.UsageStore.KeyPrefix = "justext:"
	}
	if c.UsageStore.TTLHours <= 0 {
		c.UsageStore.TTLHours = 30 * 24
	}
	if c.UsageStore.ReadinessTimeout <= 0 {
		c.UsageStore.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.RateLimit.IssuePerSecond < 0 {
		return fmt.Errorf("ratelimit.issue_per_second must not be negative, got %g", c.RateLimit.IssuePerSecond)
	}
	switch c.UsageStore.Driver {
	case DriverNone:
	case DriverRedis, DriverValkey:
		if len(c.UsageStore.Addrs) == 0 {
			return fmt.Errorf("usage_store.addrs is required for driver %q", c.UsageStore.Driver)
		}
	default:
		return fmt.Errorf(
			"usage_store.driver must be \"none\", \"redis\" or \"valkey\", got %q",
			c.UsageStore.Driver,
		)
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
