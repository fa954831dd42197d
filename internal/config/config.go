// Package config provides runtime configuration for the search service.
// Precedence, lowest to highest: built-in defaults, optional YAML file,
// environment variables. Command-line flags in cmd/server override all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration knobs for the server.
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	UseMemory     bool   `yaml:"use_memory"`

	SerpAPIKey       string `yaml:"serpapi_key"`
	RainforestAPIKey string `yaml:"rainforest_key"`

	DefaultZipCode string `yaml:"default_zip_code"`

	MaxResults        int           `yaml:"max_results"`
	FastTimeout       time.Duration `yaml:"fast_timeout"`
	SlowTimeout       time.Duration `yaml:"slow_timeout"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	AmazonMinInterval time.Duration `yaml:"amazon_min_interval"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		HTTPAddr:          ":8080",
		MetricsAddr:       ":9090",
		DefaultZipCode:    "10001",
		MaxResults:        60,
		FastTimeout:       3 * time.Second,
		SlowTimeout:       8 * time.Second,
		CacheTTL:          30 * time.Minute,
		AmazonMinInterval: time.Second,
		ShutdownTimeout:   15 * time.Second,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getenv("HTTP_ADDR", c.HTTPAddr)
	c.MetricsAddr = getenv("METRICS_ADDR", c.MetricsAddr)
	c.PostgresDSN = getenv("POSTGRES_DSN", c.PostgresDSN)
	c.ClickhouseDSN = getenv("CLICKHOUSE_DSN", c.ClickhouseDSN)
	c.UseMemory = boolenv("USE_MEMORY", c.UseMemory)
	c.SerpAPIKey = getenv("SERPAPI_KEY", c.SerpAPIKey)
	c.RainforestAPIKey = getenv("RAINFOREST_API_KEY", c.RainforestAPIKey)
	c.DefaultZipCode = getenv("DEFAULT_ZIP_CODE", c.DefaultZipCode)
	c.MaxResults = intenv("MAX_RESULTS", c.MaxResults)
	c.FastTimeout = durenv("FAST_TIMEOUT", c.FastTimeout)
	c.SlowTimeout = durenv("SLOW_TIMEOUT", c.SlowTimeout)
	c.CacheTTL = durenv("CACHE_TTL", c.CacheTTL)
	c.AmazonMinInterval = durenv("AMAZON_MIN_INTERVAL", c.AmazonMinInterval)
	c.ShutdownTimeout = durenv("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
}

// Validate checks that the configuration is runnable.
func (c *Config) Validate() error {
	if !c.UseMemory && (c.PostgresDSN == "" || c.ClickhouseDSN == "") {
		return fmt.Errorf("postgres_dsn and clickhouse_dsn are required unless use_memory is set")
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.FastTimeout <= 0 || c.SlowTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intenv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// LoadEnvFile loads environment variables from a .env file in the working
// directory if it exists. Existing environment variables are not overridden.
func LoadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
