package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service and CLI
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Enrichment  EnrichmentConfig  `yaml:"enrichment"`
	SIMRegistry SIMRegistryConfig `yaml:"sim_registry"`
	CallerID    CallerIDConfig    `yaml:"caller_id"`
	Cache       CacheConfig       `yaml:"cache"`
	CellDB      CellDBConfig      `yaml:"celldb"`
	Geofence    GeofenceConfig    `yaml:"geofence"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int      `yaml:"port"`
	Host                string   `yaml:"host"`
	MaxUploadMB         int      `yaml:"max_upload_mb"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
}

// Addr returns host:port for http.Server.
func (c ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// MaxUploadBytes is the request body limit for uploads.
func (c ServerConfig) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

// LoggingConfig selects the zap encoder and level
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// AnalysisConfig holds defaults for analysis requests
type AnalysisConfig struct {
	TopN       int `yaml:"top_n"`
	CallerTopN int `yaml:"caller_top_n"`
}

// EnrichmentConfig bounds the external lookup fan-out
type EnrichmentConfig struct {
	Concurrency    int `yaml:"concurrency"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout is the per-request upstream timeout.
func (c EnrichmentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SIMRegistryConfig holds the SIM registry endpoint. Empty disables lookups.
type SIMRegistryConfig struct {
	BaseURL string `yaml:"base_url"`
}

// CallerIDConfig holds the caller-ID endpoint and key. Both are required.
type CallerIDConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	CountryCode string `yaml:"country_code"`
}

// CacheConfig holds the optional Redis enrichment cache
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLHours int    `yaml:"ttl_hours"`
}

// TTL is how long a cached lookup lives.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLHours) * time.Hour }

// CellDBConfig points at the read-only sqlite cell-site database
type CellDBConfig struct {
	Path string `yaml:"path"`
}

// GeofenceConfig holds geo-fencing settings
type GeofenceConfig struct {
	// Timezone the uploaded sheets' wall clock is read in (IANA name).
	// Empty means the server's local zone.
	Timezone string `yaml:"timezone"`
}

// Location resolves Timezone.
func (c GeofenceConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the configuration file. An empty path yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 50
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 60
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 300
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Analysis.TopN == 0 {
		cfg.Analysis.TopN = 15
	}
	if cfg.Analysis.CallerTopN == 0 {
		cfg.Analysis.CallerTopN = 15
	}
	if cfg.Enrichment.Concurrency == 0 {
		cfg.Enrichment.Concurrency = 8
	}
	if cfg.Enrichment.TimeoutSeconds == 0 {
		cfg.Enrichment.TimeoutSeconds = 10
	}
	if cfg.CallerID.CountryCode == "" {
		cfg.CallerID.CountryCode = "92"
	}
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = "localhost:6379"
	}
	if cfg.Cache.TTLHours == 0 {
		cfg.Cache.TTLHours = 7 * 24
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file in the working directory is read first, if present.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = p
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if baseURL := os.Getenv("SIM_REGISTRY_URL"); baseURL != "" {
		cfg.SIMRegistry.BaseURL = baseURL
	}
	if baseURL := os.Getenv("CALLER_ID_URL"); baseURL != "" {
		cfg.CallerID.BaseURL = baseURL
	}
	if apiKey := os.Getenv("CALLER_ID_API_KEY"); apiKey != "" {
		cfg.CallerID.APIKey = apiKey
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Cache.Addr = addr
		cfg.Cache.Enabled = true
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Cache.Password = password
	}
	if path := os.Getenv("CELL_DB_PATH"); path != "" {
		cfg.CellDB.Path = path
	}
	return cfg, nil
}
