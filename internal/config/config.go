package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"stockroom/internal/classify"
	"stockroom/internal/listing"
)

// Config represents the complete configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	MinIO    MinIOConfig    `toml:"minio"`
	NATS     NATSConfig     `toml:"nats"`
	Listing  ListingConfig  `toml:"listing"`
	Cache    CacheConfig    `toml:"cache"`
	Jobs     JobsConfig     `toml:"jobs"`
	Exports  ExportsConfig  `toml:"exports"`
}

type ServerConfig struct {
	Port      int    `toml:"port"`
	JWTSecret string `toml:"jwt_secret"`
}

type DatabaseConfig struct {
	URL             string   `toml:"url"`
	MaxConns        int32    `toml:"max_conns"`
	MaxConnLifetime Duration `toml:"max_conn_lifetime"`
	EnsureSchema    bool     `toml:"ensure_schema"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

// NATSConfig: an empty URL disables change events
type NATSConfig struct {
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// ListingConfig tunes list views
type ListingConfig struct {
	classify.Thresholds
	PageSizes       []int `toml:"page_sizes"`
	DefaultPageSize int   `toml:"default_page_size"`
}

type CacheConfig struct {
	CollectionTTL Duration `toml:"collection_ttl"`
}

type JobsConfig struct {
	AlertInterval Duration `toml:"alert_interval"`
	// EvaluateOnChange re-evaluates a tenant's alert rules when its stock changes
	EvaluateOnChange bool `toml:"evaluate_on_change"`
}

type ExportsConfig struct {
	URLExpiry Duration `toml:"url_expiry"`
	// RateLimit is the number of exports a tenant may start per minute
	RateLimit int `toml:"rate_limit"`
}

// Duration reads TOML strings such as "5m" or "90s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{MaxConns: 10, MaxConnLifetime: Duration{time.Hour}},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		MinIO: MinIOConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "stockroom-exports",
		},
		NATS: NATSConfig{SubjectPrefix: "stockroom.changes"},
		Listing: ListingConfig{
			Thresholds:      classify.DefaultThresholds(),
			PageSizes:       slices.Clone(listing.DefaultPageSizes),
			DefaultPageSize: listing.DefaultPageSizes[0],
		},
		Cache:   CacheConfig{CollectionTTL: Duration{5 * time.Minute}},
		Jobs:    JobsConfig{AlertInterval: Duration{5 * time.Minute}, EvaluateOnChange: true},
		Exports: ExportsConfig{URLExpiry: Duration{15 * time.Minute}, RateLimit: 10},
	}
}

// Load reads filename over the defaults, applies environment overrides and
// validates the result. An empty filename skips the file.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		if _, err := toml.DecodeFile(filename, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = n
		}
		return nil
	}

	str("DATABASE_URL", &c.Database.URL)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("MINIO_ENDPOINT", &c.MinIO.Endpoint)
	str("MINIO_ACCESS_KEY", &c.MinIO.AccessKey)
	str("MINIO_SECRET_KEY", &c.MinIO.SecretKey)
	str("MINIO_BUCKET", &c.MinIO.Bucket)
	str("NATS_URL", &c.NATS.URL)
	str("JWT_SECRET", &c.Server.JWTSecret)
	if v, ok := lookup("MINIO_USE_SSL"); ok && v != "" {
		c.MinIO.UseSSL = v == "true"
	}
	if err := num("REDIS_DB", &c.Redis.DB); err != nil {
		return err
	}
	return num("PORT", &c.Server.Port)
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required (DATABASE_URL)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if len(c.Listing.PageSizes) == 0 {
		return fmt.Errorf("listing.page_sizes cannot be empty")
	}
	for _, size := range c.Listing.PageSizes {
		if size <= 0 {
			return fmt.Errorf("listing.page_sizes must be positive, got %d", size)
		}
	}
	if !slices.Contains(c.Listing.PageSizes, c.Listing.DefaultPageSize) {
		return fmt.Errorf("listing.default_page_size %d is not one of listing.page_sizes", c.Listing.DefaultPageSize)
	}
	if c.Listing.OverMaxMultiplier < 1 {
		return fmt.Errorf("listing.over_max_multiplier must be at least 1, got %v", c.Listing.OverMaxMultiplier)
	}
	if c.Jobs.AlertInterval.Duration <= 0 {
		return fmt.Errorf("jobs.alert_interval must be positive")
	}
	return nil
}
