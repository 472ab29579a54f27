package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Config represents the main application configuration
type Config struct {
	// Metadata provider
	TMDb TMDbConfig `yaml:"tmdb"`

	// Outbound HTTP behaviour
	HTTP HTTPConfig `yaml:"http"`

	// Search result cache
	Cache CacheConfig `yaml:"cache"`

	// Frontends
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// TMDbConfig holds TMDb API configuration
type TMDbConfig struct {
	Token        string `yaml:"token"` // v4 read access token, sent as a bearer credential
	BaseURL      string `yaml:"base_url,omitempty"`
	Language     string `yaml:"language,omitempty"`
	IncludeAdult bool   `yaml:"include_adult,omitempty"`
}

// HTTPConfig holds outbound request settings
type HTTPConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// CacheConfig bounds the (query, page) result cache. An explicit zero TTL
// disables the cache; an absent one gets the default.
type CacheConfig struct {
	TTL        *time.Duration `yaml:"ttl"`
	MaxEntries int            `yaml:"max_entries"`
}

// ResultTTL returns the configured TTL, or the default when unset.
func (c CacheConfig) ResultTTL() time.Duration {
	if c.TTL == nil {
		return defaultCacheTTL
	}
	return *c.TTL
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,omitempty"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
	LogFile  string `yaml:"log_file"`  // interactive UI log destination; empty discards
}

const (
	defaultBaseURL     = "https://api.themoviedb.org/3"
	defaultLanguage    = "en-US"
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 1
	defaultCacheTTL    = 15 * time.Minute
	defaultCacheSize   = 256
	defaultLogLevel    = "info"
)

var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// Default returns a configuration with every optional value set.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load loads configuration from a YAML file with environment variable overrides.
// A missing file is not an error: defaults plus the environment are used, so
// the token may come from MOVIEFINDER_TMDB_TOKEN alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %q is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}

// applyEnvOverrides overrides config values with environment variables
func (c *Config) applyEnvOverrides() {
	// TMDb
	if v := os.Getenv("TMDB_TOKEN"); v != "" && c.TMDb.Token == "" {
		c.TMDb.Token = v
	}
	if v := os.Getenv("MOVIEFINDER_TMDB_TOKEN"); v != "" {
		c.TMDb.Token = v
	}
	if v := os.Getenv("MOVIEFINDER_TMDB_BASE_URL"); v != "" {
		c.TMDb.BaseURL = v
	}
	if v := os.Getenv("MOVIEFINDER_TMDB_LANGUAGE"); v != "" {
		c.TMDb.Language = v
	}
	if v := os.Getenv("MOVIEFINDER_TMDB_INCLUDE_ADULT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.TMDb.IncludeAdult = b
		}
	}

	// HTTP
	if v := os.Getenv("MOVIEFINDER_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTP.Timeout = d
		}
	}
	if v := os.Getenv("MOVIEFINDER_HTTP_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HTTP.MaxAttempts = n
		}
	}

	// Cache
	if v := os.Getenv("MOVIEFINDER_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = &d
		}
	}
	if v := os.Getenv("MOVIEFINDER_CACHE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.MaxEntries = n
		}
	}

	// Telegram
	if v := os.Getenv("MOVIEFINDER_TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Telegram == nil {
			c.Telegram = &TelegramConfig{}
		}
		c.Telegram.BotToken = v
	}

	// App
	if v := os.Getenv("MOVIEFINDER_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("MOVIEFINDER_LOG_FILE"); v != "" {
		c.App.LogFile = v
	}
}

// setDefaults fills zero values. Negative values are left for Validate to reject.
func (c *Config) setDefaults() {
	if c.TMDb.BaseURL == "" {
		c.TMDb.BaseURL = defaultBaseURL
	}
	if c.TMDb.Language == "" {
		c.TMDb.Language = defaultLanguage
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = defaultTimeout
	}
	if c.HTTP.MaxAttempts == 0 {
		c.HTTP.MaxAttempts = defaultMaxAttempts
	}
	if c.Cache.TTL == nil {
		ttl := defaultCacheTTL
		c.Cache.TTL = &ttl
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = defaultCacheSize
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultLogLevel
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.TMDb.Token == "" {
		return fmt.Errorf("tmdb.token is required (set it in the config file or MOVIEFINDER_TMDB_TOKEN)")
	}
	if err := validateURL(c.TMDb.BaseURL, "tmdb.base_url"); err != nil {
		return err
	}

	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	if c.HTTP.MaxAttempts < 1 || c.HTTP.MaxAttempts > 10 {
		return fmt.Errorf("http.max_attempts must be between 1 and 10")
	}
	if c.Cache.ResultTTL() < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative")
	}

	if c.Telegram != nil && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}

	level := strings.ToLower(c.App.LogLevel)
	valid := false
	for _, l := range validLogLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("app.log_level must be one of %s", strings.Join(validLogLevels, ", "))
	}
	return nil
}

// validateURL checks that raw is an absolute http(s) URL with a host.
func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing host", field)
	}
	return nil
}
