package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	scrapeerrors "sjsage522/rentalscraper/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Scraping configuration
	NumberOfPages  int           `yaml:"number_of_pages"`
	MaxRetries     int           `yaml:"max_retries"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
	RequestDelay   time.Duration `yaml:"request_delay"`
	UserAgent      string        `yaml:"user_agent"`
	ProxyURL       string        `yaml:"proxy_url"`

	// Target site
	SiteOrigin string `yaml:"site_origin"`
	SearchPath string `yaml:"search_path"`
	AreaLabel  string `yaml:"area_label"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration, publishing is disabled when RedisAddr is empty
	RedisAddr            string `yaml:"redis_addr"`
	RedisDB              int    `yaml:"redis_db"`
	RedisStream          string `yaml:"redis_stream"`
	RedisStreamCount     int    `yaml:"redis_stream_count"`
	RedisStreamMaxLength int    `yaml:"redis_stream_max_length"`

	// Memcache configuration, rate-limit blocking is disabled when MemcacheAddr is empty
	MemcacheAddr string        `yaml:"memcache_addr"`
	BlockTime    time.Duration `yaml:"block_time"`

	MetricsAddr  string `yaml:"metrics_addr"`
	ErrorLogFile string `yaml:"error_log_file"`
	ExportDir    string `yaml:"export_dir"`

	// Environment
	Environment string `yaml:"environment"`
}

// DatabaseConfig holds the persistence settings
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"database_name"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the database file for the sqlite3 driver
	Path string `yaml:"path"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		NumberOfPages:  5,
		MaxRetries:     3,
		RequestTimeout: 10 * time.Second,
		RetryBackoff:   3 * time.Second,
		RequestDelay:   2 * time.Second,
		UserAgent:      "Mozilla/5.0",
		SiteOrigin:     "https://www.olx.ua",
		SearchPath:     "/q-%D0%BE%D1%80%D0%B5%D0%BD%D0%B4%D0%B0-%D0%B6%D0%B8%D1%82%D0%BB%D0%B0/",
		AreaLabel:      "Загальна площа",
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    "5432",
			User:    "scraper",
			Name:    "olx_ads",
			SSLMode: "disable",
			Path:    "ads.db",
		},
		RedisStream:          "ads",
		RedisStreamCount:     1,
		RedisStreamMaxLength: 1000,
		BlockTime:            5 * time.Minute,
		ErrorLogFile:         "scraper.log",
		ExportDir:            "exports",
		Environment:          "development",
	}
}

// LoadConfig loads defaults, then the YAML file named by CONFIG_FILE (if any),
// then environment variable overrides
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return scrapeerrors.NewConfiguration("failed to read config file", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return scrapeerrors.NewConfiguration("failed to parse config file", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.NumberOfPages = getEnvAsInt("NUMBER_OF_PAGES", c.NumberOfPages)
	c.MaxRetries = getEnvAsInt("MAX_RETRIES", c.MaxRetries)
	c.RequestTimeout = getEnvAsSeconds("REQUEST_TIMEOUT_SECONDS", c.RequestTimeout)
	c.RetryBackoff = getEnvAsSeconds("RETRY_BACKOFF_SECONDS", c.RetryBackoff)
	c.RequestDelay = getEnvAsSeconds("REQUEST_DELAY_SECONDS", c.RequestDelay)
	c.UserAgent = getEnv("USER_AGENT", c.UserAgent)
	c.ProxyURL = getEnv("PROXY_URL", c.ProxyURL)

	c.SiteOrigin = getEnv("SITE_ORIGIN", c.SiteOrigin)
	c.SearchPath = getEnv("SEARCH_PATH", c.SearchPath)
	c.AreaLabel = getEnv("AREA_LABEL", c.AreaLabel)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getEnvAsInt("REDIS_DB", c.RedisDB)
	c.RedisStream = getEnv("REDIS_STREAM", c.RedisStream)
	c.RedisStreamCount = getEnvAsInt("REDIS_STREAM_COUNT", c.RedisStreamCount)
	c.RedisStreamMaxLength = getEnvAsInt("REDIS_STREAM_MAX_LENGTH", c.RedisStreamMaxLength)

	c.MemcacheAddr = getEnv("MEMCACHE_ADDR", c.MemcacheAddr)
	c.BlockTime = getEnvAsSeconds("BLOCK_TIME_SECONDS", c.BlockTime)

	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)
	c.ErrorLogFile = getEnv("ERROR_LOG_FILE", c.ErrorLogFile)
	c.ExportDir = getEnv("EXPORT_DIR", c.ExportDir)
	c.Environment = getEnv("SCRAPER_ENVIRONMENT", c.Environment)
}

// Validate checks the values the pipeline depends on
func (c *Config) Validate() error {
	if c.NumberOfPages <= 0 {
		return scrapeerrors.NewConfiguration(fmt.Sprintf("number_of_pages must be positive, got %d", c.NumberOfPages), nil)
	}
	if c.MaxRetries <= 0 {
		return scrapeerrors.NewConfiguration(fmt.Sprintf("max_retries must be positive, got %d", c.MaxRetries), nil)
	}
	if c.SiteOrigin == "" {
		return scrapeerrors.NewConfiguration("site_origin is required", nil)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return scrapeerrors.NewConfiguration(fmt.Sprintf("unsupported database driver %q", c.Database.Driver), nil)
	}
	if c.RedisAddr != "" && c.RedisStreamCount <= 0 {
		return scrapeerrors.NewConfiguration("redis_stream_count must be positive", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return time.Duration(value) * time.Second
	}
	return defaultValue
}
