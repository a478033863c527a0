package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

// Default values
const (
	DefaultCacheDir  = "~/Downloads/mucache/data"
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 8000
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// ConfigPathEnv names a YAML file overlaid by environment variables
	ConfigPathEnv = "MUCACHE_CONFIG"
)

// Config is the process-wide configuration. It is loaded once at startup and
// passed into each component explicitly.
type Config struct {
	CacheDir    string     `yaml:"cache_dir" env:"MUCACHE_CACHE_DIR" env-default:"~/Downloads/mucache/data"`
	LogDir      string     `yaml:"log_dir" env:"MUCACHE_LOG_DIR" env-default:"logs"`
	Host        string     `yaml:"host" env:"MUCACHE_HOST" env-default:"127.0.0.1"`
	Port        int        `yaml:"port" env:"MUCACHE_PORT" env-default:"8000"`
	Debug       bool       `yaml:"debug" env:"MUCACHE_DEBUG" env-default:"false"`
	OpenBrowser bool       `yaml:"open_browser" env:"MUCACHE_OPEN_BROWSER" env-default:"true"`
	Watch       bool       `yaml:"watch" env:"MUCACHE_WATCH" env-default:"true"`
	HTTP        HTTPConfig `yaml:"http"`
}

// HTTPConfig controls the outbound client used by the site downloaders
type HTTPConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"MUCACHE_HTTP_RPS" env-default:"4"`
	Burst             int     `yaml:"burst" env:"MUCACHE_HTTP_BURST" env-default:"4"`
	Retries           int     `yaml:"retries" env:"MUCACHE_HTTP_RETRIES" env-default:"3"`
	UserAgent         string  `yaml:"user_agent" env:"MUCACHE_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// ValidationError reports a configuration value that cannot be used
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var (
	errEmpty       = errors.New("must not be empty")
	errPortRange   = errors.New("must be between 1 and 65535")
	errNotPositive = errors.New("must be positive")
)

// Load reads configuration from path (when it exists) and the environment.
// An empty path falls back to $MUCACHE_CONFIG.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}

	cfg := &Config{}
	var err error
	if path != "" && fileExists(path) {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied and paths expanded
func Default() *Config {
	cfg := &Config{
		CacheDir:    DefaultCacheDir,
		LogDir:      "logs",
		Host:        DefaultHost,
		Port:        DefaultPort,
		OpenBrowser: true,
		Watch:       true,
		HTTP: HTTPConfig{
			RequestsPerSecond: 4,
			Burst:             4,
			Retries:           3,
			UserAgent:         DefaultUserAgent,
		},
	}
	_ = cfg.normalize()
	return cfg
}

// normalize expands ~ and resolves the log directory relative to the cache
func (c *Config) normalize() error {
	dir, err := homedir.Expand(c.CacheDir)
	if err != nil {
		return &ValidationError{Field: "cache_dir", Value: c.CacheDir, Err: err}
	}
	c.CacheDir = filepath.Clean(dir)

	logDir, err := homedir.Expand(c.LogDir)
	if err != nil {
		return &ValidationError{Field: "log_dir", Value: c.LogDir, Err: err}
	}
	if logDir != "" && !filepath.IsAbs(logDir) {
		logDir = filepath.Join(c.CacheDir, logDir)
	}
	c.LogDir = logDir
	return nil
}

// Validate checks the fields that would make startup fail later
func (c *Config) Validate() error {
	if c.CacheDir == "" || c.CacheDir == "." {
		return &ValidationError{Field: "cache_dir", Value: c.CacheDir, Err: errEmpty}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ValidationError{Field: "port", Value: strconv.Itoa(c.Port), Err: errPortRange}
	}
	if c.HTTP.RequestsPerSecond <= 0 {
		return &ValidationError{Field: "http.requests_per_second", Value: fmt.Sprint(c.HTTP.RequestsPerSecond), Err: errNotPositive}
	}
	if c.HTTP.Burst < 1 {
		return &ValidationError{Field: "http.burst", Value: strconv.Itoa(c.HTTP.Burst), Err: errNotPositive}
	}
	return nil
}

// Addr returns host:port for the HTTP listener
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BaseURL returns the address the player is reachable at
func (c *Config) BaseURL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// SettingsPath returns the location of settings.json
func (c *Config) SettingsPath() string {
	return filepath.Join(c.CacheDir, SettingsFileName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
