package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Browser  BrowserConfig  `yaml:"browser"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StorageConfig selects where snapshots are kept: "file", "postgres" or "sqlite".
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	DataDir     string `yaml:"data_dir"`
	HistoryFile string `yaml:"history_file"`
	LatestFile  string `yaml:"latest_file"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	SQLitePath   string `yaml:"sqlite_path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type BrowserConfig struct {
	Driver    string `yaml:"driver"` // "chromedp" or "rod"
	Headless  bool   `yaml:"headless"`
	NoSandbox bool   `yaml:"no_sandbox"`
	Stealth   bool   `yaml:"stealth"`
	BinPath   string `yaml:"bin_path"`
	RemoteURL string `yaml:"remote_url"`
}

type ScraperConfig struct {
	TargetsFile       string        `yaml:"targets_file"`
	UserAgent         string        `yaml:"user_agent"`
	Accept            string        `yaml:"accept"`
	AcceptLanguage    string        `yaml:"accept_language"`
	MaxAttempts       int           `yaml:"max_attempts"`
	RetryWait         time.Duration `yaml:"retry_wait"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	TextTimeout       time.Duration `yaml:"text_timeout"`
	Concurrency       int           `yaml:"concurrency"`
	RunTimeout        time.Duration `yaml:"run_timeout"`
}

type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
)

// Load reads the configuration from the environment, then overlays CONFIG_FILE when set.
func Load() (*Config, error) {
	cfg := FromEnv()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvAsInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvAsInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", "file"),
			DataDir:     getEnv("DATA_DIR", "data"),
			HistoryFile: getEnv("HISTORY_FILE", "history.json"),
			LatestFile:  getEnv("LATEST_FILE", "teams.json"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "nsac"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:   getEnv("SQLITE_PATH", "data/nsac.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Browser: BrowserConfig{
			Driver:    getEnv("BROWSER_DRIVER", "chromedp"),
			Headless:  getEnvAsBool("BROWSER_HEADLESS", true),
			NoSandbox: getEnvAsBool("BROWSER_NO_SANDBOX", false),
			Stealth:   getEnvAsBool("BROWSER_STEALTH", false),
			BinPath:   getEnv("BROWSER_BIN", ""),
			RemoteURL: getEnv("BROWSER_REMOTE_URL", ""),
		},
		Scraper: ScraperConfig{
			TargetsFile:       getEnv("TARGETS_FILE", "config.json"),
			UserAgent:         getEnv("SCRAPER_USER_AGENT", DefaultUserAgent),
			Accept:            getEnv("SCRAPER_ACCEPT", DefaultAccept),
			AcceptLanguage:    getEnv("SCRAPER_ACCEPT_LANGUAGE", DefaultAcceptLanguage),
			MaxAttempts:       getEnvAsInt("SCRAPER_MAX_ATTEMPTS", 3),
			RetryWait:         getEnvAsDuration("SCRAPER_RETRY_WAIT", 2*time.Second),
			NavigationTimeout: getEnvAsDuration("SCRAPER_NAVIGATION_TIMEOUT", 60*time.Second),
			TextTimeout:       getEnvAsDuration("SCRAPER_TEXT_TIMEOUT", 5*time.Second),
			Concurrency:       getEnvAsInt("SCRAPER_CONCURRENCY", 5),
			RunTimeout:        getEnvAsDuration("SCRAPE_RUN_TIMEOUT", 15*time.Minute),
		},
		Schedule: ScheduleConfig{
			Cron: getEnv("SCRAPE_SCHEDULE", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// ApplyFile decodes a YAML config file over c. Only keys present in the file
// change, so explicit zero values such as `headless: false` take effect. A
// missing file leaves c unchanged.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Override copies the non-zero fields of o into c. Command-line flags use it,
// where an empty value means the flag was not given.
func (c *Config) Override(o Config) error {
	if err := mergo.Merge(c, o, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to apply overrides: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case "file", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	switch c.Browser.Driver {
	case "chromedp", "rod":
	default:
		errs = append(errs, fmt.Errorf("unknown browser driver %q", c.Browser.Driver))
	}
	if c.Scraper.MaxAttempts < 1 {
		errs = append(errs, errors.New("scraper max attempts must be at least 1"))
	}
	if c.Scraper.RetryWait < 0 {
		errs = append(errs, errors.New("scraper retry wait must not be negative"))
	}
	if c.Scraper.TextTimeout <= 0 || c.Scraper.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("scraper timeouts must be positive"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Headers is the fixed header set every browser page sends.
func (c *ScraperConfig) Headers() map[string]string {
	return map[string]string{
		"User-Agent":      c.UserAgent,
		"Accept":          c.Accept,
		"Accept-Language": c.AcceptLanguage,
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("2s", "500ms") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
