package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/sitemapchecker/internal/probe"
)

const (
	DefaultHTTPTimeout = 10 * time.Second
	DefaultLogLevel    = "info"
)

// Config drives one checker run. Values come from the environment, then an
// optional YAML file, then command-line flags.
type Config struct {
	Sitemaps        []string      `yaml:"sitemaps"`
	NotificationURL string        `yaml:"notification_url"`
	CriticalURL     string        `yaml:"critical_url"`
	Ignore          []string      `yaml:"ignore"`
	LogDir          string        `yaml:"log_dir"`   // empty means console only
	LogLevel        string        `yaml:"log_level"` // debug|info|warn|error
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	Concurrency     int           `yaml:"concurrency"` // 0 = one goroutine per sitemap
	UserAgent       string        `yaml:"user_agent"`
	NotifyToken     string        `yaml:"notify_token"`
}

func FromEnv() Config {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = DefaultLogLevel
	}

	timeout := DefaultHTTPTimeout
	if v := os.Getenv("HTTP_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
	}

	concurrency := 0
	if v := os.Getenv("MAX_CONCURRENT_SITEMAPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			concurrency = n
		}
	}

	userAgent := os.Getenv("USER_AGENT")
	if userAgent == "" {
		userAgent = probe.DefaultUserAgent
	}

	return Config{
		Sitemaps:        SplitList(os.Getenv("SITEMAPS")),
		NotificationURL: os.Getenv("NOTIFICATION_URL"),
		CriticalURL:     os.Getenv("CRITICAL_URL"),
		Ignore:          SplitList(os.Getenv("IGNORE_URLS")),
		LogDir:          os.Getenv("LOG_DIR"),
		LogLevel:        logLevel,
		HTTPTimeout:     timeout,
		Concurrency:     concurrency,
		UserAgent:       userAgent,
		NotifyToken:     os.Getenv("NOTIFY_TOKEN"),
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current value.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports every problem at once. Individual sitemap URLs are not
// checked here: a bad one yields an UnreachableSitemap result for that
// sitemap alone, see SitemapWarnings.
func Validate(cfg Config) error {
	var err error
	if len(cfg.Sitemaps) == 0 {
		err = multierr.Append(err, errors.New("at least one sitemap is required"))
	}
	err = multierr.Append(err, requireURL("notification url", cfg.NotificationURL))
	err = multierr.Append(err, requireURL("critical url", cfg.CriticalURL))
	if cfg.Concurrency < 0 {
		err = multierr.Append(err, fmt.Errorf("concurrency must be >= 0, got %d", cfg.Concurrency))
	}
	if cfg.HTTPTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("http timeout must be positive, got %s", cfg.HTTPTimeout))
	}
	if cfg.LogLevel != "" {
		if _, lerr := zapcore.ParseLevel(cfg.LogLevel); lerr != nil {
			err = multierr.Append(err, fmt.Errorf("log level: %w", lerr))
		}
	}
	return err
}

// SitemapWarnings lists sitemap URLs that cannot be fetched as written.
func SitemapWarnings(cfg Config) []error {
	var out []error
	for _, s := range cfg.Sitemaps {
		if err := checkURL("sitemap", s); err != nil {
			out = append(out, err)
		}
	}
	return out
}

func requireURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	return checkURL(name, raw)
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s %q: %w", name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s %q: scheme must be http or https", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s %q: missing host", name, raw)
	}
	return nil
}

// SplitList parses a comma separated env value, dropping blanks.
func SplitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Sink configures the local result receiver.
type Sink struct {
	Addr    string // e.g. "127.0.0.1:8080" or ":8080" in a container
	LogDir  string
	APIKeys []string // empty disables key checks
	RPM     int
	Burst   int
}

func SinkFromEnv() Sink {
	addr := os.Getenv("SINK_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	return Sink{
		Addr:    addr,
		LogDir:  logDir,
		APIKeys: SplitList(os.Getenv("SINK_API_KEYS")),
		RPM:     atoiDefault(os.Getenv("SINK_RPM"), 120),
		Burst:   atoiDefault(os.Getenv("SINK_BURST"), 20),
	}
}

func atoiDefault(v string, def int) int {
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return def
}
