// Package config loads PageChunk settings from defaults, an optional config
// file, PAGECHUNK_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// EnvPrefix prefixes every environment override, e.g. PAGECHUNK_MAXPAGES.
const EnvPrefix = "PAGECHUNK"

// Sink names accepted in Sinks.
const (
	SinkDataset  = "dataset"
	SinkFiles    = "files"
	SinkPDF      = "pdf"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
	SinkNATS     = "nats"
	SinkStdout   = "stdout"
)

var knownSinks = map[string]bool{
	SinkDataset: true, SinkFiles: true, SinkPDF: true, SinkSQLite: true,
	SinkPostgres: true, SinkNATS: true, SinkStdout: true,
}

// Config holds every runtime setting.
type Config struct {
	StartURLs        []string      `mapstructure:"startUrls"`
	MaxPages         int           `mapstructure:"maxPages"`
	MaxDepth         int           `mapstructure:"maxDepth"`
	OutputFormat     string        `mapstructure:"outputFormat"`
	ChunkSize        int           `mapstructure:"chunkSize"`
	ChunkOverlap     int           `mapstructure:"chunkOverlap"`
	IncludeMetadata  bool          `mapstructure:"includeMetadata"`
	RemoveNavigation bool          `mapstructure:"removeNavigation"`
	FollowLinks      bool          `mapstructure:"followLinks"`
	URLPatterns      []string      `mapstructure:"urlPatterns"`
	SameSite         bool          `mapstructure:"sameSite"`
	UseSitemap       bool          `mapstructure:"useSitemap"`
	Concurrency      int           `mapstructure:"concurrency"`
	FetchTimeout     time.Duration `mapstructure:"fetchTimeout"`
	MaxContentSize   int64         `mapstructure:"maxContentSize"`
	UserAgent        string        `mapstructure:"userAgent"`

	Sinks       []string `mapstructure:"sinks"`
	OutputDir   string   `mapstructure:"outputDir"`
	SQLitePath  string   `mapstructure:"sqlitePath"`
	PostgresDSN string   `mapstructure:"postgresDSN"`
	NATSURL     string   `mapstructure:"natsURL"`
	NATSSubject string   `mapstructure:"natsSubject"`

	MetricsAddr string `mapstructure:"metricsAddr"`
	ListenAddr  string `mapstructure:"listenAddr"`
	LogLevel    string `mapstructure:"logLevel"`
	LogFormat   string `mapstructure:"logFormat"`
}

// Defaults returns the documented default configuration.
func Defaults() Config {
	return Config{
		StartURLs:        []string{},
		MaxPages:         100,
		MaxDepth:         2,
		OutputFormat:     core.FormatMarkdown,
		ChunkSize:        1000,
		ChunkOverlap:     200,
		IncludeMetadata:  true,
		RemoveNavigation: true,
		FollowLinks:      true,
		URLPatterns:      []string{},
		Concurrency:      4,
		FetchTimeout:     30 * time.Second,
		MaxContentSize:   10 << 20,
		UserAgent:        "PageChunk/1.0 (+https://github.com/gaurav-prasanna/pagechunk)",
		Sinks:            []string{SinkDataset},
		OutputDir:        "./storage",
		NATSURL:          "nats://127.0.0.1:4222",
		NATSSubject:      "pagechunk.pages",
		ListenAddr:       ":8080",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// SetDefaults registers every default on v so environment overrides apply to
// all keys.
func SetDefaults(v *viper.Viper) {
	for _, f := range fields(Defaults()) {
		v.SetDefault(f.key, f.value)
	}
}

// Load reads configuration into a Config. path may be empty. Flags must
// already be bound on v.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.StartURLs == nil {
		cfg.StartURLs = []string{}
	}
	if cfg.URLPatterns == nil {
		cfg.URLPatterns = []string{}
	}
	return &cfg, nil
}

// Validate rejects structurally invalid settings. Zero values that have a
// sensible runtime fallback are accepted.
func (c *Config) Validate() error {
	var errs []error

	if !core.ValidFormat(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("outputFormat must be one of markdown, text, json (got %q)", c.OutputFormat))
	}
	if c.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("chunkOverlap must not be negative (got %d)", c.ChunkOverlap))
	}
	if c.MaxPages < 0 {
		errs = append(errs, fmt.Errorf("maxPages must not be negative (got %d)", c.MaxPages))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("maxDepth must not be negative (got %d)", c.MaxDepth))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative (got %d)", c.Concurrency))
	}

	for _, raw := range c.StartURLs {
		if err := ValidateURL(raw); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range c.URLPatterns {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("invalid urlPatterns glob %q", p))
		}
	}

	for _, s := range c.Sinks {
		if !knownSinks[s] {
			errs = append(errs, fmt.Errorf("unknown sink %q", s))
		}
		if s == SinkPostgres && c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres sink requires postgresDSN"))
		}
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logFormat must be text or json (got %q)", c.LogFormat))
	}

	return errors.Join(errs...)
}

// ValidateURL checks that raw is an absolute http(s) URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", raw)
	}
	return nil
}

// HasSink reports whether name is among the configured sinks.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Sinks {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}
