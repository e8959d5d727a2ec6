package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for LeadGoat.
type Config struct {
	Scrape    ScrapeConfig    `mapstructure:"scrape"    yaml:"scrape"`
	Browser   BrowserConfig   `mapstructure:"browser"   yaml:"browser"`
	Collector CollectorConfig `mapstructure:"collector" yaml:"collector"`
	Enrich    EnrichConfig    `mapstructure:"enrich"    yaml:"enrich"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
}

// ScrapeConfig controls the overall scrape job.
type ScrapeConfig struct {
	DefaultQuery string `mapstructure:"default_query" yaml:"default_query"`
	DefaultScore int    `mapstructure:"default_score" yaml:"default_score"`
}

// BrowserConfig controls the Rod-driven browser session.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless"           yaml:"headless"`
	Stealth           bool          `mapstructure:"stealth"            yaml:"stealth"`
	UserAgent         string        `mapstructure:"user_agent"         yaml:"user_agent"`
	WindowWidth       int           `mapstructure:"window_width"       yaml:"window_width"`
	WindowHeight      int           `mapstructure:"window_height"      yaml:"window_height"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ResultsTimeout    time.Duration `mapstructure:"results_timeout"    yaml:"results_timeout"`
	ScreenshotPath    string        `mapstructure:"screenshot_path"    yaml:"screenshot_path"`
}

// CollectorConfig controls the incremental scroll loop.
type CollectorConfig struct {
	MaxScrollAttempts int           `mapstructure:"max_scroll_attempts" yaml:"max_scroll_attempts"`
	StableAttempts    int           `mapstructure:"stable_attempts"     yaml:"stable_attempts"`
	CardCeiling       int           `mapstructure:"card_ceiling"        yaml:"card_ceiling"`
	ScrollPulses      int           `mapstructure:"scroll_pulses"       yaml:"scroll_pulses"`
	ScrollDelta       int           `mapstructure:"scroll_delta"        yaml:"scroll_delta"`
	PulsePause        time.Duration `mapstructure:"pulse_pause"         yaml:"pulse_pause"`
	AttemptPause      time.Duration `mapstructure:"attempt_pause"       yaml:"attempt_pause"`
}

// EnrichConfig controls the website-existence lookup.
type EnrichConfig struct {
	LookupTimeout  time.Duration `mapstructure:"lookup_timeout"   yaml:"lookup_timeout"`
	LookupInterval time.Duration `mapstructure:"lookup_interval"  yaml:"lookup_interval"`
	SearchBaseURL  string        `mapstructure:"search_base_url"  yaml:"search_base_url"`
	MaxBodySize    int64         `mapstructure:"max_body_size"    yaml:"max_body_size"`
}

// StorageConfig controls the lead store backend.
type StorageConfig struct {
	Type string `mapstructure:"type" yaml:"type"` // sqlite, mongo

	// SQLite settings.
	Path string `mapstructure:"path" yaml:"path"`

	// Mongo settings.
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			DefaultQuery: "business Nairobi",
			DefaultScore: 5,
		},
		Browser: BrowserConfig{
			Headless:          true,
			Stealth:           true,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WindowWidth:       1280,
			WindowHeight:      800,
			NavigationTimeout: 90 * time.Second,
			ResultsTimeout:    30 * time.Second,
			ScreenshotPath:    "error-screenshot.png",
		},
		Collector: CollectorConfig{
			MaxScrollAttempts: 25,
			StableAttempts:    5,
			CardCeiling:       100,
			ScrollPulses:      3,
			ScrollDelta:       3000,
			PulsePause:        1500 * time.Millisecond,
			AttemptPause:      2 * time.Second,
		},
		Enrich: EnrichConfig{
			LookupTimeout:  5 * time.Second,
			LookupInterval: 1 * time.Second,
			SearchBaseURL:  "https://www.google.com/search",
			MaxBodySize:    2 * 1024 * 1024, // 2MB
		},
		Storage: StorageConfig{
			Type:       "sqlite",
			Path:       "./leads.db",
			URI:        "mongodb://localhost:27017",
			Database:   "leadgoat",
			Collection: "leads",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
