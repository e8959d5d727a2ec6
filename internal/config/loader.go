package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and CLI flags.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults from struct
	setDefaults(v, cfg)

	// Environment variable support
	v.SetEnvPrefix("LEADGOAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search default locations
		v.SetConfigName("leadgoat")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".leadgoat"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("scrape.default_query", cfg.Scrape.DefaultQuery)
	v.SetDefault("scrape.default_score", cfg.Scrape.DefaultScore)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.user_agent", cfg.Browser.UserAgent)
	v.SetDefault("browser.window_width", cfg.Browser.WindowWidth)
	v.SetDefault("browser.window_height", cfg.Browser.WindowHeight)
	v.SetDefault("browser.navigation_timeout", cfg.Browser.NavigationTimeout)
	v.SetDefault("browser.results_timeout", cfg.Browser.ResultsTimeout)
	v.SetDefault("browser.screenshot_path", cfg.Browser.ScreenshotPath)

	v.SetDefault("collector.max_scroll_attempts", cfg.Collector.MaxScrollAttempts)
	v.SetDefault("collector.stable_attempts", cfg.Collector.StableAttempts)
	v.SetDefault("collector.card_ceiling", cfg.Collector.CardCeiling)
	v.SetDefault("collector.scroll_pulses", cfg.Collector.ScrollPulses)
	v.SetDefault("collector.scroll_delta", cfg.Collector.ScrollDelta)
	v.SetDefault("collector.pulse_pause", cfg.Collector.PulsePause)
	v.SetDefault("collector.attempt_pause", cfg.Collector.AttemptPause)

	v.SetDefault("enrich.lookup_timeout", cfg.Enrich.LookupTimeout)
	v.SetDefault("enrich.lookup_interval", cfg.Enrich.LookupInterval)
	v.SetDefault("enrich.search_base_url", cfg.Enrich.SearchBaseURL)
	v.SetDefault("enrich.max_body_size", cfg.Enrich.MaxBodySize)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.uri", cfg.Storage.URI)
	v.SetDefault("storage.database", cfg.Storage.Database)
	v.SetDefault("storage.collection", cfg.Storage.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
