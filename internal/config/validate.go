package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Scrape.DefaultScore < 0 {
		return fmt.Errorf("scrape.default_score must be >= 0, got %d", cfg.Scrape.DefaultScore)
	}

	if cfg.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be > 0")
	}
	if cfg.Browser.ResultsTimeout <= 0 {
		return fmt.Errorf("browser.results_timeout must be > 0")
	}
	if cfg.Browser.WindowWidth < 1 || cfg.Browser.WindowHeight < 1 {
		return fmt.Errorf("browser.window_width and browser.window_height must be >= 1")
	}

	if cfg.Collector.MaxScrollAttempts < 1 {
		return fmt.Errorf("collector.max_scroll_attempts must be >= 1, got %d", cfg.Collector.MaxScrollAttempts)
	}
	if cfg.Collector.StableAttempts < 1 {
		return fmt.Errorf("collector.stable_attempts must be >= 1, got %d", cfg.Collector.StableAttempts)
	}
	if cfg.Collector.CardCeiling < 1 {
		return fmt.Errorf("collector.card_ceiling must be >= 1, got %d", cfg.Collector.CardCeiling)
	}
	if cfg.Collector.ScrollPulses < 1 {
		return fmt.Errorf("collector.scroll_pulses must be >= 1, got %d", cfg.Collector.ScrollPulses)
	}
	if cfg.Collector.PulsePause < 0 || cfg.Collector.AttemptPause < 0 {
		return fmt.Errorf("collector pauses must be >= 0")
	}

	if cfg.Enrich.LookupTimeout <= 0 {
		return fmt.Errorf("enrich.lookup_timeout must be > 0")
	}
	if cfg.Enrich.LookupInterval < 0 {
		return fmt.Errorf("enrich.lookup_interval must be >= 0")
	}
	if cfg.Enrich.MaxBodySize <= 0 {
		return fmt.Errorf("enrich.max_body_size must be > 0")
	}
	if _, err := url.Parse(cfg.Enrich.SearchBaseURL); err != nil {
		return fmt.Errorf("invalid enrich.search_base_url %q: %w", cfg.Enrich.SearchBaseURL, err)
	}

	switch cfg.Storage.Type {
	case "sqlite":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for sqlite storage")
		}
	case "mongo":
		if cfg.Storage.URI == "" || cfg.Storage.Database == "" || cfg.Storage.Collection == "" {
			return fmt.Errorf("storage.uri, storage.database and storage.collection are required for mongo storage")
		}
	default:
		return fmt.Errorf("storage.type %q is not supported (valid: sqlite, mongo)", cfg.Storage.Type)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}
