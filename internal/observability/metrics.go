package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational metrics for the lead pipeline.
type Metrics struct {
	// Collection metrics
	RunsTotal      atomic.Int64
	ScrollAttempts atomic.Int64
	CardsSeen      atomic.Int64
	CandidatesOut  atomic.Int64

	// Persistence metrics
	LeadsSaved   atomic.Int64
	LeadsErrored atomic.Int64

	// Enrichment metrics
	LeadsEnriched atomic.Int64
	LookupsTotal  atomic.Int64
	LookupsHit    atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"leadgoat_runs_total", "Total collection runs started", m.RunsTotal.Load()},
		{"leadgoat_scroll_attempts_total", "Total scroll attempts across runs", m.ScrollAttempts.Load()},
		{"leadgoat_cards_seen_total", "Total listing cards observed at extraction time", m.CardsSeen.Load()},
		{"leadgoat_candidates_total", "Total candidates produced after dedup", m.CandidatesOut.Load()},
		{"leadgoat_leads_saved_total", "Total leads upserted successfully", m.LeadsSaved.Load()},
		{"leadgoat_leads_errored_total", "Total per-lead persistence failures", m.LeadsErrored.Load()},
		{"leadgoat_leads_enriched_total", "Total leads enriched successfully", m.LeadsEnriched.Load()},
		{"leadgoat_lookups_total", "Total website-existence lookups issued", m.LookupsTotal.Load()},
		{"leadgoat_lookups_hit_total", "Total lookups that detected a website", m.LookupsHit.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts an HTTP server exposing the metrics endpoint.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server stopped", "error", err)
		}
	}()

	return nil
}
