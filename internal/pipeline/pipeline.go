package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/IshaanNene/LeadGoat/internal/config"
	"github.com/IshaanNene/LeadGoat/internal/enrich"
	"github.com/IshaanNene/LeadGoat/internal/observability"
	"github.com/IshaanNene/LeadGoat/internal/types"
)

// websitePlaceholder is the legacy unset marker some leads carry instead of
// an empty website; such leads still get enrichment.
const websitePlaceholder = "null"

// Collector produces candidates for a query.
type Collector interface {
	Collect(ctx context.Context, query string) ([]types.Candidate, error)
}

// Upserter persists one candidate idempotently.
type Upserter interface {
	Upsert(ctx context.Context, cand types.Candidate, source types.Source, defaultScore int) (*types.Lead, error)
}

// Enricher scores one persisted lead. A nil Result means the lead was
// skipped or its enrichment failed and was swallowed.
type Enricher interface {
	Enrich(ctx context.Context, lead *types.Lead) (*enrich.Result, error)
}

// Report summarizes one pipeline run.
type Report struct {
	Query      string
	Scraped    int
	Saved      int
	Enriched   int
	Errored    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Pipeline sequences Collector → Upserter → Enricher over one query. A
// single candidate's failure never aborts the batch.
type Pipeline struct {
	collector Collector
	upserter  Upserter
	enricher  Enricher
	cfg       *config.Config
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates a Pipeline.
func New(cfg *config.Config, c Collector, u Upserter, e Enricher, metrics *observability.Metrics, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		collector: c,
		upserter:  u,
		enricher:  e,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger.With("component", "pipeline"),
	}
}

// Run executes one scrape job and returns its report. The report is always
// populated, even when every individual lead fails.
func (p *Pipeline) Run(ctx context.Context, query string) (*Report, error) {
	report := &Report{
		Query:     query,
		StartedAt: time.Now(),
	}
	p.logger.Info("scrape job starting", "query", query)

	candidates, err := p.collector.Collect(ctx, query)
	if err != nil {
		report.FinishedAt = time.Now()
		return report, err
	}
	report.Scraped = len(candidates)

	if len(candidates) == 0 {
		report.FinishedAt = time.Now()
		p.logger.Info("no leads found", "query", query)
		return report, nil
	}

	p.logger.Info("processing candidates", "count", len(candidates))

	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now()
			return report, err
		}

		p.logger.Info("processing candidate",
			"index", i+1,
			"total", len(candidates),
			"name", cand.Name,
		)

		lead, err := p.upserter.Upsert(ctx, cand, types.SourceGoogleMaps, p.cfg.Scrape.DefaultScore)
		if err != nil {
			report.Errored++
			p.metrics.LeadsErrored.Add(1)
			p.logger.Error("lead save failed", "name", cand.Name, "error", err)
			continue
		}
		report.Saved++
		p.metrics.LeadsSaved.Add(1)

		if lead.Website == "" || lead.Website == websitePlaceholder {
			res, err := p.enricher.Enrich(ctx, lead)
			if err != nil {
				report.FinishedAt = time.Now()
				return report, err
			}
			if res != nil {
				report.Enriched++
				p.logger.Info("lead scored",
					"name", lead.Name,
					"category", res.PotentialCategory,
					"score", res.PotentialScore,
				)
			}
		} else {
			p.logger.Debug("lead already has website", "name", lead.Name, "website", lead.Website)
		}
	}

	report.FinishedAt = time.Now()
	p.logger.Info("scrape job complete",
		"query", query,
		"scraped", report.Scraped,
		"saved", report.Saved,
		"enriched", report.Enriched,
		"errored", report.Errored,
		"elapsed", report.Duration().Round(time.Millisecond),
	)
	return report, nil
}
