package enrich

import (
	"context"
	"log/slog"

	"github.com/IshaanNene/LeadGoat/internal/observability"
	"github.com/IshaanNene/LeadGoat/internal/types"
)

const (
	// websiteDetected marks a lead whose website existence was inferred by
	// lookup without knowing the actual URL.
	websiteDetected = "Detected"

	// websiteUnset is the legacy placeholder some stored leads carry instead
	// of an empty website.
	websiteUnset = "null"
)

// WebsiteChecker reports whether an external lookup finds a website for the
// query.
type WebsiteChecker interface {
	WebsiteExists(ctx context.Context, query string) bool
}

// LeadUpdater is the slice of the persistence layer the enricher needs:
// update-in-place and listing. Enrichment never creates leads.
type LeadUpdater interface {
	Update(ctx context.Context, id string, patch types.LeadPatch) (*types.Lead, error)
	List(ctx context.Context) ([]*types.Lead, error)
}

// Result is the outcome of enriching one lead.
type Result struct {
	LeadID            string
	PotentialScore    int
	PotentialCategory types.PotentialCategory
}

// Enricher assigns an opportunity score and category to persisted leads,
// performing a best-effort website lookup for leads without one.
type Enricher struct {
	updater LeadUpdater
	checker WebsiteChecker
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates an Enricher.
func New(updater LeadUpdater, checker WebsiteChecker, metrics *observability.Metrics, logger *slog.Logger) *Enricher {
	return &Enricher{
		updater: updater,
		checker: checker,
		metrics: metrics,
		logger:  logger.With("component", "enricher"),
	}
}

// Enrich scores one lead and writes the result back through the update
// path. Per-lead failures are logged and swallowed — a nil Result with a
// nil error — so batch enrichment continues; only context cancellation
// propagates.
func (e *Enricher) Enrich(ctx context.Context, lead *types.Lead) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := e.enrich(ctx, lead)
	if err != nil {
		e.logger.Error("enrichment failed",
			"lead_id", lead.ID,
			"name", lead.Name,
			"error", &types.EnrichError{LeadID: lead.ID, Name: lead.Name, Err: err},
		)
		return nil, nil
	}
	return res, nil
}

func (e *Enricher) enrich(ctx context.Context, lead *types.Lead) (*Result, error) {
	website := lead.Website

	// A non-empty website is treated as confirmed; only leads without one
	// get the external lookup.
	if website == "" {
		if e.checker.WebsiteExists(ctx, lead.Name+" "+lead.Location) {
			website = websiteDetected
		}
	}

	var (
		score    int
		category types.PotentialCategory
		notes    string
	)
	switch {
	case website == "":
		score, category = 10, types.PotentialHigh
		notes = "No website; prime client for web + automation"
	case website == websiteUnset:
		score, category = 5, types.PotentialLow
		notes = "Website placeholder unset; low priority"
	default:
		score, category = 7, types.PotentialMedium
		notes = "Website exists; may need AI integration"
	}

	_, err := e.updater.Update(ctx, lead.ID, types.LeadPatch{
		Website:           types.String(website),
		PotentialScore:    types.Int(score),
		PotentialCategory: types.Category(category),
		AINotes:           types.String(notes),
	})
	if err != nil {
		return nil, err
	}

	e.metrics.LeadsEnriched.Add(1)
	e.logger.Info("lead enriched",
		"lead_id", lead.ID,
		"name", lead.Name,
		"category", category,
		"score", score,
	)

	return &Result{
		LeadID:            lead.ID,
		PotentialScore:    score,
		PotentialCategory: category,
	}, nil
}

// EnrichAll re-enriches every stored lead, continuing past individual
// failures. It returns the number of leads enriched successfully.
func (e *Enricher) EnrichAll(ctx context.Context) (int, error) {
	all, err := e.updater.List(ctx)
	if err != nil {
		return 0, err
	}

	enriched := 0
	for _, lead := range all {
		res, err := e.Enrich(ctx, lead)
		if err != nil {
			return enriched, err
		}
		if res != nil {
			enriched++
		}
	}

	e.logger.Info("bulk enrichment complete", "leads", len(all), "enriched", enriched)
	return enriched, nil
}
