package enrich

import (
	"context"
	"errors"
	"testing"

	"log/slog"
	"os"

	"github.com/IshaanNene/LeadGoat/internal/observability"
	"github.com/IshaanNene/LeadGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeChecker struct {
	exists  bool
	queries []string
}

func (c *fakeChecker) WebsiteExists(ctx context.Context, query string) bool {
	c.queries = append(c.queries, query)
	return c.exists
}

type fakeUpdater struct {
	leads     []*types.Lead
	patches   map[string]types.LeadPatch
	updateErr error
	failID    string
	listErr   error
}

func newFakeUpdater(leads ...*types.Lead) *fakeUpdater {
	return &fakeUpdater{
		leads:   leads,
		patches: make(map[string]types.LeadPatch),
	}
}

func (u *fakeUpdater) Update(ctx context.Context, id string, patch types.LeadPatch) (*types.Lead, error) {
	if u.updateErr != nil && (u.failID == "" || u.failID == id) {
		return nil, u.updateErr
	}
	u.patches[id] = patch
	for _, lead := range u.leads {
		if lead.ID == id {
			return lead, nil
		}
	}
	return &types.Lead{ID: id}, nil
}

func (u *fakeUpdater) List(ctx context.Context) ([]*types.Lead, error) {
	if u.listErr != nil {
		return nil, u.listErr
	}
	return u.leads, nil
}

func newTestEnricher(updater LeadUpdater, checker WebsiteChecker) *Enricher {
	return New(updater, checker, observability.NewMetrics(testLogger), testLogger)
}

// --- Scoring Tests ---

func TestEnrichNoWebsiteScoresHigh(t *testing.T) {
	updater := newFakeUpdater()
	checker := &fakeChecker{exists: false}
	e := newTestEnricher(updater, checker)

	lead := &types.Lead{ID: "1", Name: "Acme Ltd", Location: "Nairobi"}
	res, err := e.Enrich(context.Background(), lead)
	if err != nil {
		t.Fatalf("enrich error: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.PotentialScore != 10 || res.PotentialCategory != types.PotentialHigh {
		t.Errorf("expected 10/High, got %d/%s", res.PotentialScore, res.PotentialCategory)
	}

	if len(checker.queries) != 1 {
		t.Fatalf("expected one lookup, got %d", len(checker.queries))
	}
	if checker.queries[0] != "Acme Ltd Nairobi" {
		t.Errorf("lookup query: got %q", checker.queries[0])
	}

	patch := updater.patches["1"]
	if patch.Website == nil || *patch.Website != "" {
		t.Errorf("expected empty website written back, got %v", patch.Website)
	}
	if patch.AINotes == nil || *patch.AINotes == "" {
		t.Error("expected notes to be written")
	}
}

func TestEnrichDetectedWebsiteScoresMedium(t *testing.T) {
	updater := newFakeUpdater()
	checker := &fakeChecker{exists: true}
	e := newTestEnricher(updater, checker)

	lead := &types.Lead{ID: "1", Name: "Acme Ltd", Location: "Nairobi"}
	res, err := e.Enrich(context.Background(), lead)
	if err != nil {
		t.Fatalf("enrich error: %v", err)
	}
	if res.PotentialScore != 7 || res.PotentialCategory != types.PotentialMedium {
		t.Errorf("expected 7/Medium, got %d/%s", res.PotentialScore, res.PotentialCategory)
	}

	patch := updater.patches["1"]
	if patch.Website == nil || *patch.Website != "Detected" {
		t.Errorf("expected Detected sentinel written back, got %v", patch.Website)
	}
}

func TestEnrichConfirmedWebsiteSkipsLookup(t *testing.T) {
	updater := newFakeUpdater()
	checker := &fakeChecker{exists: false}
	e := newTestEnricher(updater, checker)

	lead := &types.Lead{ID: "1", Name: "Acme Ltd", Website: "https://acme.example.com"}
	res, err := e.Enrich(context.Background(), lead)
	if err != nil {
		t.Fatalf("enrich error: %v", err)
	}
	if res.PotentialScore != 7 || res.PotentialCategory != types.PotentialMedium {
		t.Errorf("expected 7/Medium, got %d/%s", res.PotentialScore, res.PotentialCategory)
	}
	if len(checker.queries) != 0 {
		t.Errorf("expected no lookup for a confirmed website, got %d", len(checker.queries))
	}
}

func TestEnrichPlaceholderWebsiteScoresLow(t *testing.T) {
	updater := newFakeUpdater()
	e := newTestEnricher(updater, &fakeChecker{})

	lead := &types.Lead{ID: "1", Name: "Acme Ltd", Website: "null"}
	res, err := e.Enrich(context.Background(), lead)
	if err != nil {
		t.Fatalf("enrich error: %v", err)
	}
	if res.PotentialScore != 5 || res.PotentialCategory != types.PotentialLow {
		t.Errorf("expected 5/Low, got %d/%s", res.PotentialScore, res.PotentialCategory)
	}
}

// --- Failure Handling Tests ---

func TestEnrichSwallowsUpdateFailure(t *testing.T) {
	updater := newFakeUpdater()
	updater.updateErr = errors.New("write conflict")
	e := newTestEnricher(updater, &fakeChecker{})

	res, err := e.Enrich(context.Background(), &types.Lead{ID: "1", Name: "Acme Ltd"})
	if err != nil {
		t.Fatalf("per-lead failure must not surface as error, got: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil result on swallowed failure, got %+v", res)
	}
}

func TestEnrichCancelledContext(t *testing.T) {
	e := newTestEnricher(newFakeUpdater(), &fakeChecker{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Enrich(ctx, &types.Lead{ID: "1", Name: "Acme Ltd"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation to propagate, got: %v", err)
	}
}

// --- Bulk Tests ---

func TestEnrichAllContinuesPastFailures(t *testing.T) {
	updater := newFakeUpdater(
		&types.Lead{ID: "1", Name: "First"},
		&types.Lead{ID: "2", Name: "Second"},
		&types.Lead{ID: "3", Name: "Third"},
	)
	updater.updateErr = errors.New("write conflict")
	updater.failID = "2"
	e := newTestEnricher(updater, &fakeChecker{})

	count, err := e.EnrichAll(context.Background())
	if err != nil {
		t.Fatalf("bulk enrich error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 enriched, got %d", count)
	}
}

func TestEnrichAllListFailure(t *testing.T) {
	updater := newFakeUpdater()
	updater.listErr = errors.New("store unavailable")
	e := newTestEnricher(updater, &fakeChecker{})

	if _, err := e.EnrichAll(context.Background()); err == nil {
		t.Fatal("expected list failure to surface")
	}
}
