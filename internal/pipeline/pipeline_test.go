package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"log/slog"
	"os"

	"github.com/IshaanNene/LeadGoat/internal/config"
	"github.com/IshaanNene/LeadGoat/internal/enrich"
	"github.com/IshaanNene/LeadGoat/internal/observability"
	"github.com/IshaanNene/LeadGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeCollector struct {
	candidates []types.Candidate
	err        error
}

func (c *fakeCollector) Collect(ctx context.Context, query string) ([]types.Candidate, error) {
	return c.candidates, c.err
}

type fakeUpserter struct {
	nextID   int
	failName string
	saved    []string
}

func (u *fakeUpserter) Upsert(ctx context.Context, cand types.Candidate, source types.Source, defaultScore int) (*types.Lead, error) {
	if cand.Name == u.failName {
		return nil, errors.New("store rejected candidate")
	}
	u.nextID++
	u.saved = append(u.saved, cand.Name)
	return &types.Lead{
		ID:      fmt.Sprintf("%d", u.nextID),
		Name:    cand.Name,
		Website: cand.Website,
		Source:  source,
		Score:   defaultScore,
	}, nil
}

type fakeEnricher struct {
	enriched []string
	err      error
}

func (e *fakeEnricher) Enrich(ctx context.Context, lead *types.Lead) (*enrich.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.enriched = append(e.enriched, lead.Name)
	return &enrich.Result{
		LeadID:            lead.ID,
		PotentialScore:    10,
		PotentialCategory: types.PotentialHigh,
	}, nil
}

func newTestPipeline(c Collector, u Upserter, e Enricher) *Pipeline {
	return New(config.DefaultConfig(), c, u, e, observability.NewMetrics(testLogger), testLogger)
}

func candidates(n int) []types.Candidate {
	out := make([]types.Candidate, n)
	for i := range out {
		out[i] = types.Candidate{Name: fmt.Sprintf("Business %d", i+1)}
	}
	return out
}

func TestRunCountsSavedAndEnriched(t *testing.T) {
	col := &fakeCollector{candidates: candidates(10)}
	ups := &fakeUpserter{}
	enr := &fakeEnricher{}
	p := newTestPipeline(col, ups, enr)

	report, err := p.Run(context.Background(), "business Nairobi")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	if report.Scraped != 10 {
		t.Errorf("scraped: got %d", report.Scraped)
	}
	if report.Saved != 10 {
		t.Errorf("saved: got %d", report.Saved)
	}
	if report.Enriched != 10 {
		t.Errorf("enriched: got %d", report.Enriched)
	}
	if report.Errored != 0 {
		t.Errorf("errored: got %d", report.Errored)
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("finished before started")
	}
}

func TestRunContinuesPastUpsertFailure(t *testing.T) {
	col := &fakeCollector{candidates: candidates(10)}
	ups := &fakeUpserter{failName: "Business 4"}
	enr := &fakeEnricher{}
	p := newTestPipeline(col, ups, enr)

	report, err := p.Run(context.Background(), "business Nairobi")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	if report.Saved != 9 {
		t.Errorf("saved: got %d, want 9", report.Saved)
	}
	if report.Errored != 1 {
		t.Errorf("errored: got %d, want 1", report.Errored)
	}
	if report.Enriched != 9 {
		t.Errorf("enriched: got %d, want 9", report.Enriched)
	}
	for _, name := range ups.saved {
		if name == "Business 4" {
			t.Error("failed candidate was recorded as saved")
		}
	}
}

func TestRunSkipsEnrichmentForConfirmedWebsites(t *testing.T) {
	cands := candidates(3)
	cands[0].Website = "https://first.example.com"
	cands[2].Website = "null"

	col := &fakeCollector{candidates: cands}
	ups := &fakeUpserter{}
	enr := &fakeEnricher{}
	p := newTestPipeline(col, ups, enr)

	report, err := p.Run(context.Background(), "business Nairobi")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	// The confirmed website is left alone; the empty and placeholder
	// websites both go through enrichment.
	if report.Enriched != 2 {
		t.Errorf("enriched: got %d, want 2", report.Enriched)
	}
	for _, name := range enr.enriched {
		if name == "Business 1" {
			t.Error("lead with confirmed website was enriched")
		}
	}
}

func TestRunEmptyCollection(t *testing.T) {
	p := newTestPipeline(&fakeCollector{}, &fakeUpserter{}, &fakeEnricher{})

	report, err := p.Run(context.Background(), "gibberish query zzz")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if report.Scraped != 0 || report.Saved != 0 || report.Enriched != 0 || report.Errored != 0 {
		t.Errorf("expected zero report, got %+v", report)
	}
}

func TestRunCollectorErrorPropagates(t *testing.T) {
	boom := errors.New("browser launch failed")
	p := newTestPipeline(&fakeCollector{err: boom}, &fakeUpserter{}, &fakeEnricher{})

	report, err := p.Run(context.Background(), "business Nairobi")
	if !errors.Is(err, boom) {
		t.Fatalf("expected collector error, got: %v", err)
	}
	if report == nil {
		t.Fatal("report must be populated even on failure")
	}
}

func TestRunCancelledContext(t *testing.T) {
	col := &fakeCollector{candidates: candidates(5)}
	p := newTestPipeline(col, &fakeUpserter{}, &fakeEnricher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := p.Run(ctx, "business Nairobi")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got: %v", err)
	}
	if report.Saved != 0 {
		t.Errorf("expected no saves after cancellation, got %d", report.Saved)
	}
}
