package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"log/slog"
	"os"

	"github.com/IshaanNene/LeadGoat/internal/browser"
	"github.com/IshaanNene/LeadGoat/internal/config"
	"github.com/IshaanNene/LeadGoat/internal/observability"
	"github.com/IshaanNene/LeadGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeSession simulates a result list that grows by growStep cards per
// scroll pulse until it plateaus at maxCards.
type fakeSession struct {
	count    int
	growStep int
	maxCards int

	navErr  error
	waitErr error

	// failCardsCall makes the n-th Cards call (1-based) return an error.
	failCardsCall int
	cardsCalls    int

	scrolls     int
	screenshots []string
	closed      bool
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error { return s.navErr }

func (s *fakeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return s.waitErr
}

func (s *fakeSession) Cards(selector string) ([]string, error) {
	s.cardsCalls++
	if s.failCardsCall != 0 && s.cardsCalls == s.failCardsCall {
		return nil, errors.New("node list detached")
	}
	cards := make([]string, s.count)
	for i := range cards {
		cards[i] = fmt.Sprintf("card-%d", i)
	}
	return cards, nil
}

func (s *fakeSession) Scroll(deltaX, deltaY int) error {
	s.scrolls++
	if deltaY > 0 && s.count < s.maxCards {
		s.count += s.growStep
		if s.count > s.maxCards {
			s.count = s.maxCards
		}
	}
	return nil
}

func (s *fakeSession) Click(selector string) error { return types.ErrElementNotFound }

func (s *fakeSession) ClickText(selector, text string) error { return types.ErrElementNotFound }

func (s *fakeSession) Screenshot(path string) error {
	s.screenshots = append(s.screenshots, path)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// stubExtractor maps every card to one candidate, no dedup.
type stubExtractor struct{}

func (stubExtractor) Extract(cards []string) []types.Candidate {
	out := make([]types.Candidate, len(cards))
	for i, c := range cards {
		out[i] = types.Candidate{Name: c}
	}
	return out
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Collector.PulsePause = 0
	cfg.Collector.AttemptPause = 0
	cfg.Browser.ResultsTimeout = 50 * time.Millisecond
	return cfg
}

func newTestCollector(cfg *config.Config, sess *fakeSession) *Collector {
	factory := browser.Factory(func(ctx context.Context) (browser.Session, error) {
		return sess, nil
	})
	return New(cfg, factory, stubExtractor{}, observability.NewMetrics(testLogger), testLogger)
}

func TestCollectStopsWhenListPlateaus(t *testing.T) {
	sess := &fakeSession{count: 10, growStep: 10, maxCards: 40}
	c := newTestCollector(testConfig(), sess)

	out, err := c.Collect(context.Background(), "business Nairobi")
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}
	if len(out) != 40 {
		t.Errorf("expected 40 candidates at plateau, got %d", len(out))
	}
	if !sess.closed {
		t.Error("session was not closed")
	}
}

func TestCollectStopsAtCardCeiling(t *testing.T) {
	sess := &fakeSession{count: 150, growStep: 0, maxCards: 150}
	c := newTestCollector(testConfig(), sess)

	out, err := c.Collect(context.Background(), "business Nairobi")
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}
	if len(out) != 150 {
		t.Errorf("expected all rendered cards, got %d", len(out))
	}
	if sess.scrolls != 0 {
		t.Errorf("expected no scrolling past the ceiling, got %d scrolls", sess.scrolls)
	}
}

func TestCollectStabilityBoundsScrolling(t *testing.T) {
	// A 1-card list that never changes should stop after StableAttempts
	// unchanged reads instead of running out MaxScrollAttempts.
	sess := &fakeSession{count: 1, growStep: 0, maxCards: 1}
	cfg := testConfig()
	cfg.Collector.StableAttempts = 3
	c := newTestCollector(cfg, sess)

	out, err := c.Collect(context.Background(), "business Nairobi")
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("expected 1 candidate, got %d", len(out))
	}
	// One growth iteration plus StableAttempts stable iterations, each with
	// ScrollPulses forward pulses, plus the occasional reverse jostle.
	maxScrolls := (cfg.Collector.StableAttempts+1)*cfg.Collector.ScrollPulses + 2
	if sess.scrolls > maxScrolls {
		t.Errorf("scrolled %d times, expected at most %d", sess.scrolls, maxScrolls)
	}
}

func TestCollectCardReadFailureDoesNotResetStability(t *testing.T) {
	// A steady 5-card list with one failed read mid-loop. The failed read
	// must not register as a count change, so the loop still converges in
	// one growth iteration, one skipped iteration, and StableAttempts
	// stable iterations.
	sess := &fakeSession{count: 5, growStep: 0, maxCards: 5, failCardsCall: 2}
	cfg := testConfig()
	cfg.Collector.StableAttempts = 3
	c := newTestCollector(cfg, sess)

	out, err := c.Collect(context.Background(), "business Nairobi")
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}
	if len(out) != 5 {
		t.Errorf("expected 5 candidates, got %d", len(out))
	}

	maxScrolls := (cfg.Collector.StableAttempts+2)*cfg.Collector.ScrollPulses + 1
	if sess.scrolls > maxScrolls {
		t.Errorf("scrolled %d times, expected at most %d: a failed read reset the stability count", sess.scrolls, maxScrolls)
	}
}

func TestCollectNavigationFailureReturnsEmpty(t *testing.T) {
	sess := &fakeSession{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	cfg := testConfig()
	c := newTestCollector(cfg, sess)

	out, err := c.Collect(context.Background(), "business Nairobi")
	if err != nil {
		t.Fatalf("navigation failure must not surface as error, got: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no candidates, got %d", len(out))
	}
	if len(sess.screenshots) != 1 || sess.screenshots[0] != cfg.Browser.ScreenshotPath {
		t.Errorf("expected one diagnostic screenshot at %q, got %v",
			cfg.Browser.ScreenshotPath, sess.screenshots)
	}
}

func TestCollectNoResultsReturnsEmpty(t *testing.T) {
	sess := &fakeSession{waitErr: types.ErrNoResults}
	c := newTestCollector(testConfig(), sess)

	out, err := c.Collect(context.Background(), "gibberish query zzz")
	if err != nil {
		t.Fatalf("missing results must not surface as error, got: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no candidates, got %d", len(out))
	}
}

func TestCollectSessionFactoryFailure(t *testing.T) {
	boom := errors.New("browser launch failed")
	factory := browser.Factory(func(ctx context.Context) (browser.Session, error) {
		return nil, boom
	})
	c := New(testConfig(), factory, stubExtractor{}, observability.NewMetrics(testLogger), testLogger)

	_, err := c.Collect(context.Background(), "business Nairobi")
	if !errors.Is(err, boom) {
		t.Fatalf("expected factory error to propagate, got: %v", err)
	}
}

func TestCollectCancelledContext(t *testing.T) {
	sess := &fakeSession{count: 10, growStep: 10, maxCards: 100}
	c := newTestCollector(testConfig(), sess)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Collect(ctx, "business Nairobi")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation to propagate, got: %v", err)
	}
}
