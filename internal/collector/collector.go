package collector

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/IshaanNene/LeadGoat/internal/browser"
	"github.com/IshaanNene/LeadGoat/internal/config"
	"github.com/IshaanNene/LeadGoat/internal/observability"
	"github.com/IshaanNene/LeadGoat/internal/types"
)

const (
	searchBaseURL   = "https://www.google.com/maps/search/"
	cardSelector    = `[role="article"]`
	consentSelector = `button[aria-label="Accept all"]`
	morePlacesText  = "More places"

	jostleDelta = 1000
)

// Extractor turns card HTML into candidates.
type Extractor interface {
	Extract(cards []string) []types.Candidate
}

// Collector drives a browser session through a scroll-and-wait loop against
// the live result list and extracts candidates once the list stops growing.
type Collector struct {
	cfg        *config.Config
	newSession browser.Factory
	extractor  Extractor
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// New creates a Collector.
func New(cfg *config.Config, factory browser.Factory, extractor Extractor, metrics *observability.Metrics, logger *slog.Logger) *Collector {
	return &Collector{
		cfg:        cfg,
		newSession: factory,
		extractor:  extractor,
		metrics:    metrics,
		logger:     logger.With("component", "collector"),
	}
}

// progress is the scroll state for one Collect invocation.
type progress struct {
	prevCount int
	stable    int
	attempts  int
}

// Collect runs one collection job for the query. Failures after session
// setup degrade to an empty result: the pipeline treats "no leads found" as
// a normal, reportable outcome. Only session acquisition and context
// cancellation surface as errors.
func (c *Collector) Collect(ctx context.Context, query string) ([]types.Candidate, error) {
	c.metrics.RunsTotal.Add(1)
	c.logger.Info("starting collection", "query", query)

	sess, err := c.newSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	searchURL := searchBaseURL + url.PathEscape(query)
	if err := sess.Navigate(ctx, searchURL); err != nil {
		c.abort(sess, "navigation failed", err)
		return nil, nil
	}

	// Dismiss the consent prompt when present; its absence is the common case.
	if err := sess.Click(consentSelector); err == nil {
		c.logger.Info("consent prompt dismissed")
		sleepCtx(ctx, 2*time.Second)
	}

	if err := sess.WaitVisible(ctx, cardSelector, c.cfg.Browser.ResultsTimeout); err != nil {
		c.abort(sess, "no results appeared", err)
		return nil, nil
	}
	c.logger.Info("first results loaded")

	col := c.cfg.Collector
	var st progress

	for st.stable < col.StableAttempts && st.attempts < col.MaxScrollAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// A failed read says nothing about list growth; skip the compare
		// and keep scrolling.
		cards, err := sess.Cards(cardSelector)
		if err != nil {
			c.logger.Warn("card count failed", "attempt", st.attempts+1, "error", err)
		} else {
			count := len(cards)

			if count == st.prevCount {
				st.stable++
				c.logger.Debug("no new results",
					"count", count,
					"stable", st.stable,
					"limit", col.StableAttempts,
				)
			} else {
				st.stable = 0
				st.prevCount = count
				c.logger.Info("new results rendered", "total", count)
			}

			if count >= col.CardCeiling {
				c.logger.Info("card ceiling reached", "count", count, "ceiling", col.CardCeiling)
				break
			}
		}

		for i := 0; i < col.ScrollPulses; i++ {
			if err := sess.Scroll(0, col.ScrollDelta); err != nil {
				c.logger.Warn("scroll failed", "error", err)
			}
			sleepCtx(ctx, col.PulsePause)
		}

		st.attempts++
		c.metrics.ScrollAttempts.Add(1)

		// A short reverse scroll every few attempts jostles the lazy loader.
		if st.attempts%4 == 0 {
			if err := sess.Scroll(0, -jostleDelta); err == nil {
				c.logger.Debug("reverse scroll issued")
			}
			sleepCtx(ctx, col.PulsePause)
		}

		if err := sess.ClickText("button", morePlacesText); err == nil {
			c.logger.Info("clicked load-more affordance")
			// New content is expected; start counting stability afresh.
			st.stable = 0
			sleepCtx(ctx, col.AttemptPause)
		}

		sleepCtx(ctx, col.AttemptPause)
	}

	c.logger.Info("scrolling finished", "attempts", st.attempts, "cards", st.prevCount)

	cards, err := sess.Cards(cardSelector)
	if err != nil {
		c.abort(sess, "final card read failed", err)
		return nil, nil
	}
	c.metrics.CardsSeen.Add(int64(len(cards)))

	candidates := c.extractor.Extract(cards)
	c.metrics.CandidatesOut.Add(int64(len(candidates)))

	c.logger.Info("collection complete", "cards", len(cards), "candidates", len(candidates))
	return candidates, nil
}

// abort logs the terminal failure and captures a diagnostic screenshot on a
// best-effort basis.
func (c *Collector) abort(sess browser.Session, reason string, err error) {
	c.logger.Error("collection aborted", "reason", reason, "error", err)

	path := c.cfg.Browser.ScreenshotPath
	if path == "" {
		return
	}
	if shotErr := sess.Screenshot(path); shotErr != nil {
		c.logger.Warn("could not save screenshot", "error", shotErr)
	} else {
		c.logger.Info("screenshot saved", "path", path)
	}
}

// sleepCtx pauses for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
