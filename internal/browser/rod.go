package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/LeadGoat/internal/config"
	"github.com/IshaanNene/LeadGoat/internal/types"
)

// RodSession implements Session using a headless Chromium via Rod.
type RodSession struct {
	browser *rod.Browser
	page    *rod.Page
	cfg     *config.BrowserConfig
	logger  *slog.Logger
}

// NewRodSession launches a browser, opens one page and prepares it for
// collection. The caller owns the session and must Close it on every exit
// path.
func NewRodSession(ctx context.Context, cfg *config.BrowserConfig, logger *slog.Logger) (*RodSession, error) {
	launchURL, err := launchBrowser(cfg)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().Context(ctx).ControlURL(launchURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	s := &RodSession{
		browser: b,
		cfg:     cfg,
		logger:  logger.With("component", "rod_session"),
	}

	page, err := s.newPage()
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	s.page = page

	s.logger.Debug("browser session ready", "headless", cfg.Headless, "stealth", cfg.Stealth)
	return s, nil
}

// launchBrowser starts a Chromium instance with appropriate flags.
func launchBrowser(cfg *config.BrowserConfig) (string, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight))

	return l.Launch()
}

// newPage opens the working page, applying stealth patches, User-Agent and
// viewport overrides.
func (s *RodSession) newPage() (*rod.Page, error) {
	var page *rod.Page
	var err error

	if s.cfg.Stealth {
		page, err = stealth.Page(s.browser)
	} else {
		page, err = s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if s.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: s.cfg.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to set user agent", "error", err)
		}
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.WindowWidth,
		Height:            s.cfg.WindowHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		s.logger.Warn("failed to set viewport", "error", err)
	}

	return page, nil
}

// Navigate implements Session.
func (s *RodSession) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx).Timeout(s.cfg.NavigationTimeout)

	if err := page.Navigate(url); err != nil {
		return &types.NavigationError{URL: url, Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		return &types.NavigationError{URL: url, Err: err}
	}
	// Let the first burst of lazy content settle; a stall here is not fatal.
	if err := page.WaitStable(300 * time.Millisecond); err != nil {
		s.logger.Warn("page stability timeout, continuing", "url", url, "error", err)
	}
	return nil
}

// WaitVisible implements Session.
func (s *RodSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("wait for %s: %w", selector, types.ErrNoResults)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

// Cards implements Session.
func (s *RodSession) Cards(selector string) ([]string, error) {
	els, err := s.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}

	htmls := make([]string, 0, len(els))
	for _, el := range els {
		h, err := el.HTML()
		if err != nil {
			// A card detached mid-read; skip it rather than failing the pass.
			s.logger.Debug("card read failed", "error", err)
			continue
		}
		htmls = append(htmls, h)
	}
	return htmls, nil
}

// Scroll implements Session.
func (s *RodSession) Scroll(deltaX, deltaY int) error {
	return s.page.Mouse.Scroll(float64(deltaX), float64(deltaY), 1)
}

// Click implements Session.
func (s *RodSession) Click(selector string) error {
	el, err := s.page.Timeout(2 * time.Second).Element(selector)
	if err != nil {
		return fmt.Errorf("click %s: %w", selector, types.ErrElementNotFound)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// ClickText implements Session.
func (s *RodSession) ClickText(selector, text string) error {
	el, err := s.page.Timeout(2 * time.Second).ElementR(selector, text)
	if err != nil {
		return fmt.Errorf("click %s %q: %w", selector, text, types.ErrElementNotFound)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// Screenshot implements Session.
func (s *RodSession) Screenshot(path string) error {
	data, err := s.page.Screenshot(true, nil)
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

// Close implements Session.
func (s *RodSession) Close() error {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		return s.browser.Close()
	}
	return nil
}
