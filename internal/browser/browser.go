package browser

import (
	"context"
	"time"
)

// Session is the capability surface the collector needs from a live page.
// The concrete implementation is Rod-backed; tests substitute a fake.
type Session interface {
	// Navigate loads the given URL and waits for the document to load,
	// bounded by the session's navigation timeout.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until at least one element matching the selector
	// is visible, or the timeout elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Cards returns the outer HTML of every element matching the selector.
	Cards(selector string) ([]string, error)

	// Scroll issues a mouse-wheel scroll by the given pixel deltas.
	Scroll(deltaX, deltaY int) error

	// Click clicks the first element matching the selector. Returns an
	// error wrapping types.ErrElementNotFound when nothing matches.
	Click(selector string) error

	// ClickText clicks the first element matching the selector whose text
	// matches the given pattern.
	ClickText(selector, text string) error

	// Screenshot captures a full-page screenshot to the given path.
	Screenshot(path string) error

	// Close releases the page and the browser behind it.
	Close() error
}

// Factory opens a fresh session for one collection run.
type Factory func(ctx context.Context) (Session, error)
