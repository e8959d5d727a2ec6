package enrich

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"github.com/IshaanNene/LeadGoat/internal/config"
	"github.com/IshaanNene/LeadGoat/internal/observability"
)

// LookupClient heuristically checks whether a business has a website by
// fetching a search-result page for its name and location. Any failure is
// evidence of "no website", never an error: the lookup is best-effort by
// contract.
type LookupClient struct {
	client    *http.Client
	cfg       *config.EnrichConfig
	userAgent string
	limiter   *rate.Limiter
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewLookupClient creates a lookup client bounded by the configured timeout
// and paced by the configured interval.
func NewLookupClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *LookupClient {
	transport := &http.Transport{
		DisableCompression: true, // We handle decompression ourselves (including brotli)
	}

	limit := rate.Inf
	if cfg.Enrich.LookupInterval > 0 {
		limit = rate.Every(cfg.Enrich.LookupInterval)
	}

	return &LookupClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Enrich.LookupTimeout,
		},
		cfg:       &cfg.Enrich,
		userAgent: cfg.Browser.UserAgent,
		limiter:   rate.NewLimiter(limit, 1),
		metrics:   metrics,
		logger:    logger.With("component", "lookup_client"),
	}
}

// WebsiteExists fetches a search page for the query and reports whether the
// body suggests a website exists. The "contains http" signal is a weak
// heuristic: it only has to separate businesses with some web presence from
// those with none.
func (c *LookupClient) WebsiteExists(ctx context.Context, query string) bool {
	if err := c.limiter.Wait(ctx); err != nil {
		return false
	}

	searchURL := c.cfg.SearchBaseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		c.logger.Warn("lookup request build failed", "query", query, "error", err)
		return false
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	c.metrics.LookupsTotal.Add(1)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("lookup failed", "query", query, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("lookup non-2xx", "query", query, "status", resp.StatusCode)
		return false
	}

	body, err := io.ReadAll(io.LimitReader(decodeBody(resp), c.cfg.MaxBodySize))
	if err != nil {
		c.logger.Debug("lookup body read failed", "query", query, "error", err)
		return false
	}

	hit := strings.Contains(string(body), "http")
	if hit {
		c.metrics.LookupsHit.Add(1)
	}
	return hit
}

// decodeBody unwraps the response body per its Content-Encoding.
func decodeBody(resp *http.Response) io.Reader {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		return brotli.NewReader(resp.Body)
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return resp.Body
		}
		return r
	case "deflate":
		return flate.NewReader(resp.Body)
	default:
		return resp.Body
	}
}
