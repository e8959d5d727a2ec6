package extract

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/LeadGoat/internal/types"
)

// Extractor turns raw listing-card HTML into normalized candidates. It is
// pure with respect to external state: it reads the card markup and writes
// nothing.
type Extractor struct {
	nameStrategies     []fieldStrategy
	categoryStrategies []fieldStrategy
	logger             *slog.Logger
}

// New creates an Extractor with the full strategy chains for the Google
// Maps markup variants.
func New(logger *slog.Logger) *Extractor {
	e := &Extractor{
		logger: logger.With("component", "extractor"),
	}

	// The listing UI has shipped several generations of markup for the same
	// semantic fields; each selector covers one of them. First non-empty
	// match wins.
	for _, sel := range []string{
		".fontHeadlineSmall",
		".qBF1Pd",
		".section-result-title",
		"h3",
		`[aria-label*="place"]`,
	} {
		e.nameStrategies = append(e.nameStrategies, cssText(sel))
	}
	e.nameStrategies = append(e.nameStrategies, xpathText("//h3"), ariaLabelName)

	for _, sel := range []string{
		".fontBodyMedium",
		".W4Efsd",
		".section-result-details",
		".UaQhfb-fontBodyMedium",
	} {
		e.categoryStrategies = append(e.categoryStrategies, cssText(sel))
	}

	return e
}

// Extract applies the strategy chains to every card and returns the
// deduplicated candidate list. Cards whose name is empty or a single
// character are silently dropped.
func (e *Extractor) Extract(cards []string) []types.Candidate {
	byName := make(map[string]types.Candidate, len(cards))
	var order []string

	for i, raw := range cards {
		c, err := parseCard(raw)
		if err != nil {
			e.logger.Debug("card parse failed", "index", i, "error", err)
			continue
		}

		name := firstMatch(e.nameStrategies, c)
		name = strings.TrimSpace(name)
		if len(name) <= 1 {
			continue
		}

		category := firstMatch(e.categoryStrategies, c)
		if category == "" {
			category = "Unknown"
		}

		cand := types.Candidate{
			Name:     truncate(name, types.MaxNameLen),
			Category: truncate(category, types.MaxCategoryLen),
			Phone:    truncate(extractPhone(c.text), types.MaxPhoneLen),
			Location: truncate(extractLocation(c.text), types.MaxLocationLen),
			Website:  extractWebsite(c.doc),
		}

		key := strings.ToLower(strings.TrimSpace(cand.Name))
		if _, seen := byName[key]; !seen {
			order = append(order, key)
		}
		// Later cards overwrite earlier ones with the same name.
		byName[key] = cand
	}

	out := make([]types.Candidate, 0, len(order))
	for _, key := range order {
		out = append(out, byName[key])
	}

	e.logger.Debug("extraction complete", "cards", len(cards), "candidates", len(out))
	return out
}

// card holds the per-card parse products shared by all strategies.
type card struct {
	doc  *goquery.Document
	node *html.Node
	text string
}

func parseCard(raw string) (*card, error) {
	node, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(node)
	return &card{
		doc:  doc,
		node: node,
		text: doc.Text(),
	}, nil
}

// firstMatch evaluates strategies in order until one succeeds.
func firstMatch(strategies []fieldStrategy, c *card) string {
	for _, s := range strategies {
		if v, ok := s(c); ok {
			return v
		}
	}
	return ""
}

// truncate caps s at n characters, never splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
