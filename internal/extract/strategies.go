package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// fieldStrategy tries to resolve a single field from a card. It reports
// false when the markup variant it targets is absent.
type fieldStrategy func(c *card) (string, bool)

// cssText matches the first element for the selector and returns its
// trimmed text.
func cssText(selector string) fieldStrategy {
	return func(c *card) (string, bool) {
		text := strings.TrimSpace(c.doc.Find(selector).First().Text())
		return text, text != ""
	}
}

// xpathText matches the first node for the XPath expression and returns
// its trimmed inner text.
func xpathText(expr string) fieldStrategy {
	return func(c *card) (string, bool) {
		node := htmlquery.FindOne(c.node, expr)
		if node == nil {
			return "", false
		}
		text := strings.TrimSpace(htmlquery.InnerText(node))
		return text, text != ""
	}
}

// ariaLabelName parses the card's accessible label, taking the segment
// before the first "·" separator.
func ariaLabelName(c *card) (string, bool) {
	label := c.doc.Find("[aria-label]").First().AttrOr("aria-label", "")
	if label == "" {
		return "", false
	}
	name := strings.TrimSpace(strings.SplitN(label, "·", 2)[0])
	return name, name != ""
}

// Kenyan phone numbers: country-code-prefixed, leading-zero national, and
// parenthesized-area-code forms.
var phoneRe = regexp.MustCompile(
	`(\+254\s?[17]\d{1,2}\s?\d{3}\s?\d{3})|(0[17]\d{1,2}\s?\d{3}\s?\d{3})|(\(0\d{2}\)\s?\d{3}\s?\d{3})`,
)

// extractPhone scans the card's full text and returns the first phone match
// with whitespace stripped, or "".
func extractPhone(text string) string {
	m := phoneRe.FindString(text)
	if m == "" {
		return ""
	}
	return strings.Join(strings.Fields(m), "")
}

// Street address (number + street name + suffix token) or a generic
// "Text, Text" locality.
var locationRe = regexp.MustCompile(
	`(?i)(\d+\s+[\w\s]+(?:St|Ave|Rd|Blvd|Way|Dr|Street|Avenue|Road)\.?)|([A-Za-z\s]+,\s*[A-Za-z\s]+)`,
)

// extractLocation scans the card's full text for an address or locality,
// defaulting to "Unknown".
func extractLocation(text string) string {
	m := strings.TrimSpace(locationRe.FindString(text))
	if m == "" {
		return "Unknown"
	}
	return m
}

// Hosts belonging to the map/search surface itself; links into these are
// navigation chrome, not business websites.
var ownHostFragments = []string{
	"google.com/maps",
	"google.com/search",
	"google.com/url",
	"maps.google.com",
}

// extractWebsite returns the first outbound hyperlink that does not point
// back into the map/search surface, or "".
func extractWebsite(doc *goquery.Document) string {
	var website string

	doc.Find(`a[href^="http"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		for _, fragment := range ownHostFragments {
			if strings.Contains(href, fragment) {
				return true
			}
		}
		website = href
		return false
	})

	return website
}
