package crawler

import (
	"strings"

	"sjsage522/rentalscraper/helpers"

	"github.com/PuerkitoBio/goquery"
)

// LinkExtractor collects detail-page links from a listing page
type LinkExtractor struct {
	Origin    string
	Selectors Selectors
}

// NewLinkExtractor creates a link extractor resolving relative links against origin
func NewLinkExtractor(origin string, selectors Selectors) *LinkExtractor {
	return &LinkExtractor{Origin: origin, Selectors: selectors}
}

// ExtractLinks returns the absolute ad links of a listing page in page order.
// Extended-search suggestions are skipped. The result is never nil.
func (e *LinkExtractor) ExtractLinks(doc *goquery.Document) []string {
	links := []string{}
	if doc == nil {
		return links
	}

	doc.Find(e.Selectors.AdCard).Each(func(_ int, card *goquery.Selection) {
		href, exists := card.Find(e.Selectors.AdLink).First().Attr("href")
		href = strings.TrimSpace(href)
		if !exists || href == "" {
			return
		}
		if e.Selectors.ExtendedSearchMarker != "" && strings.Contains(href, e.Selectors.ExtendedSearchMarker) {
			return
		}
		links = append(links, helpers.ResolveURL(e.Origin, href))
	})

	return links
}
