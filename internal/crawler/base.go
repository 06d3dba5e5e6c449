package crawler

import (
	"io"
	"strings"

	scrapeerrors "sjsage522/rentalscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// ParseDocument creates a goquery document from a reader.
// The parser is permissive: malformed markup produces a document with no matches.
func ParseDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, scrapeerrors.NewParsing("parser", "failed to parse HTML", err)
	}
	return doc, nil
}

// applyHandlers runs handlers in order and returns the first non-empty result
func applyHandlers(s *goquery.Selection, handlers []ElementHandler) string {
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if result := strings.TrimSpace(handler(s)); result != "" {
			return result
		}
	}
	return ""
}

// textHandler returns the trimmed text of the first element matching selector
func textHandler(selector string) ElementHandler {
	return func(s *goquery.Selection) string {
		if selector == "" {
			return ""
		}
		sel := s.Find(selector)
		for i := range sel.Nodes {
			if text := strings.TrimSpace(sel.Eq(i).Text()); text != "" {
				return text
			}
		}
		return ""
	}
}
