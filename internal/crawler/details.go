package crawler

import (
	"strings"

	"sjsage522/rentalscraper/helpers"

	"github.com/PuerkitoBio/goquery"
)

// DetailExtractor builds an AdRecord from an ad detail page
type DetailExtractor struct {
	Selectors Selectors

	titleHandlers []ElementHandler
	priceHandlers []ElementHandler
	areaHandlers  []ElementHandler
}

// NewDetailExtractor creates a detail extractor with the fallback chain for each field
func NewDetailExtractor(selectors Selectors) *DetailExtractor {
	e := &DetailExtractor{Selectors: selectors}

	for _, hook := range selectors.TitleHooks {
		e.titleHandlers = append(e.titleHandlers, textHandler(hook))
	}
	// generic headings survive class-name churn
	e.titleHandlers = append(e.titleHandlers, textHandler(selectors.FallbackHeadings))

	for _, hook := range selectors.PriceHooks {
		e.priceHandlers = append(e.priceHandlers, textHandler(hook))
	}

	e.areaHandlers = []ElementHandler{e.labeledParamHandler, textHandler(selectors.AreaHook)}

	return e
}

// ExtractDetails returns the record for one ad page. Missing fields are left absent;
// nil is returned only when doc is nil.
func (e *DetailExtractor) ExtractDetails(doc *goquery.Document, link string) *AdRecord {
	if doc == nil {
		return nil
	}

	root := doc.Selection
	return &AdRecord{
		Title: Found(applyHandlers(root, e.titleHandlers)),
		Price: Found(applyHandlers(root, e.priceHandlers)),
		Area:  Found(applyHandlers(root, e.areaHandlers)),
		Link:  link,
	}
}

// labeledParamHandler finds the parameter paragraph carrying the area label
// and returns the text after the label
func (e *DetailExtractor) labeledParamHandler(s *goquery.Selection) string {
	label := e.Selectors.AreaLabel
	if label == "" || e.Selectors.ParamHook == "" {
		return ""
	}

	var value string
	s.Find(e.Selectors.ParamHook).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if !strings.Contains(text, label) {
			return true
		}
		value = helpers.TrimLabel(text, label)
		return false
	})
	return value
}
