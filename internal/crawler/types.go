package crawler

import (
	"strings"

	"sjsage522/rentalscraper/services/store"

	"github.com/PuerkitoBio/goquery"
)

// Placeholders stored when a field could not be extracted
const (
	NoTitleFound = "No Title Found"
	NoPriceFound = "No Price Found"
	NoAreaFound  = "No Area Found"
)

// Field is an extracted text value that may be absent
type Field struct {
	Value   string
	Present bool
}

// Found returns a present field, or an absent one when text is blank
func Found(text string) Field {
	text = strings.TrimSpace(text)
	return Field{Value: text, Present: text != ""}
}

// OrElse returns the value, or placeholder when the field is absent
func (f Field) OrElse(placeholder string) string {
	if !f.Present {
		return placeholder
	}
	return f.Value
}

// AdRecord is the result of parsing one ad detail page
type AdRecord struct {
	Title Field
	Price Field
	Area  Field
	Link  string
}

// Row converts the record to its stored form, substituting placeholders for absent fields
func (r AdRecord) Row() store.Ad {
	return store.Ad{
		Title: r.Title.OrElse(NoTitleFound),
		Price: r.Price.OrElse(NoPriceFound),
		Area:  r.Area.OrElse(NoAreaFound),
		Link:  r.Link,
	}
}

// PageRef identifies one listing page of a scrape run
type PageRef struct {
	URL   string
	Index int
}

// ElementHandler extracts a value from a selection, returning "" when nothing matched
type ElementHandler func(*goquery.Selection) string

// Selectors contains CSS selectors for the listing and detail page markup
type Selectors struct {
	// Listing page
	AdCard               string
	AdLink               string
	ExtendedSearchMarker string

	// Detail page
	TitleHooks       []string
	FallbackHeadings string
	PriceHooks       []string
	ParamHook        string
	AreaLabel        string
	AreaHook         string
}

// DefaultSelectors returns the hooks for the current OLX layout
func DefaultSelectors(areaLabel string) Selectors {
	return Selectors{
		AdCard:               `div[data-cy="l-card"]`,
		AdLink:               "a[href]",
		ExtendedSearchMarker: "reason=extended_search",

		TitleHooks:       []string{`[data-cy="ad_title"] h4`, "h4.css-1kc83jo"},
		FallbackHeadings: "h1, h2",
		PriceHooks:       []string{`[data-testid="ad-price-container"] h3`, "h3.css-90xrc0"},
		ParamHook:        `[data-testid="ad-parameters-container"] p`,
		AreaLabel:        areaLabel,
		AreaHook:         "span.css-6as4g5",
	}
}
