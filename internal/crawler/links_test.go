package crawler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body>
<div data-cy="l-card"><a href="/d/uk/obyavlenie/kvartira-1-IDa1.html"><h6>1-кімнатна</h6></a></div>
<div data-cy="l-card"><a href="/d/uk/obyavlenie/kvartira-2-IDa2.html?reason=extended_search_extended_distance"><h6>Поруч</h6></a></div>
<div data-cy="l-card"><a href="https://www.olx.ua/d/uk/obyavlenie/kvartira-3-IDa3.html"><h6>3-кімнатна</h6></a></div>
<div data-cy="l-card"><span>promo without link</span></div>
<div data-cy="l-card"><a href="/d/uk/obyavlenie/kvartira-4-IDa4.html?reason=extended_search_extended_category">Інше місто</a></div>
<a href="/d/uk/obyavlenie/outside-card.html">outside</a>
</body></html>`

func TestExtractLinks(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(listingHTML))
	require.NoError(t, err)

	extractor := NewLinkExtractor("https://www.olx.ua", DefaultSelectors("Загальна площа"))
	links := extractor.ExtractLinks(doc)

	assert.Equal(t, []string{
		"https://www.olx.ua/d/uk/obyavlenie/kvartira-1-IDa1.html",
		"https://www.olx.ua/d/uk/obyavlenie/kvartira-3-IDa3.html",
	}, links)
	for _, link := range links {
		assert.NotContains(t, link, "extended_search")
	}
}

func TestExtractLinksNoCards(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<html><body><p>Нічого не знайдено</p></body></html>`))
	require.NoError(t, err)

	links := NewLinkExtractor("https://www.olx.ua", DefaultSelectors("")).ExtractLinks(doc)
	assert.NotNil(t, links)
	assert.Empty(t, links)

	links = NewLinkExtractor("https://www.olx.ua", DefaultSelectors("")).ExtractLinks(nil)
	assert.NotNil(t, links)
	assert.Empty(t, links)
}

func TestParseDocumentMalformed(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<div data-cy="l-card"><a href=`))
	require.NoError(t, err)
	assert.Empty(t, NewLinkExtractor("https://www.olx.ua", DefaultSelectors("")).ExtractLinks(doc))
}
