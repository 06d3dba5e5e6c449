package crawler

import (
	"errors"
	"testing"

	scrapeerrors "sjsage522/rentalscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestParseDocumentReadError(t *testing.T) {
	doc, err := ParseDocument(failingReader{})
	assert.Nil(t, doc)
	require.Error(t, err)
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeParsing))
}

func TestParseDocumentMalformedMarkup(t *testing.T) {
	doc := mustParse(t, `<div><p>unclosed <span>text`)
	assert.Equal(t, "unclosed text", doc.Find("p").Text())
}

func TestApplyHandlersFirstNonEmptyWins(t *testing.T) {
	doc := mustParse(t, `<html><body><h2>  </h2><h3>Second</h3><h4>Third</h4></body></html>`)

	handlers := []ElementHandler{
		nil,
		textHandler("h2"),
		textHandler(""),
		textHandler("h3"),
		textHandler("h4"),
	}
	assert.Equal(t, "Second", applyHandlers(doc.Selection, handlers))
}

func TestApplyHandlersNothingMatches(t *testing.T) {
	doc := mustParse(t, `<html><body></body></html>`)
	handlers := []ElementHandler{
		textHandler("h1"),
		func(*goquery.Selection) string { return "   " },
	}
	assert.Equal(t, "", applyHandlers(doc.Selection, handlers))
}

func TestTextHandlerSkipsBlankMatches(t *testing.T) {
	doc := mustParse(t, `<ul><li> </li><li>
		Kyiv
	</li></ul>`)
	assert.Equal(t, "Kyiv", textHandler("li")(doc.Selection))
}
