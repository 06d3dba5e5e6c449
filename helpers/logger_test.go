package helpers

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sjsage522/rentalscraper/logger"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "scraper.log")

	var out bytes.Buffer
	l := NewLogger(tmpFile, logger.New(&out))

	l.LogError("fetcher", errors.New("test error"))

	data, err := os.ReadFile(tmpFile)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "ERROR - [fetcher] test error")
	assert.Contains(t, out.String(), "test error")

	l.LogInfo("Parsing page: %s", "https://www.olx.ua/uk/kyiv/?page=1")
	assert.Contains(t, out.String(), "Parsing page: https://www.olx.ua/uk/kyiv/?page=1")

	// Info entries never reach the error file
	data, err = os.ReadFile(tmpFile)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "Parsing page")
}

func TestLoggerWithoutErrorFile(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger("", logger.New(&out))

	l.LogError("store", errors.New("insert failed"))
	assert.Contains(t, out.String(), "insert failed")
}
