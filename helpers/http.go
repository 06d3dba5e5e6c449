package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"
	"unicode/utf8"

	scrapeerrors "sjsage522/rentalscraper/pkg/errors"

	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent with every request unless configured otherwise
const DefaultUserAgent = "Mozilla/5.0"

// NewHTTPClient returns a client with a pooled keep-alive transport shared by the whole run.
// proxyURL is optional.
func NewHTTPClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 2
	transport.IdleConnTimeout = 90 * time.Second

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(parsed)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// FetchUTF8 sends a single GET request with browser-like headers,
// converts the response body to UTF-8 (if needed), and returns it as an io.Reader.
func FetchUTF8(ctx context.Context, client *http.Client, target, userAgent string) (io.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, scrapeerrors.New(scrapeerrors.ErrorTypeValidation, "http", "failed to create request", err)
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "uk-UA,uk;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := client.Do(req)
	if err != nil {
		return nil, scrapeerrors.NewNetwork("http", "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the keep-alive connection can be reused
		io.Copy(io.Discard, resp.Body)
	}

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		return nil, scrapeerrors.NewRateLimit("http", retryAfter(resp.Header.Get("Retry-After")))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, scrapeerrors.NewNetwork("http", fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scrapeerrors.NewNetwork("http", "failed to read response body", err)
	}

	return ToUTF8(bodyBytes, resp.Header.Get("Content-Type"))
}

// ToUTF8 determines the encoding from the Content-Type header and body content
// and decodes the body to UTF-8.
func ToUTF8(body []byte, contentType string) (io.Reader, error) {
	encoding, name, certain := charset.DetermineEncoding(body, contentType)
	// the sniffer only inspects the first 1024 bytes
	if name == "utf-8" || name == "UTF-8" || (!certain && utf8.Valid(body)) {
		return bytes.NewReader(body), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(body))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, scrapeerrors.NewParsing("http", "failed to read converted UTF-8 body", err)
	}

	return &buf, nil
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		return time.Until(at)
	}
	return 0
}
