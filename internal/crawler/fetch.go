package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"sjsage522/rentalscraper/helpers"
	"sjsage522/rentalscraper/logger"
	scrapeerrors "sjsage522/rentalscraper/pkg/errors"
	"sjsage522/rentalscraper/pkg/metrics"
	"sjsage522/rentalscraper/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// DocumentFetcher returns a parsed document for url, or nil when every attempt failed
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) *goquery.Document
}

// FetcherConfig contains configuration for a Fetcher
type FetcherConfig struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int
	Backoff    time.Duration
	// Sleep pauses between failed attempts; defaults to time.Sleep
	Sleep  func(time.Duration)
	Logger helpers.LoggerInterface

	// Optional rate-limit blocking
	Cache     cache.CacheService
	CacheKey  string
	BlockTime time.Duration
}

// Fetcher issues GET requests over one shared client with bounded retries
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	backoff    time.Duration
	sleep      func(time.Duration)
	logger     helpers.LoggerInterface
	cacheSvc   cache.CacheService
	cacheKey   string
	blockTime  time.Duration
}

var _ DocumentFetcher = (*Fetcher)(nil)

// NewFetcher creates a new fetcher
func NewFetcher(cfg FetcherConfig) *Fetcher {
	f := &Fetcher{
		client:     cfg.Client,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		sleep:      cfg.Sleep,
		logger:     cfg.Logger,
		cacheSvc:   cfg.Cache,
		cacheKey:   cfg.CacheKey,
		blockTime:  cfg.BlockTime,
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: 10 * time.Second}
	}
	if f.sleep == nil {
		f.sleep = time.Sleep
	}
	if f.logger == nil {
		f.logger = helpers.NewLogger("", logger.ForFetcher())
	}
	if f.cacheKey == "" {
		f.cacheKey = "olx_rate_limited"
	}
	return f
}

// Fetch performs up to maxRetries attempts. Every failed attempt is logged with
// its index and followed by the backoff pause. Errors that another attempt cannot
// fix (a malformed URL, an unreadable body) end the loop at once. Returns nil
// after the last failure.
func (f *Fetcher) Fetch(ctx context.Context, url string) *goquery.Document {
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		doc, err := f.fetchOnce(ctx, url)
		if err == nil {
			metrics.FetchAttemptsTotal.WithLabelValues("success").Inc()
			return doc
		}

		status := "failure"
		if scrapeerrors.IsType(err, scrapeerrors.ErrorTypeRateLimit) {
			status = "blocked"
		}
		metrics.FetchAttemptsTotal.WithLabelValues(status).Inc()

		if !scrapeerrors.IsRetryable(err) {
			f.logger.LogError("fetcher", fmt.Errorf("giving up on %s (attempt %d/%d): %w", url, attempt, f.maxRetries, err))
			break
		}

		f.sleep(f.backoff)
		f.logger.LogError("fetcher", fmt.Errorf("error fetching %s (attempt %d/%d): %w", url, attempt, f.maxRetries, err))
	}

	metrics.FetchGiveUpsTotal.Inc()
	return nil
}

// fetchOnce performs a single attempt honoring the rate-limit block
func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*goquery.Document, error) {
	if f.isBlocked() {
		return nil, scrapeerrors.NewRateLimit("fetcher", f.blockTime)
	}

	body, err := helpers.FetchUTF8(ctx, f.client, url, f.userAgent)
	if err != nil {
		if scrapeerrors.IsType(err, scrapeerrors.ErrorTypeRateLimit) {
			f.block()
		}
		return nil, err
	}

	return ParseDocument(body)
}

func (f *Fetcher) isBlocked() bool {
	if f.cacheSvc == nil {
		return false
	}
	_, err := f.cacheSvc.Get(f.cacheKey)
	return err == nil
}

func (f *Fetcher) block() {
	if f.cacheSvc == nil || f.blockTime <= 0 {
		return
	}
	value := []byte(strconv.Itoa(int(f.blockTime / time.Second)))
	if err := f.cacheSvc.Set(f.cacheKey, value, f.blockTime); err != nil {
		f.logger.LogError("fetcher", scrapeerrors.NewCache("fetcher", "failed to store rate-limit block", err))
	}
}
