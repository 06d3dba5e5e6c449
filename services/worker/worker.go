package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sjsage522/rentalscraper/helpers"
	"sjsage522/rentalscraper/internal"
	"sjsage522/rentalscraper/internal/crawler"
	"sjsage522/rentalscraper/pkg/metrics"
	"sjsage522/rentalscraper/services/publisher"
	"sjsage522/rentalscraper/services/store"
)

// Worker drives a scrape run: listing pages, then ad pages, then storage.
// It runs on the caller's goroutine and issues one request at a time.
type Worker struct {
	fetcher   crawler.DocumentFetcher
	links     *crawler.LinkExtractor
	details   *crawler.DetailExtractor
	store     store.Sink
	publisher publisher.Publisher
	logger    helpers.LoggerInterface
	delay     time.Duration
	sleep     func(time.Duration)
}

// NewWorker creates a new worker. A nil sleep defaults to time.Sleep.
func NewWorker(
	fetcher crawler.DocumentFetcher,
	links *crawler.LinkExtractor,
	details *crawler.DetailExtractor,
	deps internal.Dependencies,
	logger helpers.LoggerInterface,
	delay time.Duration,
	sleep func(time.Duration),
) *Worker {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Worker{
		fetcher:   fetcher,
		links:     links,
		details:   details,
		store:     deps.Store,
		publisher: deps.Publisher,
		logger:    logger,
		delay:     delay,
		sleep:     sleep,
	}
}

// ScrapeAds walks listing pages 1..totalPages of baseURL and stores every ad found
// into table. Page and ad failures are logged and skipped. Returns the number of
// ads handed to the store.
func (w *Worker) ScrapeAds(ctx context.Context, baseURL string, table store.Table, totalPages int) int {
	total := 0

	for index := 1; index <= totalPages; index++ {
		page := crawler.PageRef{URL: helpers.WithPage(baseURL, index), Index: index}
		total += w.scrapePage(ctx, page, table)

		w.sleep(w.delay)
	}

	w.logger.LogInfo("Total ads scraped: %d", total)
	return total
}

// scrapePage processes one listing page and returns the number of stored ads
func (w *Worker) scrapePage(ctx context.Context, page crawler.PageRef, table store.Table) int {
	w.logger.LogInfo("Parsing page: %s", page.URL)

	doc := w.fetcher.Fetch(ctx, page.URL)
	if doc == nil {
		metrics.PagesTotal.WithLabelValues("failed").Inc()
		w.logger.LogError("worker", fmt.Errorf("failed to fetch data from %s", page.URL))
		return 0
	}

	links := w.links.ExtractLinks(doc)
	if len(links) == 0 {
		metrics.PagesTotal.WithLabelValues("empty").Inc()
		w.logger.LogInfo("No ads found on page %d", page.Index)
		return 0
	}

	count := 0
	for _, link := range links {
		if w.scrapeAd(ctx, link, table) {
			count++
		}
		w.sleep(w.delay)
	}

	metrics.PagesTotal.WithLabelValues("ok").Inc()
	w.logger.LogInfo("Found %d ads on page %d", count, page.Index)
	return count
}

// scrapeAd fetches one ad page and hands the record to the store
func (w *Worker) scrapeAd(ctx context.Context, link string, table store.Table) bool {
	record := w.details.ExtractDetails(w.fetcher.Fetch(ctx, link), link)
	if record == nil {
		return false
	}

	row := record.Row()
	inserted, err := w.store.InsertIfAbsent(ctx, table, row)
	if err != nil {
		metrics.AdsTotal.WithLabelValues("error").Inc()
		w.logger.LogError("worker", fmt.Errorf("failed to save %s: %w", link, err))
		return false
	}

	if !inserted {
		metrics.AdsTotal.WithLabelValues("duplicate").Inc()
		return true
	}

	metrics.AdsTotal.WithLabelValues("inserted").Inc()
	w.publish(table, row)
	return true
}

func (w *Worker) publish(table store.Table, row store.Ad) {
	if w.publisher == nil {
		return
	}

	data, err := json.Marshal(row)
	if err != nil {
		w.logger.LogError("worker", err)
		return
	}

	if err := w.publisher.Publish(string(table), data); err != nil {
		w.logger.LogError("publisher", err)
	}
}
