package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_fetch_attempts_total",
			Help: "Total number of HTTP fetch attempts.",
		},
		[]string{"status"}, // status: success, failure, blocked
	)

	FetchGiveUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_fetch_give_ups_total",
			Help: "Fetches abandoned after exhausting retries.",
		},
	)

	PagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_pages_total",
			Help: "Listing pages processed.",
		},
		[]string{"result"}, // result: ok, failed, empty
	)

	AdsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_ads_total",
			Help: "Ads handed to the store.",
		},
		[]string{"result"}, // result: inserted, duplicate, error
	)
)

// Serve exposes /metrics on addr. It blocks until the listener fails.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	err := http.ListenAndServe(addr, mux)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
