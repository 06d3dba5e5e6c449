package internal

import (
	"sjsage522/rentalscraper/services/cache"
	"sjsage522/rentalscraper/services/publisher"
	"sjsage522/rentalscraper/services/store"
)

// Dependencies holds all service dependencies of a scrape run.
// Cache and Publisher are optional.
type Dependencies struct {
	Store     store.Sink
	Cache     cache.CacheService
	Publisher publisher.Publisher
}
