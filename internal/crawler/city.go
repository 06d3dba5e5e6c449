package crawler

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"sjsage522/rentalscraper/helpers"
	scrapeerrors "sjsage522/rentalscraper/pkg/errors"
)

var cityPattern = regexp.MustCompile(`^[a-zA-Zа-яА-ЯіІїЇєЄґҐ\s-]+$`)

// NormalizeCity validates a city name and converts it to the site's URL slug.
// Any run of whitespace becomes a single dash.
func NormalizeCity(city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", scrapeerrors.NewValidation("city", "city name cannot be empty")
	}
	if !cityPattern.MatchString(city) {
		return "", scrapeerrors.NewValidation("city", "city name contains invalid characters")
	}
	return strings.Join(strings.Fields(strings.ToLower(city)), "-"), nil
}

// SearchURL builds the rental search URL for a city slug
func SearchURL(origin, searchPath, city string) string {
	return helpers.ResolveURL(origin, "/uk/"+city+searchPath)
}

// CityAvailable sends a HEAD request to the city search page. A 404 or a transport
// error means the city cannot be scraped.
func CityAvailable(ctx context.Context, client *http.Client, searchURL, userAgent string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, searchURL, nil)
	if err != nil {
		return false, err
	}
	if userAgent == "" {
		userAgent = helpers.DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return false, scrapeerrors.NewNetwork("city", "failed to check city availability", err)
	}
	resp.Body.Close()

	return resp.StatusCode != http.StatusNotFound, nil
}
