package helpers

import (
	"net/url"
	"strconv"
	"strings"
)

// ResolveURL prefixes relative hrefs with origin. Absolute hrefs are returned unchanged.
func ResolveURL(origin, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimRight(origin, "/") + href
}

// WithPage appends a page query parameter to base
func WithPage(base string, page int) string {
	sep := "?"
	if u, err := url.Parse(base); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return base + sep + "page=" + strconv.Itoa(page)
}

// TrimLabel removes a leading label and the separator that follows it
func TrimLabel(text, label string) string {
	idx := strings.Index(text, label)
	if idx < 0 {
		return strings.TrimSpace(text)
	}
	rest := text[idx+len(label):]
	return strings.TrimSpace(strings.TrimLeft(rest, " : "))
}
