package adapters

import (
	"socialstats/internal/fetch"

	"github.com/tidwall/gjson"
)

// Strategy is one way of reading a counter out of a response body.
type Strategy struct {
	Name string
	Path string
}

// FirstCount tries the strategies in order and returns the first value that
// is a non-negative integer, along with the name of the strategy that matched.
func FirstCount(body fetch.Body, strategies []Strategy) (int, string, bool) {
	for _, s := range strategies {
		if n, ok := body.Int(s.Path); ok {
			return n, s.Name, true
		}
	}
	return 0, "", false
}

var thumbnailPreference = []string{"maxres", "standard", "high", "medium", "default"}

// BestThumbnail picks the highest resolution thumbnail that has a URL.
func BestThumbnail(thumbnails gjson.Result) *string {
	for _, size := range thumbnailPreference {
		if u := thumbnails.Get(size + ".url"); u.Type == gjson.String && u.Str != "" {
			s := u.Str
			return &s
		}
	}
	return nil
}

// abbreviate keeps raw response bodies short enough for a diagnostic.
func abbreviate(body fetch.Body) string {
	const limit = 200
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
