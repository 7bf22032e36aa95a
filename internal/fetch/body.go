package fetch

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// Body is a validated JSON response body.
type Body []byte

// Get looks up a gjson path, e.g. "items.0.statistics.subscriberCount".
func (b Body) Get(path string) gjson.Result {
	return gjson.GetBytes(b, path)
}

// Int returns the value at path when it is a non-negative integer, either a
// JSON number or a numeric string as some APIs encode counters.
func (b Body) Int(path string) (int, bool) {
	return AsCount(b.Get(path))
}

func AsCount(r gjson.Result) (int, bool) {
	switch r.Type {
	case gjson.Number:
		if r.Num < 0 || r.Num != float64(int64(r.Num)) {
			return 0, false
		}
		return int(r.Num), true
	case gjson.String:
		n, err := strconv.Atoi(r.Str)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
