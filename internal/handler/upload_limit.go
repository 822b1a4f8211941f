package handler

import (
	"fmt"
	"strconv"
)

// uploadTooLarge reports whether an upload of size bytes exceeds limit and,
// if so, the message returned to the client. A non-positive limit disables
// the check.
func uploadTooLarge(field string, size, limit int64) (string, bool) {
	if limit <= 0 || size <= limit {
		return "", false
	}
	return fmt.Sprintf("%s file too large: %s, max %s", field, humanSize(size), humanSize(limit)), true
}

// humanSize renders n in the largest binary unit up to MB, with one decimal
// when it is not a whole number of that unit.
func humanSize(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case n >= mb:
		return unitSize(n, mb, "MB")
	case n >= kb:
		return unitSize(n, kb, "KB")
	default:
		return strconv.FormatInt(n, 10) + "B"
	}
}

func unitSize(n, unit int64, suffix string) string {
	if n%unit == 0 {
		return strconv.FormatInt(n/unit, 10) + suffix
	}
	return strconv.FormatFloat(float64(n)/float64(unit), 'f', 1, 64) + suffix
}
