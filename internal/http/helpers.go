package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quantofalta/internal/core"
)

// parseYearMonth extracts year and month from query parameters, defaulting to
// the current month when a parameter is absent. Malformed or out-of-range
// values are rejected, not silently replaced.
func parseYearMonth(r *http.Request) (year, month int, err error) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, convErr := strconv.Atoi(v)
		if convErr != nil || y < 1 || y > 9999 {
			return 0, 0, fmt.Errorf("%w: year %q", core.ErrInvalidInput, v)
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, convErr := strconv.Atoi(v)
		if convErr != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("%w: month %q", core.ErrInvalidInput, v)
		}
		month = m
	}

	return year, month, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
