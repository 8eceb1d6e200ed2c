package utils

import (
	"time"
)

// ForecastHorizon is the number of days in a national forecast window.
const ForecastHorizon = 7

// MaxYear is the last year FormatISODate renders as four digits.
const MaxYear = 9999

// ParseISODate parses a YYYY-MM-DD calendar date into midnight UTC.
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}

// FormatISODate formats a date as YYYY-MM-DD.
func FormatISODate(d time.Time) string {
	return d.Format(time.DateOnly)
}

// ForecastWindow returns the ForecastHorizon consecutive dates starting at start.
func ForecastWindow(start time.Time) []time.Time {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	window := make([]time.Time, ForecastHorizon)
	for i := range window {
		window[i] = day.AddDate(0, 0, i)
	}
	return window
}
