package common

import (
	"fmt"
	"math"
	"time"
)

const DateFormat = "2006-01-02"

// EnumerateDates returns every calendar date in [fromDate, toDate]
// inclusive. The enumeration is dense regardless of gaps in any source.
// An inverted range yields an empty slice.
func EnumerateDates(fromDate, toDate string) []string {
	from, err := time.Parse(DateFormat, fromDate)
	if err != nil {
		return nil
	}
	to, err := time.Parse(DateFormat, toDate)
	if err != nil {
		return nil
	}

	dates := make([]string, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateFormat))
	}
	return dates
}

// NextDate returns the day after the given date.
func NextDate(date string) string {
	d, err := time.Parse(DateFormat, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, 1).Format(DateFormat)
}

// IsValidDate reports whether the string is a well-formed calendar date.
func IsValidDate(date string) bool {
	_, err := time.Parse(DateFormat, date)
	return err == nil
}

// TodayUTC returns the current UTC calendar date.
func TodayUTC() string {
	return time.Now().UTC().Format(DateFormat)
}

func FormatWithUnits(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2f T", n/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2f B", n/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2f M", n/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2f K", n/1e3)
	default:
		return fmt.Sprintf("%.2f", n)
	}
}

func FormatPercentWithSign(percent float64) string {
	if percent == 0 {
		return "0.00%"
	} else if percent > 0 {
		return fmt.Sprintf("+%.2f%%", percent)
	} else {
		return fmt.Sprintf("%.2f%%", percent)
	}
}
