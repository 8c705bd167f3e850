// ABOUTME: Time helpers for period-based item filtering
// ABOUTME: Maps period names like "today" and "week" to cutoff times

package timeutil

import "time"

// StartOfToday returns midnight of the current day in local time.
func StartOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// StartOfYesterday returns midnight of yesterday in local time.
func StartOfYesterday() time.Time {
	return StartOfToday().AddDate(0, 0, -1)
}

// StartOfWeek returns midnight of the most recent Sunday in local time.
func StartOfWeek() time.Time {
	today := StartOfToday()
	return today.AddDate(0, 0, -int(today.Weekday()))
}

// StartOfMonth returns midnight of the first day of the current month.
func StartOfMonth() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// ParsePeriod converts a period name to a cutoff time.
// Supported values: "today", "yesterday", "week", "month".
func ParsePeriod(period string) (time.Time, bool) {
	switch period {
	case "today":
		return StartOfToday(), true
	case "yesterday":
		return StartOfYesterday(), true
	case "week":
		return StartOfWeek(), true
	case "month":
		return StartOfMonth(), true
	default:
		return time.Time{}, false
	}
}
