// internal/services/weeks.go
package services

import "time"

// ISOWeek returns the ISO-8601 week number for t.
func ISOWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// PreviousISOWeek returns the ISO week before the one containing now.
// Campaigns and history records default to the previous week because metrics
// are reported for the week that just closed.
func PreviousISOWeek(now time.Time) int {
	_, week := now.ISOWeek()
	if week == 1 {
		// Last week of the previous ISO year (52 or 53).
		_, lastWeek := time.Date(now.Year()-1, time.December, 28, 0, 0, 0, 0, now.Location()).ISOWeek()
		return lastWeek
	}
	return week - 1
}

// WeekBounds returns the Monday 00:00 start and Sunday end of the week
// containing t (weeks start on Monday).
func WeekBounds(t time.Time) (start, end time.Time) {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	y, m, d := t.AddDate(0, 0, -(weekday - 1)).Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}
