package storage

import "time"

// NextDueDate advances a due date by one recurrence period. Monthly advances
// one calendar month; when the source day does not exist in the target month
// (e.g. Jan 31 -> February) the result clamps to the last valid day of the
// target month.
func NextDueDate(current time.Time, pattern string) time.Time {
	switch pattern {
	case RecurrenceDaily:
		return current.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return current.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return addMonthClamped(current)
	}
	return current
}

func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysInMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
