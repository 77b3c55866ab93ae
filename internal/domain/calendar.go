package domain

import "time"

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayRange covers the calendar day containing t.
func DayRange(t time.Time) TimeRange {
	start := StartOfDay(t)
	return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// MonthRange covers the calendar month of the given year in loc.
func MonthRange(year int, month time.Month, loc *time.Location) TimeRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return TimeRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// YearRange covers the calendar year in loc.
func YearRange(year int, loc *time.Location) TimeRange {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return TimeRange{Start: start, End: start.AddDate(1, 0, 0)}
}
