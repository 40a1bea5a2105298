package market

import "time"

// NIFTY weekly options expire on Tuesday; monthly futures on the last
// Thursday of the month.

// NextWeeklyExpiry returns the next Tuesday expiry date as of t. On a
// Tuesday before the close the same day is returned; after the close the
// following week's Tuesday.
func NextWeeklyExpiry(t time.Time) time.Time {
	t = t.In(IST)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, IST)
	ahead := (int(time.Tuesday) - int(t.Weekday()) + 7) % 7
	if ahead == 0 && t.After(closeAt(t)) {
		ahead = 7
	}
	return day.AddDate(0, 0, ahead)
}

// NextMonthlyExpiry returns the last Thursday of the current month, or of
// the next month once it has passed.
func NextMonthlyExpiry(t time.Time) time.Time {
	t = t.In(IST)
	last := lastThursday(t.Year(), t.Month())
	if last.Before(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, IST)) {
		next := t.AddDate(0, 1, -t.Day()+1)
		last = lastThursday(next.Year(), next.Month())
	}
	return last
}

func lastThursday(year int, month time.Month) time.Time {
	// Day 0 of the next month is the last day of this one.
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, IST)
	for d.Weekday() != time.Thursday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// IsExpiryDay reports whether t is a weekly expiry day. Expiry sessions
// carry elevated gamma risk, so the scorer widens stops and trims
// confidence on them.
func IsExpiryDay(t time.Time) bool {
	return t.In(IST).Weekday() == time.Tuesday
}
