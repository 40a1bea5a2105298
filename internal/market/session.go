package market

import "time"

// IST is the NSE trading timezone. time.FixedZone avoids depending on the
// host tzdata being present in minimal containers.
var IST = time.FixedZone("IST", 5*3600+1800)

// Session boundaries for the NSE cash/derivatives segment.
const (
	OpenHour    = 9
	OpenMinute  = 15
	CloseHour   = 15
	CloseMinute = 30
)

// Now returns the current time in IST.
func Now() time.Time { return time.Now().In(IST) }

// openAt and closeAt anchor the session to the given day.
func openAt(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), OpenHour, OpenMinute, 0, 0, IST)
}

func closeAt(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), CloseHour, CloseMinute, 0, 0, IST)
}

// IsOpen reports whether t falls inside regular trading hours on a
// weekday. Exchange holidays are not modeled; a holiday scan simply
// finds stale quotes and aborts.
func IsOpen(t time.Time) bool {
	t = t.In(IST)
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !t.Before(openAt(t)) && !t.After(closeAt(t))
}

// MinutesToClose returns whole minutes until session close, 0 if the
// session is over for the day.
func MinutesToClose(t time.Time) int {
	t = t.In(IST)
	c := closeAt(t)
	if t.After(c) {
		return 0
	}
	return int(c.Sub(t) / time.Minute)
}

// SinceOpen returns how long the session has been running at t, negative
// before the open.
func SinceOpen(t time.Time) time.Duration {
	t = t.In(IST)
	return t.Sub(openAt(t))
}
