package market

import (
	"reflect"
	"testing"
	"time"
)

func ist(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, IST)
}

func TestIsOpen(t *testing.T) {
	// Wednesday, 2025-06-04.
	if !IsOpen(ist(2025, 6, 4, 9, 15)) {
		t.Error("09:15 is the open, session is live")
	}
	if !IsOpen(ist(2025, 6, 4, 15, 30)) {
		t.Error("15:30 is the close, session is still live")
	}
	if IsOpen(ist(2025, 6, 4, 9, 14)) {
		t.Error("09:14 is before the open")
	}
	if IsOpen(ist(2025, 6, 4, 15, 31)) {
		t.Error("15:31 is after the close")
	}
	// Saturday.
	if IsOpen(ist(2025, 6, 7, 11, 0)) {
		t.Error("weekends are closed")
	}
}

func TestMinutesToClose(t *testing.T) {
	if got := MinutesToClose(ist(2025, 6, 4, 15, 0)); got != 30 {
		t.Errorf("expected 30 minutes, got %d", got)
	}
	if got := MinutesToClose(ist(2025, 6, 4, 16, 0)); got != 0 {
		t.Errorf("expected 0 after the close, got %d", got)
	}
}

func TestNextWeeklyExpiry(t *testing.T) {
	// Wednesday resolves to the following Tuesday.
	got := NextWeeklyExpiry(ist(2025, 6, 4, 11, 0))
	want := ist(2025, 6, 10, 0, 0)
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", want.Format("2006-01-02"), got.Format("2006-01-02"))
	}

	// A Tuesday during the session is its own expiry.
	got = NextWeeklyExpiry(ist(2025, 6, 10, 11, 0))
	if !got.Equal(ist(2025, 6, 10, 0, 0)) {
		t.Errorf("expected same-day expiry, got %s", got.Format("2006-01-02"))
	}

	// After the close the contract has expired; next week's Tuesday.
	got = NextWeeklyExpiry(ist(2025, 6, 10, 16, 0))
	if !got.Equal(ist(2025, 6, 17, 0, 0)) {
		t.Errorf("expected next Tuesday, got %s", got.Format("2006-01-02"))
	}
}

func TestNextMonthlyExpiry(t *testing.T) {
	// Last Thursday of June 2025 is the 26th.
	got := NextMonthlyExpiry(ist(2025, 6, 4, 11, 0))
	if !got.Equal(ist(2025, 6, 26, 0, 0)) {
		t.Errorf("expected 2025-06-26, got %s", got.Format("2006-01-02"))
	}
	// Past it, July's last Thursday.
	got = NextMonthlyExpiry(ist(2025, 6, 27, 11, 0))
	if !got.Equal(ist(2025, 7, 31, 0, 0)) {
		t.Errorf("expected 2025-07-31, got %s", got.Format("2006-01-02"))
	}
}

func TestIsExpiryDay(t *testing.T) {
	if !IsExpiryDay(ist(2025, 6, 10, 11, 0)) {
		t.Error("Tuesday is the weekly expiry")
	}
	if IsExpiryDay(ist(2025, 6, 4, 11, 0)) {
		t.Error("Wednesday is not an expiry day")
	}
}

func TestATMStrike(t *testing.T) {
	if got := ATMStrike(24874, 50); got != 24850 {
		t.Errorf("expected 24850, got %d", got)
	}
	if got := ATMStrike(24875, 50); got != 24900 {
		t.Errorf("expected round-half-up to 24900, got %d", got)
	}
}

func TestStrikeWindow(t *testing.T) {
	got := StrikeWindow(24850, 50, 2)
	want := []int{24750, 24800, 24850, 24900, 24950}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
