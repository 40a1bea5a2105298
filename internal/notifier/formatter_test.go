package notifier

import (
	"strings"
	"testing"
	"time"

	"NiftyPulse/internal/model"
	"NiftyPulse/internal/stats"
)

func TestFormatSignal(t *testing.T) {
	sig := &model.Signal{
		Direction:     model.CEBuy,
		Timestamp:     time.Date(2025, 6, 4, 11, 0, 0, 0, time.UTC),
		Strike:        25000,
		Entry:         25000,
		Target:        25075,
		StopLoss:      24955,
		Confidence:    93,
		PrimaryChecks: 3,
		BonusChecks:   1,
		Tags:          []string{"MULTI_TF_UNWINDING", "ATM_UNWINDING"},
	}
	ind := &model.IndicatorSet{VWAPDistance: 30, ATR: 30, PCR: 1.3, PCRBias: "BULLISH"}

	msg := FormatSignal(sig, ind)
	for _, want := range []string{"25000 CE", "25075", "24955", "93", "MULTI_TF_UNWINDING"} {
		if !strings.Contains(msg, want) {
			t.Errorf("signal alert missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "Expiry day") {
		t.Error("no expiry warning outside expiry sessions")
	}

	ind.ExpiryDay = true
	msg = FormatSignal(sig, ind)
	if !strings.Contains(msg, "widened stop") {
		t.Errorf("expiry sessions widen the stop and the alert must say so:\n%s", msg)
	}
}

func TestFormatExit(t *testing.T) {
	entered := time.Date(2025, 6, 4, 11, 0, 0, 0, time.UTC)
	evt := &model.ExitEvent{
		Direction: model.PEBuy,
		Strike:    25000,
		Reason:    model.ExitTarget,
		Entry:     25000,
		Exit:      24930,
		EnteredAt: entered,
		ClosedAt:  entered.Add(25 * time.Minute),
	}
	msg := FormatExit(evt)
	if !strings.Contains(msg, "✅") {
		t.Error("a winning exit should carry the win marker")
	}
	if !strings.Contains(msg, "+70.0 pts") {
		t.Errorf("PE points are entry minus exit:\n%s", msg)
	}
	if !strings.Contains(msg, "25m") {
		t.Errorf("expected hold duration in the alert:\n%s", msg)
	}
}

func TestFormatDailySummary(t *testing.T) {
	msg := FormatDailySummary(stats.DayState{
		Date: "2025-06-04", Signals: 3, Wins: 2, Losses: 1, PointsTotal: 55,
	})
	for _, want := range []string{"2025-06-04", "3", "67%", "+55.0"} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary missing %q:\n%s", want, msg)
		}
	}
}
