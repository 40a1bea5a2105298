package notifier

import (
	"fmt"
	"strings"
	"time"

	"NiftyPulse/internal/model"
	"NiftyPulse/internal/position"
	"NiftyPulse/internal/stats"
)

func directionLabel(d model.Direction) string {
	if d == model.CEBuy {
		return "🟢 CALL BUY"
	}
	return "🔴 PUT BUY"
}

// FormatSignal formats an entry alert for a validated signal.
func FormatSignal(sig *model.Signal, ind *model.IndicatorSet) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🚨 <b>NiftyPulse Signal</b> | %s\n\n", sig.Timestamp.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("%s <b>%d %s</b>\n\n", directionLabel(sig.Direction), sig.Strike, optionSuffix(sig.Direction)))

	b.WriteString(fmt.Sprintf("Entry (fut): %.2f\n", sig.Entry))
	b.WriteString(fmt.Sprintf("Target: %.2f (%+.1f)\n", sig.Target, sig.Target-sig.Entry))
	b.WriteString(fmt.Sprintf("Stop: %.2f (%+.1f)\n", sig.StopLoss, sig.StopLoss-sig.Entry))
	b.WriteString(fmt.Sprintf("Confidence: <b>%d</b> (checks %d primary / %d bonus)\n\n", sig.Confidence, sig.PrimaryChecks, sig.BonusChecks))

	b.WriteString(fmt.Sprintf("Spot vs VWAP: %+.2f | ATR: %.2f\n", ind.VWAPDistance, ind.ATR))
	b.WriteString(fmt.Sprintf("PCR: %.2f (%s)\n", ind.PCR, ind.PCRBias))
	if len(sig.Tags) > 0 {
		b.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(sig.Tags, ", ")))
	}
	if ind.ExpiryDay {
		b.WriteString("\n⚠️ Expiry day: widened stop in effect\n")
	}
	return b.String()
}

func optionSuffix(d model.Direction) string {
	if d == model.CEBuy {
		return "CE"
	}
	return "PE"
}

// FormatExit formats a close alert.
func FormatExit(evt *model.ExitEvent) string {
	var b strings.Builder

	icon := "❌"
	if evt.Win() {
		icon = "✅"
	}
	points := evt.Exit - evt.Entry
	if evt.Direction == model.PEBuy {
		points = evt.Entry - evt.Exit
	}

	b.WriteString(fmt.Sprintf("%s <b>Position Closed</b> | %s\n\n", icon, evt.ClosedAt.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("%s %d %s\n", directionLabel(evt.Direction), evt.Strike, optionSuffix(evt.Direction)))
	b.WriteString(fmt.Sprintf("Reason: %s\n", exitReasonLabel(evt.Reason)))
	b.WriteString(fmt.Sprintf("Entry %.2f → Exit %.2f (%+.1f pts)\n", evt.Entry, evt.Exit, points))
	b.WriteString(fmt.Sprintf("Held: %s\n", evt.ClosedAt.Sub(evt.EnteredAt).Round(time.Minute)))
	return b.String()
}

func exitReasonLabel(r model.ExitReason) string {
	switch r {
	case model.ExitStopLoss:
		return "stop loss hit"
	case model.ExitTarget:
		return "target reached"
	case model.ExitOIReversal:
		return "OI reversal"
	case model.ExitCandleRejection:
		return "rejection candle"
	case model.ExitMaxHold:
		return "max hold time"
	default:
		return string(r)
	}
}

// FormatTrailing formats a trailing stop move notification.
func FormatTrailing(pos *model.Position, upd *position.TrailUpdate) string {
	var b strings.Builder
	b.WriteString("🔒 <b>Trailing Stop Moved</b>\n\n")
	b.WriteString(fmt.Sprintf("%s %d %s\n", directionLabel(pos.Signal.Direction), pos.Signal.Strike, optionSuffix(pos.Signal.Direction)))
	b.WriteString(fmt.Sprintf("Stop: %.2f → %.2f\n", upd.OldStop, upd.NewStop))
	b.WriteString(fmt.Sprintf("Price: %.2f (entry %.2f)\n", upd.Price, pos.Signal.Entry))
	return b.String()
}

// FormatStartup formats the session start message.
func FormatStartup(source string, expiryDay bool, minutesToClose int) string {
	var b strings.Builder
	b.WriteString("🚀 <b>NiftyPulse started</b>\n\n")
	b.WriteString(fmt.Sprintf("Data source: %s\n", source))
	b.WriteString(fmt.Sprintf("Session minutes remaining: %d\n", minutesToClose))
	if expiryDay {
		b.WriteString("📅 Weekly expiry day\n")
	}
	return b.String()
}

// FormatDailySummary formats the end of session report.
func FormatDailySummary(s stats.DayState) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Daily Summary</b> | %s\n\n", s.Date))
	b.WriteString(fmt.Sprintf("Signals fired: %d\n", s.Signals))
	b.WriteString(fmt.Sprintf("Closed trades: %d (✅ %d / ❌ %d)\n", s.Wins+s.Losses, s.Wins, s.Losses))
	if s.Wins+s.Losses > 0 {
		winRate := float64(s.Wins) / float64(s.Wins+s.Losses) * 100
		b.WriteString(fmt.Sprintf("Win rate: %.0f%%\n", winRate))
	}
	b.WriteString(fmt.Sprintf("Net points: %+.1f\n", s.PointsTotal))
	return b.String()
}

// FormatStatus formats the /status command reply.
func FormatStatus(ind *model.IndicatorSet, pos *model.Position, s stats.DayState) string {
	var b strings.Builder
	b.WriteString("📟 <b>Status</b>\n\n")
	if ind != nil {
		b.WriteString(fmt.Sprintf("Price: %.2f | VWAP dist: %+.2f | ATR: %.2f\n", ind.Price, ind.VWAPDistance, ind.ATR))
		b.WriteString(fmt.Sprintf("PCR: %.2f (%s)\n", ind.PCR, ind.PCRBias))
		b.WriteString(fmt.Sprintf("CE vel: %s | PE vel: %s\n", ind.Call.Velocity.Pattern, ind.Put.Velocity.Pattern))
	} else {
		b.WriteString("No scan data yet\n")
	}
	if pos != nil {
		b.WriteString(fmt.Sprintf("\nOpen: %s %d %s @ %.2f (stop %.2f)\n",
			directionLabel(pos.Signal.Direction), pos.Signal.Strike, optionSuffix(pos.Signal.Direction),
			pos.Signal.Entry, pos.EffectiveStop()))
	} else {
		b.WriteString("\nNo open position\n")
	}
	b.WriteString(fmt.Sprintf("\nToday: %d signals, %+.1f pts\n", s.Signals, s.PointsTotal))
	return b.String()
}
