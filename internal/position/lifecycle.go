package position

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"NiftyPulse/internal/config"
	"NiftyPulse/internal/model"
)

// ErrPositionOpen is returned when an open is attempted while the single
// slot is occupied.
var ErrPositionOpen = errors.New("position: slot already occupied")

// TrailUpdate describes a trailing-stop tightening worth notifying.
type TrailUpdate struct {
	OldStop float64
	NewStop float64
	Price   float64
}

// Manager owns the single position slot and evaluates exit conditions
// each cycle. The slot being one optional field, not a collection, is
// what enforces the at-most-one-position invariant.
type Manager struct {
	cfg       *config.Config
	pos       *model.Position
	oiStreak  int
	listeners []func(model.ExitEvent)
}

// NewManager creates an empty-slot manager.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// Subscribe registers a listener for position-close events. Listeners
// run synchronously in slot order on the scan goroutine.
func (m *Manager) Subscribe(fn func(model.ExitEvent)) {
	m.listeners = append(m.listeners, fn)
}

// Current returns the open position, nil when flat.
func (m *Manager) Current() *model.Position { return m.pos }

// Open enters a position from a validated signal.
func (m *Manager) Open(sig model.Signal, now time.Time) error {
	if m.pos != nil {
		return ErrPositionOpen
	}
	m.pos = &model.Position{Signal: sig, EnteredAt: now}
	m.oiStreak = 0
	log.Info().Str("dir", string(sig.Direction)).Int("strike", sig.Strike).
		Float64("entry", sig.Entry).Msg("position opened")
	return nil
}

// Evaluate runs the trailing-stop update and the prioritized exit
// conditions for one cycle. Returns the exit event when the position
// closed this cycle, and a trailing update when the stop tightened
// enough to mention.
func (m *Manager) Evaluate(ind *model.IndicatorSet, now time.Time) (*model.ExitEvent, *TrailUpdate) {
	if m.pos == nil {
		return nil, nil
	}
	price := ind.Price
	trail := m.updateTrailingStop(price)

	if reason, hit := m.checkExits(ind, price, now); hit {
		return m.close(reason, price, now), trail
	}
	return nil, trail
}

// ForceClose squares off the open position regardless of exit
// conditions, used at session close. No-op when flat.
func (m *Manager) ForceClose(price float64, now time.Time) *model.ExitEvent {
	if m.pos == nil {
		return nil
	}
	return m.close(model.ExitMaxHold, price, now)
}

func (m *Manager) checkExits(ind *model.IndicatorSet, price float64, now time.Time) (model.ExitReason, bool) {
	p := m.pos
	held := p.HeldFor(now)
	long := p.Signal.Direction == model.CEBuy

	// (a) stop breach, trailing or original
	stop := p.EffectiveStop()
	if (long && price <= stop) || (!long && price >= stop) {
		return model.ExitStopLoss, true
	}

	// (b) target reached
	if (long && price >= p.Signal.Target) || (!long && price <= p.Signal.Target) {
		return model.ExitTarget, true
	}

	// (c) sustained OI build-up against the position. Suppressed during
	// the initial hold so transient post-entry noise cannot shake us out.
	if held >= time.Duration(m.cfg.Exit.MinHoldBeforeOIExit)*time.Minute {
		if m.oiReversal(ind, long) {
			return model.ExitOIReversal, true
		}
	} else {
		m.oiStreak = 0
	}

	// (d) rejection candle after the minimum hold
	if held >= time.Duration(m.cfg.Exit.MinHoldMinutes)*time.Minute {
		rejected := (long && ind.CandleShape == model.CandleBearish) ||
			(!long && ind.CandleShape == model.CandleBullish)
		if rejected && ind.CandleSize >= m.cfg.Exit.RejectionMultiplier*m.cfg.Candle.MinSize {
			return model.ExitCandleRejection, true
		}
	}

	// (e) time stop
	if held >= time.Duration(m.cfg.Exit.MaxHoldMinutes)*time.Minute {
		return model.ExitMaxHold, true
	}
	return "", false
}

// oiReversal tracks writing against the held side: the position's own
// option side reloading OI means the move is being sold into. Fires on
// the configured number of consecutive cycles above the threshold, or
// immediately on a single extreme spike.
func (m *Manager) oiReversal(ind *model.IndicatorSet, long bool) bool {
	sd := &ind.Put
	if long {
		sd = &ind.Call
	}
	if !sd.Total.Valid15m {
		return false
	}
	adverse := sd.Total.Change15m
	if adverse >= m.cfg.Exit.SpikeThreshold {
		return true
	}
	if adverse >= m.cfg.Exit.OIReversalThreshold {
		m.oiStreak++
		return m.oiStreak >= m.cfg.Exit.ConfirmationCandles
	}
	m.oiStreak = 0
	return false
}

// updateTrailingStop tightens the stop once unrealized gain exceeds the
// trigger fraction of the target distance. The stop only ever moves in
// the favorable direction; an unfavorable price move leaves it alone.
func (m *Manager) updateTrailingStop(price float64) *TrailUpdate {
	if m.cfg.Trailing.Enabled == nil || !*m.cfg.Trailing.Enabled {
		return nil
	}
	p := m.pos
	dist := p.Signal.TargetDistance()
	if dist <= 0 {
		return nil
	}
	long := p.Signal.Direction == model.CEBuy

	gain := price - p.Signal.Entry
	if !long {
		gain = -gain
	}
	if gain < m.cfg.Trailing.Trigger*dist {
		return nil
	}

	old := p.EffectiveStop()
	var next float64
	if long {
		next = price - m.cfg.Trailing.Distance*dist
		if next <= old {
			return nil
		}
	} else {
		next = price + m.cfg.Trailing.Distance*dist
		if next >= old {
			return nil
		}
	}
	p.TrailStop = next
	p.TrailActive = true

	moved := next - old
	if moved < 0 {
		moved = -moved
	}
	if moved/dist*100 >= m.cfg.Trailing.NotifyThreshold {
		return &TrailUpdate{OldStop: old, NewStop: next, Price: price}
	}
	return nil
}

func (m *Manager) close(reason model.ExitReason, price float64, now time.Time) *model.ExitEvent {
	p := m.pos
	p.Closed = true
	p.CloseReason = reason
	p.ClosedAt = now
	p.ClosePrice = price

	evt := model.ExitEvent{
		Direction: p.Signal.Direction,
		Strike:    p.Signal.Strike,
		Reason:    reason,
		Entry:     p.Signal.Entry,
		Exit:      price,
		EnteredAt: p.EnteredAt,
		ClosedAt:  now,
	}
	m.pos = nil
	m.oiStreak = 0

	log.Info().Str("reason", string(reason)).Float64("exit", price).
		Float64("entry", evt.Entry).Bool("win", evt.Win()).Msg("position closed")
	for _, fn := range m.listeners {
		fn(evt)
	}
	return &evt
}
