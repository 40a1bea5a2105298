package model

import "time"

// ExitReason identifies which exit condition closed a position.
type ExitReason string

const (
	ExitStopLoss        ExitReason = "STOP_LOSS"
	ExitTarget          ExitReason = "TARGET"
	ExitOIReversal      ExitReason = "OI_REVERSAL"
	ExitCandleRejection ExitReason = "CANDLE_REJECTION"
	ExitMaxHold         ExitReason = "MAX_HOLD"
)

// Position is the single open trade slot. At most one exists at a time.
type Position struct {
	Signal    Signal
	EnteredAt time.Time

	// TrailStop only ever moves in the favorable direction once set.
	TrailStop   float64
	TrailActive bool
	Closed      bool
	CloseReason ExitReason
	ClosedAt    time.Time
	ClosePrice  float64
}

// EffectiveStop is the trailing stop when active, otherwise the original.
func (p *Position) EffectiveStop() float64 {
	if p.TrailActive {
		return p.TrailStop
	}
	return p.Signal.StopLoss
}

// HeldFor returns how long the position has been open as of now.
func (p *Position) HeldFor(now time.Time) time.Duration {
	return now.Sub(p.EnteredAt)
}

// ExitEvent is emitted when a position closes. The validator consumes it
// for cooldown bookkeeping; the recorder archives it.
type ExitEvent struct {
	Direction Direction
	Strike    int
	Reason    ExitReason
	Entry     float64
	Exit      float64
	EnteredAt time.Time
	ClosedAt  time.Time
}

// Win reports whether the trade closed in profit for its direction.
func (e *ExitEvent) Win() bool {
	if e.Direction == CEBuy {
		return e.Exit > e.Entry
	}
	return e.Exit < e.Entry
}
