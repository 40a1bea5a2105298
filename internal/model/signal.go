package model

import "time"

// Direction indicates which option side a signal buys.
type Direction string

const (
	CEBuy Direction = "CE_BUY"
	PEBuy Direction = "PE_BUY"
)

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == CEBuy {
		return PEBuy
	}
	return CEBuy
}

// Signal is the final immutable decision record produced by the scorer.
type Signal struct {
	Direction  Direction
	Timestamp  time.Time
	Strike     int
	Entry      float64
	Target     float64
	StopLoss   float64
	Confidence int // clamped to [0, 98]

	// Audit trail of the checks that contributed.
	PrimaryChecks int
	BonusChecks   int
	VWAPScore     int // band-placement score at generation time
	Tags          []string
}

// TargetDistance is the absolute distance between entry and target.
func (s *Signal) TargetDistance() float64 {
	d := s.Target - s.Entry
	if d < 0 {
		d = -d
	}
	return d
}
