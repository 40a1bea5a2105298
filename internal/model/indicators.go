package model

// VelocityPattern classifies how one option side's OI change develops
// across the 15m and 30m windows.
type VelocityPattern string

const (
	VelocityNormal       VelocityPattern = "NORMAL"
	VelocityAcceleration VelocityPattern = "ACCELERATION"
	VelocityDeceleration VelocityPattern = "DECELERATION"
	VelocityMonsterLoad  VelocityPattern = "MONSTER_LOADING"
	VelocityExhaustion   VelocityPattern = "EXHAUSTION"
)

// Velocity is one side's pattern plus the signed confidence modifier it
// contributes to scoring.
type Velocity struct {
	Pattern  VelocityPattern
	Strength string // "STRONG", "MEDIUM", "WEAK"
	Modifier int    // signed, summed into signal confidence
}

// CandleShape classifies the most recent completed candle.
type CandleShape string

const (
	CandleBullish CandleShape = "BULLISH"
	CandleBearish CandleShape = "BEARISH"
	CandleDoji    CandleShape = "DOJI"
	CandleNeutral CandleShape = "NEUTRAL"
)

// OIDelta holds one side's percentage change over the three lookback
// horizons. Valid* is false while the store cannot answer that horizon.
type OIDelta struct {
	Change5m  float64
	Change15m float64
	Change30m float64
	Valid5m   bool
	Valid15m  bool
	Valid30m  bool
}

// SideIndicators bundles everything computed for one option side.
type SideIndicators struct {
	Total       OIDelta
	ATM         OIDelta
	Velocity    Velocity
	VolumeSpike float64 // current volume vs rolling average, 1.0 = average
	OTMSupport  bool    // supportive OI at the adjacent OTM strike
	OTMBlock    bool    // opposing OI wall at the adjacent OTM strike
}

// IndicatorSet is the derived, per-cycle value object. Recomputed from
// scratch every cycle, never persisted.
type IndicatorSet struct {
	Price     float64
	ATMStrike int

	Call SideIndicators
	Put  SideIndicators

	PCR     float64
	PCRBias string // "BULLISH", "BEARISH", "NEUTRAL"

	VWAP         float64
	VWAPDistance float64 // signed, price - VWAP
	ATR          float64
	ATRMultiple  float64 // |VWAPDistance| / ATR

	CandleShape CandleShape
	CandleSize  float64
	Streak      int // consecutive same-direction price cycles, signed

	PriceChange5m float64
	ExpiryDay     bool

	// Reversal and trap vetoes, evaluated before any directional scoring.
	Reversal bool
	BullTrap bool
	BearTrap bool
}

// Warm reports whether both short horizons are answerable, i.e. the store
// holds enough history for the primary checks.
func (s *IndicatorSet) Warm() bool {
	return s.Call.Total.Valid5m && s.Call.Total.Valid15m &&
		s.Put.Total.Valid5m && s.Put.Total.Valid15m
}

// FullyWarm additionally requires the 30m horizon on both sides.
func (s *IndicatorSet) FullyWarm() bool {
	return s.Warm() && s.Call.Total.Valid30m && s.Put.Total.Valid30m
}
