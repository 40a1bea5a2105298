package analyzer

import (
	"math"

	"NiftyPulse/internal/model"
)

// detectReversal fires when both ATM sides unwind hard at the same time.
// That is exhaustion of both camps, not a directional opportunity, and
// vetoes the whole cycle.
func (e *Engine) detectReversal(ind *model.IndicatorSet) bool {
	ce, pe := ind.Call.ATM, ind.Put.ATM
	if !ce.Valid15m || !pe.Valid15m {
		return false
	}
	thr := e.cfg.Pattern.ReversalThreshold
	return ce.Change15m < -thr && pe.Change15m < -thr
}

// detectTraps flags a large one-sided OI spike paired with a near-flat
// opposite side: a bull trap when calls spike alone, a bear trap when
// puts do. Either vetoes signal generation for the cycle.
func (e *Engine) detectTraps(ind *model.IndicatorSet) (bull, bear bool) {
	ce, pe := ind.Call.Total, ind.Put.Total
	if !ce.Valid15m || !pe.Valid15m {
		return false, false
	}
	spike, flat := e.cfg.Pattern.TrapSpike, e.cfg.Pattern.TrapFlat
	bull = ce.Change15m > spike && math.Abs(pe.Change15m) < flat
	bear = pe.Change15m > spike && math.Abs(ce.Change15m) < flat
	return bull, bear
}
