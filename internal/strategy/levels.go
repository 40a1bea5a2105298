package strategy

import "NiftyPulse/internal/model"

// applyLevels derives entry, target, and stop from the futures price and
// the cycle's ATR. Expiry sessions get the wider stop multiplier: gamma
// moves there routinely sweep a normal stop before the thesis plays out.
func (s *Scorer) applyLevels(sig *model.Signal, ind *model.IndicatorSet) {
	atr := ind.ATR
	if atr <= 0 {
		atr = s.cfg.ATR.Fallback
	}
	stopMult := s.cfg.ATR.StopMultiplier
	if ind.ExpiryDay {
		stopMult = s.cfg.ATR.ExpiryStopMultiplier
	}

	sig.Entry = ind.Price
	if sig.Direction == model.CEBuy {
		sig.Target = sig.Entry + atr*s.cfg.ATR.TargetMultiplier
		sig.StopLoss = sig.Entry - atr*stopMult
	} else {
		sig.Target = sig.Entry - atr*s.cfg.ATR.TargetMultiplier
		sig.StopLoss = sig.Entry + atr*stopMult
	}
}
