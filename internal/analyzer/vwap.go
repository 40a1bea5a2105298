package analyzer

import (
	"NiftyPulse/internal/config"
	"NiftyPulse/internal/model"
)

// ValidateVWAP enforces the structural side check and scores the VWAP
// distance. A candidate on the wrong side of VWAP is invalid outright:
// strictly above for CE, strictly below for PE. Within the accepted
// side, the distance in ATR multiples must sit inside the configured
// band; hugging VWAP is noise and overextension is chase, so both ends
// reject. Inside the band the score peaks at the band center and falls
// off linearly toward 60 at the edges.
func ValidateVWAP(ind *model.IndicatorSet, dir model.Direction, cfg *config.Config) (score int, ok bool) {
	if ind.VWAP <= 0 || ind.ATR <= 0 {
		return 0, false
	}
	if dir == model.CEBuy && ind.VWAPDistance <= 0 {
		return 0, false
	}
	if dir == model.PEBuy && ind.VWAPDistance >= 0 {
		return 0, false
	}

	lo, hi := cfg.VWAP.MinATRMultiple, cfg.VWAP.MaxATRMultiple
	m := ind.ATRMultiple
	if m < lo || m > hi {
		return 0, false
	}

	mid := (lo + hi) / 2
	half := (hi - lo) / 2
	off := m - mid
	if off < 0 {
		off = -off
	}
	score = 100 - int(off/half*40)
	if score > 100 {
		score = 100
	}
	return score, true
}
