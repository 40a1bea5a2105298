package calculator

import (
	"errors"

	"NiftyPulse/internal/model"
)

// CalculateVWAP computes the volume-weighted average price over the given
// bars using typical price (H+L+C)/3 per bar.
func CalculateVWAP(bars []model.OHLCV) (float64, error) {
	if len(bars) == 0 {
		return 0, errors.New("no bars provided")
	}
	var pv, vol float64
	for _, b := range bars {
		typical := (b.High + b.Low + b.Close) / 3.0
		pv += typical * b.Volume
		vol += b.Volume
	}
	if vol == 0 {
		return 0, errors.New("zero total volume")
	}
	return pv / vol, nil
}
