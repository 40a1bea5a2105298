package calculator

import (
	"math"

	"NiftyPulse/internal/model"
)

// ClassifyCandle buckets a bar by body direction and body-to-range ratio.
// minSize is the smallest body (in points) considered directional; below
// it the bar reads as neutral chop.
func ClassifyCandle(bar model.OHLCV, minSize float64) (model.CandleShape, float64) {
	body := bar.Close - bar.Open
	size := math.Abs(body)
	rng := bar.High - bar.Low

	if rng > 0 && size/rng < 0.2 {
		return model.CandleDoji, size
	}
	if size < minSize {
		return model.CandleNeutral, size
	}
	if body > 0 {
		return model.CandleBullish, size
	}
	return model.CandleBearish, size
}
