package analyzer

import (
	"time"

	"NiftyPulse/internal/calculator"
	"NiftyPulse/internal/config"
	"NiftyPulse/internal/market"
	"NiftyPulse/internal/model"
	"NiftyPulse/internal/store"
)

// otmWallRatio is how lopsided one side's OI must be at the adjacent OTM
// strike before it reads as a support floor or an opposing wall.
const otmWallRatio = 1.5

// Engine derives the per-cycle IndicatorSet from the freshly fetched
// market data and the snapshot history. Compute is a pure function of
// its inputs: lookbacks are anchored at the cycle's fetch time, not the
// wall clock, so recomputing the same cycle yields identical output.
type Engine struct {
	cfg *config.Config
}

// NewEngine creates an indicator engine bound to an immutable config.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Compute builds the full indicator set for one scan cycle. The cycle's
// snapshot must already have been appended to the OI store.
func (e *Engine) Compute(data *model.MarketData, oi *store.SnapshotStore, prices *store.PriceStore) model.IndicatorSet {
	now := data.FetchedAt
	ind := model.IndicatorSet{
		Price:     data.Futures,
		ATMStrike: data.Chain.ATMStrike,
		ExpiryDay: market.IsExpiryDay(now),
	}

	latest, ok := oi.Latest()
	if !ok {
		return ind
	}

	ind.PCR = calculator.PCR(latest.TotalPutOI, latest.TotalCallOI, e.cfg.PCR.Ceiling)
	ind.PCRBias = e.pcrBias(ind.PCR)

	e.computeDeltas(&ind, latest, oi, now)

	ind.Call.Velocity = e.classifyVelocity(ind.Call.Total)
	ind.Put.Velocity = e.classifyVelocity(ind.Put.Total)

	ind.Reversal = e.detectReversal(&ind)
	ind.BullTrap, ind.BearTrap = e.detectTraps(&ind)

	e.computeVolumeSpikes(&ind, &data.Chain)
	e.computeOTMWalls(&ind, &data.Chain)

	if vwap, err := calculator.CalculateVWAP(data.Candles); err == nil {
		ind.VWAP = vwap
		ind.VWAPDistance = data.Futures - vwap
	}
	if atr, err := calculator.CalculateATR(data.Candles, e.cfg.ATR.Period); err == nil {
		ind.ATR = atr
	} else {
		ind.ATR = e.cfg.ATR.Fallback
	}
	if ind.ATR > 0 && ind.VWAP > 0 {
		dist := ind.VWAPDistance
		if dist < 0 {
			dist = -dist
		}
		ind.ATRMultiple = dist / ind.ATR
	}

	if n := len(data.Candles); n > 0 {
		ind.CandleShape, ind.CandleSize = calculator.ClassifyCandle(data.Candles[n-1], e.cfg.Candle.MinSize)
	} else {
		ind.CandleShape = model.CandleNeutral
	}

	ind.Streak = prices.Streak()
	if chg, err := prices.Change(now, 5*time.Minute, e.tolerance(e.cfg.Lookback.Tolerance5m)); err == nil {
		ind.PriceChange5m = chg
	}

	return ind
}

func (e *Engine) tolerance(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}

func (e *Engine) computeDeltas(ind *model.IndicatorSet, latest model.Snapshot, oi *store.SnapshotStore, now time.Time) {
	horizons := []struct {
		minutes   time.Duration
		tolerance float64
	}{
		{5 * time.Minute, e.cfg.Lookback.Tolerance5m},
		{15 * time.Minute, e.cfg.Lookback.Tolerance15m},
		{30 * time.Minute, e.cfg.Lookback.Tolerance30m},
	}
	for i, h := range horizons {
		past, err := oi.Lookback(now, h.minutes, e.tolerance(h.tolerance))
		if err != nil {
			continue
		}
		// A lookback that resolves to the current snapshot means the
		// window is still too short for this horizon.
		if !past.Timestamp.Before(latest.Timestamp) {
			continue
		}
		setDelta(&ind.Call.Total, i, calculator.PercentChange(past.TotalCallOI, latest.TotalCallOI))
		setDelta(&ind.Put.Total, i, calculator.PercentChange(past.TotalPutOI, latest.TotalPutOI))
		setDelta(&ind.Call.ATM, i, calculator.PercentChange(past.ATMCallOI, latest.ATMCallOI))
		setDelta(&ind.Put.ATM, i, calculator.PercentChange(past.ATMPutOI, latest.ATMPutOI))
	}
}

func setDelta(d *model.OIDelta, horizon int, change float64) {
	switch horizon {
	case 0:
		d.Change5m, d.Valid5m = change, true
	case 1:
		d.Change15m, d.Valid15m = change, true
	case 2:
		d.Change30m, d.Valid30m = change, true
	}
}

func (e *Engine) pcrBias(pcr float64) string {
	switch {
	case pcr > e.cfg.PCR.Bullish:
		return "BULLISH"
	case pcr < e.cfg.PCR.Bearish:
		return "BEARISH"
	default:
		return "NEUTRAL"
	}
}

// computeVolumeSpikes measures how concentrated each side's traded volume
// is at the ATM strike relative to the per-strike average across the
// window. A burst at ATM is the entry confirmation the scorer looks for.
func (e *Engine) computeVolumeSpikes(ind *model.IndicatorSet, chain *model.OptionChain) {
	n := len(chain.Strikes)
	if n == 0 {
		return
	}
	var totalCE, totalPE int64
	for _, s := range chain.Strikes {
		totalCE += s.CallVolume
		totalPE += s.PutVolume
	}
	atm, ok := chain.AtStrike(chain.ATMStrike)
	if !ok {
		return
	}
	if totalCE > 0 {
		avg := float64(totalCE) / float64(n)
		ind.Call.VolumeSpike = float64(atm.CallVolume) / avg
	}
	if totalPE > 0 {
		avg := float64(totalPE) / float64(n)
		ind.Put.VolumeSpike = float64(atm.PutVolume) / avg
	}
}

// computeOTMWalls flags supportive and opposing OI at the strikes
// adjacent to ATM. For a CE setup: put writing one strike below is a
// floor, a call wall one strike above is a ceiling. Mirrored for PE.
func (e *Engine) computeOTMWalls(ind *model.IndicatorSet, chain *model.OptionChain) {
	gap := e.cfg.Market.StrikeGap
	below, okB := chain.AtStrike(chain.ATMStrike - gap)
	above, okA := chain.AtStrike(chain.ATMStrike + gap)

	if okB {
		ind.Call.OTMSupport = float64(below.PutOI) > otmWallRatio*float64(below.CallOI)
		ind.Put.OTMBlock = ind.Call.OTMSupport
	}
	if okA {
		ind.Put.OTMSupport = float64(above.CallOI) > otmWallRatio*float64(above.PutOI)
		ind.Call.OTMBlock = ind.Put.OTMSupport
	}
}
