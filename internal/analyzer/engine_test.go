package analyzer

import (
	"reflect"
	"testing"
	"time"

	"NiftyPulse/internal/config"
	"NiftyPulse/internal/market"
	"NiftyPulse/internal/model"
	"NiftyPulse/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("testdata/absent.yaml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func delta(c5, c15, c30 float64) model.OIDelta {
	return model.OIDelta{
		Change5m: c5, Change15m: c15, Change30m: c30,
		Valid5m: true, Valid15m: true, Valid30m: true,
	}
}

func TestClassifyVelocity(t *testing.T) {
	e := NewEngine(testConfig(t))

	cases := []struct {
		name string
		d    model.OIDelta
		want model.VelocityPattern
	}{
		{"monster both windows hot", delta(0, -7, -8), model.VelocityMonsterLoad},
		{"exhaustion heavy then flat", delta(0, -0.5, -6), model.VelocityExhaustion},
		{"acceleration 15m over 30m", delta(0, -4, -2), model.VelocityAcceleration},
		{"deceleration 30m over 15m", delta(0, -1.5, -4), model.VelocityDeceleration},
		{"quiet market", delta(0, -1, -1.5), model.VelocityNormal},
		{"monster beats acceleration", delta(0, -9, -6.5), model.VelocityMonsterLoad},
	}
	for _, tc := range cases {
		got := e.classifyVelocity(tc.d)
		if got.Pattern != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got.Pattern)
		}
	}

	// Without the 30m horizon no pattern can be read.
	cold := model.OIDelta{Change15m: -9, Valid15m: true}
	if got := e.classifyVelocity(cold); got.Pattern != model.VelocityNormal {
		t.Errorf("expected NORMAL before warm-up, got %s", got.Pattern)
	}
}

func TestDetectReversal(t *testing.T) {
	e := NewEngine(testConfig(t))
	ind := &model.IndicatorSet{}
	ind.Call.ATM = delta(0, -6, 0)
	ind.Put.ATM = delta(0, -5.5, 0)
	if !e.detectReversal(ind) {
		t.Error("expected reversal when both ATM sides unwind past threshold")
	}

	ind.Put.ATM = delta(0, -2, 0)
	if e.detectReversal(ind) {
		t.Error("one-sided unwinding is not a reversal")
	}
}

func TestDetectTraps(t *testing.T) {
	e := NewEngine(testConfig(t))
	ind := &model.IndicatorSet{}
	ind.Call.Total = delta(0, 9, 0)
	ind.Put.Total = delta(0, 1, 0)
	bull, bear := e.detectTraps(ind)
	if !bull || bear {
		t.Errorf("expected bull trap only, got bull=%v bear=%v", bull, bear)
	}

	ind.Call.Total = delta(0, 0.5, 0)
	ind.Put.Total = delta(0, 10, 0)
	bull, bear = e.detectTraps(ind)
	if bull || !bear {
		t.Errorf("expected bear trap only, got bull=%v bear=%v", bull, bear)
	}

	// A spike with the other side also moving is directional, not a trap.
	ind.Call.Total = delta(0, 9, 0)
	ind.Put.Total = delta(0, -3, 0)
	bull, bear = e.detectTraps(ind)
	if bull || bear {
		t.Error("expected no trap when the opposite side is not flat")
	}
}

func TestValidateVWAP(t *testing.T) {
	cfg := testConfig(t)

	ind := &model.IndicatorSet{VWAP: 24970, ATR: 30, VWAPDistance: 30, ATRMultiple: 1.0}
	score, ok := ValidateVWAP(ind, model.CEBuy, cfg)
	if !ok {
		t.Fatal("expected CE to pass above VWAP inside the band")
	}
	if score < 95 {
		t.Errorf("near band center should score high, got %d", score)
	}

	if _, ok := ValidateVWAP(ind, model.PEBuy, cfg); ok {
		t.Error("PE above VWAP must fail the side check")
	}

	ind.ATRMultiple = 0.05
	if _, ok := ValidateVWAP(ind, model.CEBuy, cfg); ok {
		t.Error("hugging VWAP must reject")
	}
	ind.ATRMultiple = 2.5
	if _, ok := ValidateVWAP(ind, model.CEBuy, cfg); ok {
		t.Error("overextension must reject")
	}

	ind.ATRMultiple = 1.0
	ind.VWAP = 0
	if _, ok := ValidateVWAP(ind, model.CEBuy, cfg); ok {
		t.Error("missing VWAP must reject")
	}
}

// buildCycle appends snapshots every five minutes and returns the market
// data for the final cycle, with call OI steadily unwinding.
func buildCycle(t *testing.T, oi *store.SnapshotStore, prices *store.PriceStore) *model.MarketData {
	t.Helper()
	// A Wednesday, well inside the session.
	base := time.Date(2025, 6, 4, 10, 0, 0, 0, market.IST)

	var last model.Snapshot
	for i := 0; i <= 6; i++ {
		ts := base.Add(time.Duration(i*5) * time.Minute)
		snap := model.Snapshot{
			Timestamp:   ts,
			TotalCallOI: 1000000 - int64(i)*15000,
			TotalPutOI:  1000000 + int64(i)*5000,
			ATMStrike:   24850,
			ATMCallOI:   200000 - int64(i)*5000,
			ATMPutOI:    200000,
			Price:       24800 + float64(i)*12,
		}
		if err := oi.Append(snap); err != nil {
			t.Fatalf("append: %v", err)
		}
		prices.Append(model.PricePoint{Timestamp: ts, Price: snap.Price})
		last = snap
	}

	candles := make([]model.OHLCV, 30)
	for i := range candles {
		p := 24780 + float64(i)*3
		candles[i] = model.OHLCV{
			Time: base.Add(time.Duration(i) * time.Minute),
			Open: p, High: p + 12, Low: p - 2, Close: p + 8, Volume: 40000,
		}
	}

	return &model.MarketData{
		FetchedAt: last.Timestamp,
		Spot:      last.Price - 15,
		Futures:   last.Price,
		Chain: model.OptionChain{
			ATMStrike: 24850,
			Strikes: []model.StrikeQuote{
				{Strike: 24750, CallOI: 80000, PutOI: 220000, CallVolume: 40000, PutVolume: 60000},
				{Strike: 24800, CallOI: 150000, PutOI: 250000, CallVolume: 50000, PutVolume: 70000},
				{Strike: 24850, CallOI: 170000, PutOI: 200000, CallVolume: 300000, PutVolume: 90000},
				{Strike: 24900, CallOI: 250000, PutOI: 90000, CallVolume: 60000, PutVolume: 40000},
				{Strike: 24950, CallOI: 300000, PutOI: 60000, CallVolume: 50000, PutVolume: 30000},
			},
			TotalCallOI: last.TotalCallOI,
			TotalPutOI:  last.TotalPutOI,
		},
		Candles: candles,
	}
}

func TestComputeWarmWindow(t *testing.T) {
	cfg := testConfig(t)
	e := NewEngine(cfg)
	oi := store.NewSnapshotStore(cfg.Scan.WindowSize)
	prices := store.NewPriceStore(cfg.Scan.PriceWindowSize)
	data := buildCycle(t, oi, prices)

	ind := e.Compute(data, oi, prices)

	if !ind.Warm() || !ind.FullyWarm() {
		t.Fatal("expected all horizons warm after 30 minutes of snapshots")
	}
	if ind.Call.Total.Change15m >= 0 {
		t.Errorf("call OI should be unwinding, got %.2f", ind.Call.Total.Change15m)
	}
	if ind.Put.Total.Change15m <= 0 {
		t.Errorf("put OI should be building, got %.2f", ind.Put.Total.Change15m)
	}
	if ind.PCR <= 1.0 {
		t.Errorf("puts outnumber calls, PCR should exceed 1, got %.3f", ind.PCR)
	}
	if ind.VWAP <= 0 || ind.ATR <= 0 {
		t.Errorf("expected VWAP and ATR computed, got %.2f / %.2f", ind.VWAP, ind.ATR)
	}
	if ind.ExpiryDay {
		t.Error("a Wednesday is not a weekly expiry day")
	}
	// ATM call volume dominates the window, the spike should register.
	if ind.Call.VolumeSpike <= 1.5 {
		t.Errorf("expected a call volume spike at ATM, got %.2f", ind.Call.VolumeSpike)
	}
	// Put wall below, call wall above: support and block both present.
	if !ind.Call.OTMSupport || !ind.Call.OTMBlock {
		t.Errorf("expected CE support and block walls, got %v/%v", ind.Call.OTMSupport, ind.Call.OTMBlock)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	cfg := testConfig(t)
	e := NewEngine(cfg)
	oi := store.NewSnapshotStore(cfg.Scan.WindowSize)
	prices := store.NewPriceStore(cfg.Scan.PriceWindowSize)
	data := buildCycle(t, oi, prices)

	first := e.Compute(data, oi, prices)
	second := e.Compute(data, oi, prices)
	if !reflect.DeepEqual(first, second) {
		t.Error("recomputing the same cycle must yield identical indicators")
	}
}

func TestComputeColdStart(t *testing.T) {
	cfg := testConfig(t)
	e := NewEngine(cfg)
	oi := store.NewSnapshotStore(cfg.Scan.WindowSize)
	prices := store.NewPriceStore(cfg.Scan.PriceWindowSize)

	ts := time.Date(2025, 6, 4, 9, 16, 0, 0, market.IST)
	oi.Append(model.Snapshot{Timestamp: ts, TotalCallOI: 100, TotalPutOI: 100, Price: 24800})
	prices.Append(model.PricePoint{Timestamp: ts, Price: 24800})

	ind := e.Compute(&model.MarketData{FetchedAt: ts, Futures: 24800}, oi, prices)
	if ind.Warm() {
		t.Error("a single snapshot cannot warm any horizon")
	}
	if ind.Call.Total.Valid5m {
		t.Error("5m delta must be invalid when the lookback resolves to the current snapshot")
	}
}
