package collector

import (
	"context"
	"math"
	"math/rand"
	"time"

	"NiftyPulse/internal/market"
	"NiftyPulse/internal/model"
)

// MockFetcher produces a random-walk market for local runs without an
// Upstox token. OI drifts per strike so the analyzer sees plausible deltas.
type MockFetcher struct {
	rng    *rand.Rand
	spot   float64
	gap    int
	width  int
	callOI map[int]int64
	putOI  map[int]int64
}

func NewMockFetcher(gap, width int) *MockFetcher {
	return &MockFetcher{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		spot:   24850,
		gap:    gap,
		width:  width,
		callOI: make(map[int]int64),
		putOI:  make(map[int]int64),
	}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Initialize(_ context.Context) error { return nil }

func (m *MockFetcher) FetchSpot(_ context.Context) (float64, error) {
	m.spot += (m.rng.Float64() - 0.5) * 12
	return m.spot, nil
}

func (m *MockFetcher) FetchFutures(_ context.Context) (float64, error) {
	return m.spot + 15 + (m.rng.Float64()-0.5)*4, nil
}

func (m *MockFetcher) FetchChain(_ context.Context, spot float64) (model.OptionChain, error) {
	atm := market.ATMStrike(spot, m.gap)
	chain := model.OptionChain{ATMStrike: atm}
	for _, strike := range market.StrikeWindow(atm, m.gap, m.width) {
		if m.callOI[strike] == 0 {
			m.callOI[strike] = 800000 + m.rng.Int63n(400000)
			m.putOI[strike] = 800000 + m.rng.Int63n(400000)
		}
		// drift up to ~1% per cycle
		m.callOI[strike] += m.rng.Int63n(16000) - 7000
		m.putOI[strike] += m.rng.Int63n(16000) - 7000

		dist := math.Abs(float64(strike) - spot)
		chain.Strikes = append(chain.Strikes, model.StrikeQuote{
			Strike:     strike,
			CallOI:     m.callOI[strike],
			PutOI:      m.putOI[strike],
			CallVolume: m.rng.Int63n(500000),
			PutVolume:  m.rng.Int63n(500000),
			CallLTP:    math.Max(5, 120-dist*0.8) + m.rng.Float64()*10,
			PutLTP:     math.Max(5, 120-dist*0.8) + m.rng.Float64()*10,
		})
		chain.TotalCallOI += m.callOI[strike]
		chain.TotalPutOI += m.putOI[strike]
	}
	return chain, nil
}

func (m *MockFetcher) FetchCandles(_ context.Context) ([]model.OHLCV, error) {
	now := market.Now().Truncate(time.Minute)
	bars := make([]model.OHLCV, 0, 60)
	price := m.spot - 30
	for i := 59; i >= 0; i-- {
		open := price
		price += (m.rng.Float64() - 0.5) * 10
		high := math.Max(open, price) + m.rng.Float64()*4
		low := math.Min(open, price) - m.rng.Float64()*4
		bars = append(bars, model.OHLCV{
			Time:   now.Add(-time.Duration(i) * time.Minute),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 50000 + m.rng.Float64()*30000,
		})
	}
	return bars, nil
}
