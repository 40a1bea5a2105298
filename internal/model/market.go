package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// StrikeQuote holds both option sides of one strike.
type StrikeQuote struct {
	Strike     int
	CallOI     int64
	PutOI      int64
	CallVolume int64
	PutVolume  int64
	CallLTP    float64
	PutLTP     float64
}

// OptionChain is the narrow slice of strikes around ATM fetched each cycle.
// Totals are summed over the fetched window only, not the full chain.
type OptionChain struct {
	ATMStrike   int
	Strikes     []StrikeQuote
	TotalCallOI int64
	TotalPutOI  int64
}

// AtStrike returns the quote for the given strike, if present in the window.
func (c *OptionChain) AtStrike(strike int) (StrikeQuote, bool) {
	for _, s := range c.Strikes {
		if s.Strike == strike {
			return s, true
		}
	}
	return StrikeQuote{}, false
}

// MarketData is everything the collector assembles for one scan cycle.
// A cycle with any required piece missing is aborted before this is built.
type MarketData struct {
	FetchedAt time.Time
	Spot      float64
	Futures   float64
	Chain     OptionChain
	Candles   []OHLCV
}
