package collector

import (
	"context"

	"NiftyPulse/internal/model"
)

// Fetcher defines the interface to the market-data source.
type Fetcher interface {
	// Initialize performs instrument discovery (spot and futures keys,
	// current expiry) and must be called once before fetching.
	Initialize(ctx context.Context) error
	FetchSpot(ctx context.Context) (float64, error)
	FetchFutures(ctx context.Context) (float64, error)
	// FetchChain returns the option-chain slice around the ATM strike
	// implied by spot.
	FetchChain(ctx context.Context, spot float64) (model.OptionChain, error)
	// FetchCandles returns the recent intraday bars for the tracked
	// futures instrument, oldest first.
	FetchCandles(ctx context.Context) ([]model.OHLCV, error)
	Name() string
}
