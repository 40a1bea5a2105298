package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"NiftyPulse/internal/model"
)

// Collector assembles one complete MarketData per scan cycle. Any missing
// required piece aborts the cycle; a failed futures quote degrades to spot.
type Collector struct {
	fetcher Fetcher
}

func New(fetcher Fetcher) *Collector {
	return &Collector{fetcher: fetcher}
}

func (c *Collector) Initialize(ctx context.Context) error {
	return c.fetcher.Initialize(ctx)
}

func (c *Collector) Name() string { return c.fetcher.Name() }

// Collect fetches spot, futures, chain and candles. The returned data is
// stamped once so every downstream lookback uses the same anchor.
func (c *Collector) Collect(ctx context.Context) (*model.MarketData, error) {
	start := time.Now()

	spot, err := c.fetcher.FetchSpot(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch spot: %w", err)
	}
	if spot <= 0 {
		return nil, fmt.Errorf("invalid spot price %.2f", spot)
	}

	futures, err := c.fetcher.FetchFutures(ctx)
	if err != nil || futures <= 0 {
		log.Warn().Err(err).Msg("collector: futures quote unavailable, using spot")
		futures = spot
	}

	chain, err := c.fetcher.FetchChain(ctx, spot)
	if err != nil {
		return nil, fmt.Errorf("fetch chain: %w", err)
	}

	candles, err := c.fetcher.FetchCandles(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}

	log.Debug().
		Str("source", c.fetcher.Name()).
		Float64("spot", spot).
		Int("strikes", len(chain.Strikes)).
		Int("candles", len(candles)).
		Dur("took", time.Since(start)).
		Msg("collector: cycle complete")

	return &model.MarketData{
		FetchedAt: time.Now(),
		Spot:      spot,
		Futures:   futures,
		Chain:     chain,
		Candles:   candles,
	}, nil
}

// BuildSnapshot reduces a full cycle to the compact record the OI store keeps.
func BuildSnapshot(data *model.MarketData) model.Snapshot {
	snap := model.Snapshot{
		Timestamp:   data.FetchedAt,
		TotalCallOI: data.Chain.TotalCallOI,
		TotalPutOI:  data.Chain.TotalPutOI,
		ATMStrike:   data.Chain.ATMStrike,
		Price:       data.Futures,
	}
	if atm, ok := data.Chain.AtStrike(data.Chain.ATMStrike); ok {
		snap.ATMCallOI = atm.CallOI
		snap.ATMPutOI = atm.PutOI
	}
	return snap
}
