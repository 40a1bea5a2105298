package collector

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"NiftyPulse/internal/config"
	"NiftyPulse/internal/market"
	"NiftyPulse/internal/model"
)

const instrumentsURL = "https://assets.upstox.com/market-quote/instruments/exchange/complete.json.gz"

// UpstoxFetcher implements Fetcher against the Upstox v2 API.
type UpstoxFetcher struct {
	cfg    *config.Config
	client *http.Client

	spotKey    string
	futuresKey string
	expiry     string // weekly option expiry, YYYY-MM-DD
}

// NewUpstoxFetcher creates a fetcher; Initialize must run before use.
func NewUpstoxFetcher(cfg *config.Config) *UpstoxFetcher {
	return &UpstoxFetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *UpstoxFetcher) Name() string { return "upstox" }

// request performs a GET with auth and bounded retry. Rate-limit and
// transport errors back off exponentially; all other non-200s fail fast.
// This is the only place retry logic lives.
func (f *UpstoxFetcher) request(ctx context.Context, rawURL string, out any) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<uint(attempt-1)) * 2 * time.Second):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+f.cfg.Upstox.AccessToken)
		req.Header.Set("Accept", "application/json")

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited")
			log.Warn().Int("attempt", attempt+1).Msg("upstox: rate limit, backing off")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("upstox API status %d: %s", resp.StatusCode, string(body))
		}
		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("all retries exhausted: %w", lastErr)
}

type instrument struct {
	Segment        string `json:"segment"`
	Name           string `json:"name"`
	TradingSymbol  string `json:"trading_symbol"`
	InstrumentKey  string `json:"instrument_key"`
	InstrumentType string `json:"instrument_type"`
	Expiry         int64  `json:"expiry"` // milliseconds
}

// Initialize downloads the instrument master and resolves the NIFTY spot
// key and the current-month futures key, then pins the weekly expiry.
func (f *UpstoxFetcher) Initialize(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, instrumentsURL, nil)
	if err != nil {
		return fmt.Errorf("build instruments request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download instruments: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("instruments download status %d", resp.StatusCode)
	}
	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("gunzip instruments: %w", err)
	}
	defer gz.Close()

	var instruments []instrument
	if err := json.NewDecoder(gz).Decode(&instruments); err != nil {
		return fmt.Errorf("decode instruments: %w", err)
	}
	log.Info().Int("count", len(instruments)).Msg("upstox: instruments downloaded")

	now := market.Now()
	var futures []instrument
	for _, inst := range instruments {
		if inst.Segment == "NSE_INDEX" && inst.Name == "NIFTY 50" {
			f.spotKey = inst.InstrumentKey
			continue
		}
		if inst.Segment == "NSE_FO" && inst.InstrumentType == "FUT" && inst.Name == "NIFTY" {
			exp := time.UnixMilli(inst.Expiry).In(market.IST)
			if exp.After(now) {
				futures = append(futures, inst)
			}
		}
	}
	if f.spotKey == "" {
		return fmt.Errorf("NIFTY 50 spot not found in instrument master")
	}
	if len(futures) == 0 {
		return fmt.Errorf("no live NIFTY futures found in instrument master")
	}
	sort.Slice(futures, func(i, j int) bool { return futures[i].Expiry < futures[j].Expiry })
	f.futuresKey = futures[0].InstrumentKey
	f.expiry = market.NextWeeklyExpiry(now).Format("2006-01-02")

	log.Info().Str("spot", f.spotKey).Str("futures", futures[0].TradingSymbol).
		Str("weekly_expiry", f.expiry).Msg("upstox: instruments resolved")
	return nil
}

type quoteResponse struct {
	Data map[string]struct {
		LastPrice float64 `json:"last_price"`
	} `json:"data"`
}

func (f *UpstoxFetcher) fetchLTP(ctx context.Context, key string) (float64, error) {
	u := fmt.Sprintf("%s/v2/market-quote/quotes?symbol=%s", f.cfg.Upstox.BaseURL, url.QueryEscape(key))
	var qr quoteResponse
	if err := f.request(ctx, u, &qr); err != nil {
		return 0, err
	}
	// The response sometimes keys with ':' instead of '|'.
	for _, q := range qr.Data {
		if q.LastPrice > 0 {
			return q.LastPrice, nil
		}
	}
	return 0, fmt.Errorf("no last price in quote for %s", key)
}

func (f *UpstoxFetcher) FetchSpot(ctx context.Context) (float64, error) {
	return f.fetchLTP(ctx, f.spotKey)
}

func (f *UpstoxFetcher) FetchFutures(ctx context.Context) (float64, error) {
	return f.fetchLTP(ctx, f.futuresKey)
}

type chainResponse struct {
	Data []struct {
		StrikePrice float64 `json:"strike_price"`
		CallOptions struct {
			MarketData optionMarketData `json:"market_data"`
		} `json:"call_options"`
		PutOptions struct {
			MarketData optionMarketData `json:"market_data"`
		} `json:"put_options"`
	} `json:"data"`
}

type optionMarketData struct {
	OI     float64 `json:"oi"`
	Volume float64 `json:"volume"`
	LTP    float64 `json:"ltp"`
}

// FetchChain pulls the weekly chain and keeps only the configured window
// around ATM, summing window totals.
func (f *UpstoxFetcher) FetchChain(ctx context.Context, spot float64) (model.OptionChain, error) {
	atm := market.ATMStrike(spot, f.cfg.Market.StrikeGap)
	wanted := market.StrikeWindow(atm, f.cfg.Market.StrikeGap, f.cfg.Market.WindowWidth)

	u := fmt.Sprintf("%s/v2/option/chain?instrument_key=%s&expiry_date=%s",
		f.cfg.Upstox.BaseURL, url.QueryEscape(f.spotKey), f.expiry)
	var cr chainResponse
	if err := f.request(ctx, u, &cr); err != nil {
		return model.OptionChain{}, err
	}

	chain := model.OptionChain{ATMStrike: atm}
	for _, item := range cr.Data {
		strike := int(item.StrikePrice)
		if !containsStrike(wanted, strike) {
			continue
		}
		q := model.StrikeQuote{
			Strike:     strike,
			CallOI:     int64(item.CallOptions.MarketData.OI),
			PutOI:      int64(item.PutOptions.MarketData.OI),
			CallVolume: int64(item.CallOptions.MarketData.Volume),
			PutVolume:  int64(item.PutOptions.MarketData.Volume),
			CallLTP:    item.CallOptions.MarketData.LTP,
			PutLTP:     item.PutOptions.MarketData.LTP,
		}
		chain.Strikes = append(chain.Strikes, q)
		chain.TotalCallOI += q.CallOI
		chain.TotalPutOI += q.PutOI
	}
	if len(chain.Strikes) == 0 {
		return model.OptionChain{}, fmt.Errorf("no strikes parsed from chain around %d", atm)
	}
	sort.Slice(chain.Strikes, func(i, j int) bool { return chain.Strikes[i].Strike < chain.Strikes[j].Strike })
	return chain, nil
}

func containsStrike(strikes []int, s int) bool {
	for _, c := range strikes {
		if c == s {
			return true
		}
	}
	return false
}

type candleResponse struct {
	Data struct {
		Candles [][]any `json:"candles"`
	} `json:"data"`
}

// FetchCandles returns the day's 1-minute futures bars, oldest first.
func (f *UpstoxFetcher) FetchCandles(ctx context.Context) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v2/historical-candle/intraday/%s/1minute",
		f.cfg.Upstox.BaseURL, url.PathEscape(f.futuresKey))
	var cr candleResponse
	if err := f.request(ctx, u, &cr); err != nil {
		return nil, err
	}

	bars := make([]model.OHLCV, 0, len(cr.Data.Candles))
	for _, raw := range cr.Data.Candles {
		if len(raw) < 6 {
			continue
		}
		ts, ok := raw[0].(string)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   t.In(market.IST),
			Open:   toFloat(raw[1]),
			High:   toFloat(raw[2]),
			Low:    toFloat(raw[3]),
			Close:  toFloat(raw[4]),
			Volume: toFloat(raw[5]),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("empty candle set")
	}
	// Upstox returns newest first.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func toFloat(v any) float64 {
	if n, ok := v.(float64); ok {
		return n
	}
	return 0
}
