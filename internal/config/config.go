package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Every threshold the engine
// references lives here; components receive the sections they need at
// construction and never read globals.
type Config struct {
	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Proxy    string `yaml:"proxy"`
	} `yaml:"telegram"`

	Upstox struct {
		AccessToken string `yaml:"access_token"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"upstox"`

	Redis struct {
		URL      string `yaml:"url"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"redis"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console or json
	} `yaml:"log"`

	Metrics struct {
		ListenAddr string `yaml:"listen_addr"` // empty disables the listener
	} `yaml:"metrics"`

	Scan struct {
		IntervalSeconds  int    `yaml:"interval_seconds"`
		WindowSize       int    `yaml:"window_size"`       // OI snapshot ring capacity
		PriceWindowSize  int    `yaml:"price_window_size"` // price ring capacity
		WarmupMinutes    int    `yaml:"warmup_minutes"`
		MaxFetchFailures int    `yaml:"max_fetch_failures"` // escalate after N consecutive
		MaxSignalsPerDay int    `yaml:"max_signals_per_day"`
		StateFile        string `yaml:"state_file"` // day-stats JSON
	} `yaml:"scan"`

	Market struct {
		StrikeGap          int `yaml:"strike_gap"`
		WindowWidth        int `yaml:"window_width"` // strikes each side of ATM
		CloseBufferMinutes int `yaml:"close_buffer_minutes"`
	} `yaml:"market"`

	Lookback struct {
		Tolerance5m  float64 `yaml:"tolerance_5m"`  // minutes
		Tolerance15m float64 `yaml:"tolerance_15m"` // minutes
		Tolerance30m float64 `yaml:"tolerance_30m"` // minutes
	} `yaml:"lookback"`

	OI struct {
		Significant float64 `yaml:"significant"`
		Strong      float64 `yaml:"strong"`
		ATM         float64 `yaml:"atm"`
		Min5m       float64 `yaml:"min_5m"`
		Min15m      float64 `yaml:"min_15m"`
		Strong5m    float64 `yaml:"strong_5m"`
		Strong15m   float64 `yaml:"strong_15m"`
	} `yaml:"oi"`

	Volume struct {
		SpikeMultiplier float64 `yaml:"spike_multiplier"`
		SpikeStrong     float64 `yaml:"spike_strong"`
	} `yaml:"volume"`

	PCR struct {
		Ceiling float64 `yaml:"ceiling"`
		Bullish float64 `yaml:"bullish"`
		Bearish float64 `yaml:"bearish"`
	} `yaml:"pcr"`

	VWAP struct {
		MinATRMultiple float64 `yaml:"min_atr_multiple"`
		MaxATRMultiple float64 `yaml:"max_atr_multiple"`
		MinScore       int     `yaml:"min_score"`
	} `yaml:"vwap"`

	ATR struct {
		Period               int     `yaml:"period"`
		TargetMultiplier     float64 `yaml:"target_multiplier"`
		StopMultiplier       float64 `yaml:"stop_multiplier"`
		ExpiryStopMultiplier float64 `yaml:"expiry_stop_multiplier"`
		Fallback             float64 `yaml:"fallback"`
	} `yaml:"atr"`

	Velocity struct {
		AccelFloor   float64 `yaml:"accel_floor"`
		MonsterFloor float64 `yaml:"monster_floor"`
		ExhaustHigh  float64 `yaml:"exhaust_high"`
		ExhaustLow   float64 `yaml:"exhaust_low"`
	} `yaml:"velocity"`

	Pattern struct {
		ReversalThreshold float64 `yaml:"reversal_threshold"`
		TrapSpike         float64 `yaml:"trap_spike"`
		TrapFlat          float64 `yaml:"trap_flat"`
	} `yaml:"pattern"`

	Candle struct {
		MinSize float64 `yaml:"min_size"`
	} `yaml:"candle"`

	Score struct {
		MinConfidence   int `yaml:"min_confidence"`
		EarlyConfidence int `yaml:"early_confidence"` // floor before 30m warm-up
		MinPrimary      int `yaml:"min_primary"`
	} `yaml:"score"`

	Cooldown struct {
		GlobalSeconds        int `yaml:"global_seconds"`
		SameStrikeMinutes    int `yaml:"same_strike_minutes"`
		SameDirectionMinutes int `yaml:"same_direction_minutes"`
		OppositeMinutes      int `yaml:"opposite_minutes"`
	} `yaml:"cooldown"`

	Exit struct {
		OIReversalThreshold float64 `yaml:"oi_reversal_threshold"`
		ConfirmationCandles int     `yaml:"confirmation_candles"`
		SpikeThreshold      float64 `yaml:"spike_threshold"`
		MinHoldMinutes      int     `yaml:"min_hold_minutes"`
		MinHoldBeforeOIExit int     `yaml:"min_hold_before_oi_exit"`
		MaxHoldMinutes      int     `yaml:"max_hold_minutes"`
		RejectionMultiplier float64 `yaml:"rejection_multiplier"`
	} `yaml:"exit"`

	Trailing struct {
		Enabled         *bool   `yaml:"enabled"`          // nil means unset, defaults to true
		Trigger         float64 `yaml:"trigger"`          // fraction of target distance
		Distance        float64 `yaml:"distance"`         // fraction of target distance
		NotifyThreshold float64 `yaml:"notify_threshold"` // min % move before notifying
	} `yaml:"trailing"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_ENABLED"); v != "" {
		cfg.Telegram.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("TELEGRAM_PROXY"); v != "" {
		cfg.Telegram.Proxy = v
	}
	if v := os.Getenv("UPSTOX_ACCESS_TOKEN"); v != "" {
		cfg.Upstox.AccessToken = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}
	if v := os.Getenv("SCAN_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.IntervalSeconds = n
		}
	}
	if v := os.Getenv("MIN_CONFIDENCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Score.MinConfidence = n
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Upstox.BaseURL == "" {
		c.Upstox.BaseURL = "https://api.upstox.com"
	}
	if c.Redis.TTLHours == 0 {
		c.Redis.TTLHours = 24
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Scan.IntervalSeconds == 0 {
		c.Scan.IntervalSeconds = 60
	}
	if c.Scan.WindowSize == 0 {
		c.Scan.WindowSize = 35
	}
	if c.Scan.PriceWindowSize == 0 {
		c.Scan.PriceWindowSize = 60
	}
	if c.Scan.WarmupMinutes == 0 {
		c.Scan.WarmupMinutes = 15
	}
	if c.Scan.MaxFetchFailures == 0 {
		c.Scan.MaxFetchFailures = 10
	}
	if c.Scan.MaxSignalsPerDay == 0 {
		c.Scan.MaxSignalsPerDay = 6
	}
	if c.Scan.StateFile == "" {
		c.Scan.StateFile = "data/day_stats.json"
	}
	if c.Market.StrikeGap == 0 {
		c.Market.StrikeGap = 50
	}
	if c.Market.WindowWidth == 0 {
		c.Market.WindowWidth = 2
	}
	if c.Market.CloseBufferMinutes == 0 {
		c.Market.CloseBufferMinutes = 20
	}
	if c.Lookback.Tolerance5m == 0 {
		c.Lookback.Tolerance5m = 2
	}
	if c.Lookback.Tolerance15m == 0 {
		c.Lookback.Tolerance15m = 4
	}
	if c.Lookback.Tolerance30m == 0 {
		c.Lookback.Tolerance30m = 6
	}
	if c.OI.Significant == 0 {
		c.OI.Significant = 2.5
	}
	if c.OI.Strong == 0 {
		c.OI.Strong = 5.0
	}
	if c.OI.ATM == 0 {
		c.OI.ATM = 3.0
	}
	if c.OI.Min5m == 0 {
		c.OI.Min5m = 2.0
	}
	if c.OI.Min15m == 0 {
		c.OI.Min15m = 2.5
	}
	if c.OI.Strong5m == 0 {
		c.OI.Strong5m = 3.5
	}
	if c.OI.Strong15m == 0 {
		c.OI.Strong15m = 5.0
	}
	if c.Volume.SpikeMultiplier == 0 {
		c.Volume.SpikeMultiplier = 2.0
	}
	if c.Volume.SpikeStrong == 0 {
		c.Volume.SpikeStrong = 3.0
	}
	if c.PCR.Ceiling == 0 {
		c.PCR.Ceiling = 5.0
	}
	if c.PCR.Bullish == 0 {
		c.PCR.Bullish = 1.2
	}
	if c.PCR.Bearish == 0 {
		c.PCR.Bearish = 0.8
	}
	if c.VWAP.MinATRMultiple == 0 {
		c.VWAP.MinATRMultiple = 0.1
	}
	if c.VWAP.MaxATRMultiple == 0 {
		c.VWAP.MaxATRMultiple = 2.0
	}
	if c.VWAP.MinScore == 0 {
		c.VWAP.MinScore = 60
	}
	if c.ATR.Period == 0 {
		c.ATR.Period = 14
	}
	if c.ATR.TargetMultiplier == 0 {
		c.ATR.TargetMultiplier = 2.5
	}
	if c.ATR.StopMultiplier == 0 {
		c.ATR.StopMultiplier = 1.5
	}
	if c.ATR.ExpiryStopMultiplier == 0 {
		c.ATR.ExpiryStopMultiplier = 2.0
	}
	if c.ATR.Fallback == 0 {
		c.ATR.Fallback = 30
	}
	if c.Velocity.AccelFloor == 0 {
		c.Velocity.AccelFloor = 3.0
	}
	if c.Velocity.MonsterFloor == 0 {
		c.Velocity.MonsterFloor = 6.0
	}
	if c.Velocity.ExhaustHigh == 0 {
		c.Velocity.ExhaustHigh = 5.0
	}
	if c.Velocity.ExhaustLow == 0 {
		c.Velocity.ExhaustLow = 1.0
	}
	if c.Pattern.ReversalThreshold == 0 {
		c.Pattern.ReversalThreshold = 5.0
	}
	if c.Pattern.TrapSpike == 0 {
		c.Pattern.TrapSpike = 8.0
	}
	if c.Pattern.TrapFlat == 0 {
		c.Pattern.TrapFlat = 1.5
	}
	if c.Candle.MinSize == 0 {
		c.Candle.MinSize = 5
	}
	if c.Score.MinConfidence == 0 {
		c.Score.MinConfidence = 70
	}
	if c.Score.EarlyConfidence == 0 {
		c.Score.EarlyConfidence = 85
	}
	if c.Score.MinPrimary == 0 {
		c.Score.MinPrimary = 2
	}
	if c.Cooldown.GlobalSeconds == 0 {
		c.Cooldown.GlobalSeconds = 180
	}
	if c.Cooldown.SameStrikeMinutes == 0 {
		c.Cooldown.SameStrikeMinutes = 10
	}
	if c.Cooldown.SameDirectionMinutes == 0 {
		c.Cooldown.SameDirectionMinutes = 3
	}
	if c.Cooldown.OppositeMinutes == 0 {
		c.Cooldown.OppositeMinutes = 5
	}
	if c.Exit.OIReversalThreshold == 0 {
		c.Exit.OIReversalThreshold = 3.0
	}
	if c.Exit.ConfirmationCandles == 0 {
		c.Exit.ConfirmationCandles = 2
	}
	if c.Exit.SpikeThreshold == 0 {
		c.Exit.SpikeThreshold = 8.0
	}
	if c.Exit.MinHoldMinutes == 0 {
		c.Exit.MinHoldMinutes = 10
	}
	if c.Exit.MinHoldBeforeOIExit == 0 {
		c.Exit.MinHoldBeforeOIExit = 8
	}
	if c.Exit.MaxHoldMinutes == 0 {
		c.Exit.MaxHoldMinutes = 45
	}
	if c.Exit.RejectionMultiplier == 0 {
		c.Exit.RejectionMultiplier = 2.0
	}
	if c.Trailing.Enabled == nil {
		enabled := true
		c.Trailing.Enabled = &enabled
	}
	if c.Trailing.Trigger == 0 {
		c.Trailing.Trigger = 0.6
		c.Trailing.Distance = 0.4
	}
	if c.Trailing.NotifyThreshold == 0 {
		c.Trailing.NotifyThreshold = 5
	}
}

// Validate checks that all required fields are set and sane.
func (c *Config) Validate() error {
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Scan.IntervalSeconds < 10 {
		return fmt.Errorf("scan.interval_seconds must be at least 10")
	}
	if c.Market.StrikeGap <= 0 {
		return fmt.Errorf("market.strike_gap must be positive")
	}
	if c.Score.MinConfidence < 0 || c.Score.MinConfidence > 98 {
		return fmt.Errorf("score.min_confidence must be in [0, 98]")
	}
	if c.VWAP.MinATRMultiple >= c.VWAP.MaxATRMultiple {
		return fmt.Errorf("vwap.min_atr_multiple must be below vwap.max_atr_multiple")
	}
	if c.VWAP.MinScore < 0 || c.VWAP.MinScore > 99 {
		return fmt.Errorf("vwap.min_score must be in [0, 99]")
	}
	if c.Exit.MinHoldMinutes > c.Exit.MaxHoldMinutes {
		return fmt.Errorf("exit.min_hold_minutes must not exceed exit.max_hold_minutes")
	}
	if c.Trailing.Enabled != nil && *c.Trailing.Enabled && (c.Trailing.Trigger <= 0 || c.Trailing.Trigger >= 1) {
		return fmt.Errorf("trailing.trigger must be in (0, 1)")
	}
	return nil
}
