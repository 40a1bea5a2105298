package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"NiftyPulse/internal/analyzer"
	"NiftyPulse/internal/collector"
	"NiftyPulse/internal/config"
	"NiftyPulse/internal/market"
	"NiftyPulse/internal/metrics"
	"NiftyPulse/internal/model"
	"NiftyPulse/internal/notifier"
	"NiftyPulse/internal/position"
	"NiftyPulse/internal/recorder"
	"NiftyPulse/internal/stats"
	"NiftyPulse/internal/store"
	"NiftyPulse/internal/strategy"
)

// Scheduler drives the scan loop and the session-boundary cron tasks.
// Everything market-facing runs on the single scan goroutine; cron tasks
// only touch components that are safe to call concurrently.
type Scheduler struct {
	Cfg       *config.Config
	Cron      *cron.Cron
	Collector *collector.Collector
	Engine    *analyzer.Engine
	Scorer    *strategy.Scorer
	Validator *strategy.Validator
	Positions *position.Manager
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Stats     *stats.Manager
	Mirror    *store.Mirror // nil when Redis is not configured

	OIStore    *store.SnapshotStore
	PriceStore *store.PriceStore

	failures int

	mu      sync.Mutex
	lastInd *model.IndicatorSet
}

// New wires a scheduler from already-constructed components.
func New(cfg *config.Config, col *collector.Collector, eng *analyzer.Engine,
	sc *strategy.Scorer, val *strategy.Validator, pm *position.Manager,
	tn notifier.Notifier, rec recorder.Recorder, st *stats.Manager,
	mirror *store.Mirror) *Scheduler {

	s := &Scheduler{
		Cfg:        cfg,
		Cron:       cron.New(cron.WithSeconds(), cron.WithLocation(market.IST)),
		Collector:  col,
		Engine:     eng,
		Scorer:     sc,
		Validator:  val,
		Positions:  pm,
		Notifier:   tn,
		Recorder:   rec,
		Stats:      st,
		Mirror:     mirror,
		OIStore:    store.NewSnapshotStore(cfg.Scan.WindowSize),
		PriceStore: store.NewPriceStore(cfg.Scan.PriceWindowSize),
	}
	// Exit events fan out to cooldown bookkeeping, the stats tally and
	// the archive. The alert is sent from the scan loop, which also owns
	// the exit's market context.
	pm.Subscribe(val.HandleExit)
	pm.Subscribe(func(evt model.ExitEvent) { st.RecordExit(&evt) })
	pm.Subscribe(func(evt model.ExitEvent) {
		metrics.ExitsTotal.WithLabelValues(string(evt.Reason)).Inc()
		if err := rec.RecordExit(&evt); err != nil {
			log.Error().Err(err).Msg("record exit")
		}
	})
	return s
}

// RegisterTasks installs the session-boundary cron jobs: day reset just
// before the open, square-off shortly before the close, and the summary
// after the close.
func (s *Scheduler) RegisterTasks(ctx context.Context) error {
	// Weekdays 09:10 IST
	if _, err := s.Cron.AddFunc("0 10 9 * * 1-5", func() { s.sessionStart(ctx) }); err != nil {
		return fmt.Errorf("register session start: %w", err)
	}
	// Weekdays 15:25 IST
	if _, err := s.Cron.AddFunc("0 25 15 * * 1-5", func() { s.squareOff(ctx) }); err != nil {
		return fmt.Errorf("register square-off: %w", err)
	}
	// Weekdays 15:35 IST
	if _, err := s.Cron.AddFunc("0 35 15 * * 1-5", func() { s.sessionEnd(ctx) }); err != nil {
		return fmt.Errorf("register session end: %w", err)
	}
	return nil
}

// Run starts the cron tasks and blocks in the scan loop until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.Cron.Start()
	defer s.Cron.Stop()

	interval := time.Duration(s.Cfg.Scan.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("scan loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scan loop stopped")
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

// scan is one full cycle: collect, store, analyze, then either manage
// the open position or look for a new entry.
func (s *Scheduler) scan(ctx context.Context) {
	now := market.Now()
	if !market.IsOpen(now) {
		return
	}

	start := time.Now()
	data, err := s.Collector.Collect(ctx)
	if err != nil {
		s.failures++
		metrics.ScanFailures.Inc()
		log.Warn().Err(err).Int("consecutive", s.failures).Msg("scan cycle aborted")
		if s.failures == s.Cfg.Scan.MaxFetchFailures {
			s.trySend(ctx, fmt.Sprintf("⚠️ <b>Data feed degraded</b>\n\n%d consecutive fetch failures from %s", s.failures, s.Collector.Name()))
		}
		return
	}
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if s.failures >= s.Cfg.Scan.MaxFetchFailures {
		s.trySend(ctx, "✅ Data feed recovered")
	}
	s.failures = 0

	snap := collector.BuildSnapshot(data)
	if err := s.OIStore.Append(snap); err != nil {
		log.Warn().Err(err).Msg("snapshot rejected")
		return
	}
	s.PriceStore.Append(model.PricePoint{Timestamp: data.FetchedAt, Price: data.Futures})
	if s.Mirror != nil {
		s.Mirror.Write(ctx, snap)
	}

	ind := s.Engine.Compute(data, s.OIStore, s.PriceStore)
	s.mu.Lock()
	s.lastInd = &ind
	s.mu.Unlock()

	metrics.ScansTotal.Inc()
	metrics.LastPrice.Set(ind.Price)
	metrics.LastPCR.Set(ind.PCR)

	// Recorded at the end of the cycle so a validator rejection makes it
	// into the scan row.
	rejection := ""
	defer func() { s.recordScan(data, &ind, rejection) }()

	if evt, trail := s.Positions.Evaluate(&ind, data.FetchedAt); evt != nil || trail != nil {
		if trail != nil {
			if pos := s.Positions.Current(); pos != nil {
				s.trySend(ctx, notifier.FormatTrailing(pos, trail))
			}
		}
		if evt != nil {
			s.trySend(ctx, notifier.FormatExit(evt))
		}
		return
	}
	if s.Positions.Current() != nil {
		return
	}

	if s.Stats.SignalsToday() >= s.Cfg.Scan.MaxSignalsPerDay {
		return
	}

	sig := s.Scorer.Evaluate(&ind, data.FetchedAt)
	if sig == nil {
		return
	}
	ok, reason := s.Validator.Validate(sig, data.FetchedAt)
	if !ok {
		rejection = reason
		metrics.RejectionsTotal.WithLabelValues(reason).Inc()
		log.Debug().Str("reason", reason).Msg("signal rejected by validator")
		return
	}

	if err := s.Positions.Open(*sig, data.FetchedAt); err != nil {
		log.Error().Err(err).Msg("open position")
		return
	}
	s.Validator.Commit(sig)
	s.Stats.RecordSignal(data.FetchedAt)
	metrics.SignalsTotal.WithLabelValues(string(sig.Direction)).Inc()

	log.Info().Str("signal", strategy.Describe(sig)).Msg("entry executed")
	s.trySend(ctx, notifier.FormatSignal(sig, &ind))
	if err := s.Recorder.RecordSignal(&recorder.SignalEvent{
		Signal:    sig,
		ExpiryDay: ind.ExpiryDay,
		FullyWarm: ind.FullyWarm(),
	}); err != nil {
		log.Error().Err(err).Msg("record signal")
	}
}

func (s *Scheduler) recordScan(data *model.MarketData, ind *model.IndicatorSet, rejection string) {
	if err := s.Recorder.RecordScan(&recorder.ScanEvent{
		Timestamp:   data.FetchedAt.Unix(),
		Price:       ind.Price,
		ATMStrike:   ind.ATMStrike,
		TotalCallOI: data.Chain.TotalCallOI,
		TotalPutOI:  data.Chain.TotalPutOI,
		PCR:         ind.PCR,
		VWAPDist:    ind.VWAPDistance,
		ATR:         ind.ATR,
		CallVel:     string(ind.Call.Velocity.Pattern),
		PutVel:      string(ind.Put.Velocity.Pattern),
		Rejection:   rejection,
	}); err != nil {
		log.Error().Err(err).Msg("record scan")
	}
}

func (s *Scheduler) sessionStart(ctx context.Context) {
	now := market.Now()
	s.Stats.Reset(now)
	s.trySend(ctx, notifier.FormatStartup(s.Collector.Name(), market.IsExpiryDay(now), market.MinutesToClose(now)))
	log.Info().Bool("expiry_day", market.IsExpiryDay(now)).Msg("session started")
}

// squareOff closes any open position before the close. It uses the last
// seen price; with no scan data yet today there is nothing to close.
func (s *Scheduler) squareOff(ctx context.Context) {
	s.mu.Lock()
	ind := s.lastInd
	s.mu.Unlock()
	if ind == nil {
		return
	}
	if evt := s.Positions.ForceClose(ind.Price, market.Now()); evt != nil {
		s.trySend(ctx, notifier.FormatExit(evt))
	}
}

func (s *Scheduler) sessionEnd(ctx context.Context) {
	state := s.Stats.State()
	s.trySend(ctx, notifier.FormatDailySummary(state))
	if err := s.Recorder.RecordSummary(&recorder.SummaryEvent{
		Date:    state.Date,
		Signals: state.Signals,
		Wins:    state.Wins,
		Losses:  state.Losses,
		Points:  state.PointsTotal,
	}); err != nil {
		log.Error().Err(err).Msg("record summary")
	}
	log.Info().Int("signals", state.Signals).Float64("points", state.PointsTotal).Msg("session ended")
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/status":
		s.mu.Lock()
		ind := s.lastInd
		s.mu.Unlock()
		return notifier.FormatStatus(ind, s.Positions.Current(), s.Stats.State())
	case "/stats":
		return notifier.FormatDailySummary(s.Stats.State())
	case "/position":
		pos := s.Positions.Current()
		if pos == nil {
			return "No open position"
		}
		return notifier.FormatStatus(nil, pos, s.Stats.State())
	default:
		return "Commands:\n• /status\n• /position\n• /stats"
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
