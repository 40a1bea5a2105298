package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"NiftyPulse/internal/analyzer"
	"NiftyPulse/internal/collector"
	"NiftyPulse/internal/config"
	"NiftyPulse/internal/metrics"
	"NiftyPulse/internal/notifier"
	"NiftyPulse/internal/position"
	"NiftyPulse/internal/recorder"
	"NiftyPulse/internal/scheduler"
	"NiftyPulse/internal/stats"
	"NiftyPulse/internal/store"
	"NiftyPulse/internal/strategy"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	setupLogging(cfg)
	log.Info().Msg("NiftyPulse starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Data source: Upstox when a token is present, the random-walk mock
	// otherwise so the pipeline can be exercised offline.
	var fetcher collector.Fetcher
	if cfg.Upstox.AccessToken != "" {
		fetcher = collector.NewUpstoxFetcher(cfg)
	} else {
		log.Warn().Msg("no Upstox token, using mock data source")
		fetcher = collector.NewMockFetcher(cfg.Market.StrikeGap, cfg.Market.WindowWidth)
	}
	col := collector.New(fetcher)

	initCtx, initCancel := context.WithTimeout(ctx, 2*time.Minute)
	if err := col.Initialize(initCtx); err != nil {
		initCancel()
		log.Fatal().Err(err).Msg("initialize data source")
	}
	initCancel()
	log.Info().Str("source", col.Name()).Msg("data source ready")

	var tn notifier.Notifier = notifier.NoopNotifier{}
	var telegram *notifier.TelegramNotifier
	if cfg.Telegram.Enabled {
		telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Proxy)
		tn = telegram
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	var mirror *store.Mirror
	if cfg.Redis.URL != "" {
		m, err := store.NewMirror(cfg.Redis.URL, time.Duration(cfg.Redis.TTLHours)*time.Hour)
		if err != nil {
			log.Warn().Err(err).Msg("redis mirror disabled")
		} else {
			mirror = m
			defer m.Close()
		}
	}

	st, err := stats.NewManager(cfg.Scan.StateFile)
	if err != nil {
		log.Fatal().Err(err).Msg("init stats manager")
	}

	sched := scheduler.New(cfg, col,
		analyzer.NewEngine(cfg),
		strategy.NewScorer(cfg),
		strategy.NewValidator(cfg),
		position.NewManager(cfg),
		tn, rec, st, mirror)
	if err := sched.RegisterTasks(ctx); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}

	go metrics.Serve(ctx, cfg.Metrics.ListenAddr)
	if telegram != nil {
		go telegram.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	go sched.Run(ctx)
	log.Info().Msg("NiftyPulse is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	time.Sleep(time.Second)
	log.Info().Msg("NiftyPulse stopped")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
}
